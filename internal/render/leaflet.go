package render

import (
	"encoding/json"
	"html/template"
	"os"

	"github.com/trailtools/runstop/internal/stops"
	"github.com/trailtools/runstop/internal/track"
)

// leafletTmpl is a self-contained interactive map: the track as a
// polyline, stops as circles sized by duration. Tiles come from the
// public OSM tile servers, so the artifact needs no API key.
var leafletTmpl = template.Must(template.New("leaflet").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
    maxZoom: 19,
    attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

var path = {{.Path}};
L.polyline(path, {color: '#1f77b4', weight: 3}).addTo(map);

var stops = {{.Stops}};
stops.forEach(function (s) {
    L.circle([s.lat, s.lon], {
        radius: s.radius,
        color: '#d62728',
        fillColor: '#d62728',
        fillOpacity: 0.35
    }).addTo(map).bindPopup(
        'Stopped ' + s.duration_s + ' s<br>' + s.start + '<br>cell ' + s.geohash
    );
});

map.fitBounds([[{{.MinLat}}, {{.MinLon}}], [{{.MaxLat}}, {{.MaxLon}}]]);
</script>
</body>
</html>
`))

type leafletStop struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	RadiusM   float64 `json:"radius"`
	DurationS float64 `json:"duration_s"`
	Start     string  `json:"start"`
	Geohash   string  `json:"geohash"`
}

type leafletData struct {
	Title                string
	CenterLat, CenterLon float64
	Zoom                 int
	MinLat, MinLon       float64
	MaxLat, MaxLon       float64
	Path                 template.JS
	Stops                template.JS
}

// Leaflet writes the interactive HTML map artifact.
func (r *Renderer) Leaflet(path string, enriched []track.Enriched, intervals []stops.Interval) error {
	coords := make([][2]float64, len(enriched))
	for i, e := range enriched {
		coords[i] = [2]float64{e.Lat, e.Lon}
	}

	markers := make([]leafletStop, len(intervals))
	for i, iv := range intervals {
		markers[i] = leafletStop{
			Lat:       iv.Lat,
			Lon:       iv.Lon,
			RadiusM:   stopRadiusM(iv.Duration.Seconds()),
			DurationS: iv.Duration.Seconds(),
			Start:     iv.StartTime.UTC().Format("15:04:05"),
			Geohash:   iv.Geohash,
		}
	}

	pathJSON, err := json.Marshal(coords)
	if err != nil {
		return wrapErr("failed to encode path", err)
	}
	stopsJSON, err := json.Marshal(markers)
	if err != nil {
		return wrapErr("failed to encode stops", err)
	}

	bbox := track.Bounds(enriched).WithMargin(r.opts.MarginFrac)
	centerLat, centerLon := bbox.Center()

	file, err := os.Create(path)
	if err != nil {
		return wrapErr("failed to create file", err)
	}
	defer file.Close()

	data := leafletData{
		Title:     "runstop",
		CenterLat: centerLat,
		CenterLon: centerLon,
		Zoom:      r.opts.Zoom,
		MinLat:    bbox.MinLat,
		MinLon:    bbox.MinLon,
		MaxLat:    bbox.MaxLat,
		MaxLon:    bbox.MaxLon,
		Path:      template.JS(pathJSON),
		Stops:     template.JS(stopsJSON),
	}

	if err := leafletTmpl.Execute(file, data); err != nil {
		return wrapErr("failed to render template", err)
	}

	r.log.WithField("file", path).Debug("interactive map written")
	return nil
}
