package render

import (
	"image/color"

	sm "github.com/flopp/go-staticmaps"
	"github.com/fogleman/gg"
	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"

	"github.com/trailtools/runstop/internal/stops"
	"github.com/trailtools/runstop/internal/track"
)

var (
	pathColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	stopColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	stopFill  = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0x60}
)

const (
	pathWeight   = 3.0
	circleWeight = 2.0
)

// StaticPath renders the raw track as a PNG.
func (r *Renderer) StaticPath(path string, enriched []track.Enriched) error {
	return r.renderStatic(path, enriched, nil)
}

// StaticStops renders the track with detected stops overlaid as
// circles sized by stop duration.
func (r *Renderer) StaticStops(path string, enriched []track.Enriched, intervals []stops.Interval) error {
	return r.renderStatic(path, enriched, intervals)
}

func (r *Renderer) renderStatic(path string, enriched []track.Enriched, intervals []stops.Interval) error {
	ctx := sm.NewContext()
	ctx.SetSize(r.opts.Width, r.opts.Height)

	positions := make([]s2.LatLng, len(enriched))
	for i, e := range enriched {
		positions[i] = s2.LatLngFromDegrees(e.Lat, e.Lon)
	}
	ctx.AddObject(sm.NewPath(positions, pathColor, pathWeight))

	for _, iv := range intervals {
		circle := sm.NewCircle(
			s2.LatLngFromDegrees(iv.Lat, iv.Lon),
			stopColor, stopFill,
			stopRadiusM(iv.Duration.Seconds()),
			circleWeight,
		)
		ctx.AddObject(circle)
	}

	bbox := track.Bounds(enriched).WithMargin(r.opts.MarginFrac)
	rect, err := sm.CreateBBox(bbox.MaxLat, bbox.MinLon, bbox.MinLat, bbox.MaxLon)
	if err != nil {
		return wrapErr("failed to frame map", err)
	}
	ctx.SetBoundingBox(*rect)

	img, err := ctx.Render()
	if err != nil {
		return wrapErr("failed to render tiles", err)
	}

	if err := gg.SavePNG(path, img); err != nil {
		return wrapErr("failed to save PNG", err)
	}

	r.log.WithFields(logrus.Fields{
		"file":  path,
		"stops": len(intervals),
	}).Debug("static map written")

	return nil
}
