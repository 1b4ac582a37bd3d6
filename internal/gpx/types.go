package gpx

import (
	"encoding/xml"
	"time"
)

// Point is a GPX track point. Elevation is parsed for completeness but
// the pipeline only consumes latitude, longitude and time.
type Point struct {
	Lat       float64   `xml:"lat,attr"`
	Lon       float64   `xml:"lon,attr"`
	Elevation float64   `xml:"ele,omitempty"`
	Time      time.Time `xml:"time,omitempty"`
}

// Track is a GPX track with its segments.
type Track struct {
	Name     string         `xml:"name,omitempty"`
	Segments []TrackSegment `xml:"trkseg"`
}

// TrackSegment is one contiguous run of track points.
type TrackSegment struct {
	Points []Point `xml:"trkpt"`
}

// Metadata is the GPX metadata block.
type Metadata struct {
	Name string    `xml:"name,omitempty"`
	Time time.Time `xml:"time,omitempty"`
}

// GPX is the root of a GPX 1.1 document.
type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`

	Metadata Metadata `xml:"metadata,omitempty"`
	Tracks   []Track  `xml:"trk"`
}
