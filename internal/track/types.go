package track

import (
	"time"
)

// Sample is a single timestamped GPS position. Samples are immutable
// once parsed; all derived data lives on Enriched.
type Sample struct {
	Lat  float64
	Lon  float64
	Time time.Time
}

// Enriched is a Sample plus kinematics derived from the following
// sample. The last sample of a track has HasNext=false and zeroed
// derived fields, which distinguishes "no next sample" from a genuine
// zero-speed reading.
type Enriched struct {
	Sample

	DistanceToNextM float64
	ElapsedToNextS  float64
	SpeedMPS        float64
	SpeedKMH        float64

	// HasNext is false only for the final sample.
	HasNext bool

	// Degenerate marks a duplicate timestamp (zero elapsed time to the
	// next sample). Speed is reported as 0 instead of NaN/Inf.
	Degenerate bool
}

// BBox is the minimal lat/lon rectangle containing a set of samples.
type BBox struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// WithMargin grows the box by frac of its span on every side, so maps
// don't clip the path at the image border. A box with no span on an
// axis (a single point, or a dead stop within GPS noise) gets a fixed
// pad instead, so framing never degenerates to a zero-area rectangle.
func (b BBox) WithMargin(frac float64) BBox {
	const zeroSpanPadDeg = 0.0005 // ~55 m of latitude

	latPad := (b.MaxLat - b.MinLat) * frac
	if b.MaxLat == b.MinLat {
		latPad = zeroSpanPadDeg
	}
	lonPad := (b.MaxLon - b.MinLon) * frac
	if b.MaxLon == b.MinLon {
		lonPad = zeroSpanPadDeg
	}
	return BBox{
		MinLat: b.MinLat - latPad,
		MinLon: b.MinLon - lonPad,
		MaxLat: b.MaxLat + latPad,
		MaxLon: b.MaxLon + lonPad,
	}
}

// Center returns the midpoint of the box.
func (b BBox) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}
