package gpx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/trailtools/runstop/internal/track"
)

// ErrEmptyTrack signals a GPX file without a usable track: no segment
// contributed at least two timestamped points.
var ErrEmptyTrack = errors.New("gpx: no usable track points")

// Parse reads and parses a GPX file.
func Parse(filename string) (*GPX, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader parses GPX from an io.Reader.
func ParseReader(r io.Reader) (*GPX, error) {
	decoder := xml.NewDecoder(r)

	var gpxData GPX
	if err := decoder.Decode(&gpxData); err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}

	if gpxData.Version == "" {
		gpxData.Version = "1.1"
	}

	return &gpxData, nil
}

// Samples flattens all tracks and segments in document order into a
// single sequence of position samples. Timestamps are normalized to
// UTC; elevation and any extension data are dropped.
//
// Returns ErrEmptyTrack unless at least one segment contributes at
// least two points; a document made only of single-point segments has
// no track worth analyzing.
func (g *GPX) Samples() ([]track.Sample, error) {
	var samples []track.Sample
	usable := false

	for _, trk := range g.Tracks {
		for _, seg := range trk.Segments {
			if len(seg.Points) >= 2 {
				usable = true
			}
			for _, p := range seg.Points {
				samples = append(samples, track.Sample{
					Lat:  p.Lat,
					Lon:  p.Lon,
					Time: p.Time.UTC(),
				})
			}
		}
	}

	if !usable {
		return nil, fmt.Errorf("no segment with at least 2 points (%d point(s) total): %w", len(samples), ErrEmptyTrack)
	}

	return samples, nil
}

// Stats returns basic counts and the recording span of the document.
func (g *GPX) Stats() (points, tracks, segments int, span time.Duration) {
	tracks = len(g.Tracks)
	var first, last time.Time

	for _, trk := range g.Tracks {
		segments += len(trk.Segments)
		for _, seg := range trk.Segments {
			points += len(seg.Points)
			for _, p := range seg.Points {
				if first.IsZero() || p.Time.Before(first) {
					first = p.Time
				}
				if p.Time.After(last) {
					last = p.Time
				}
			}
		}
	}

	if !first.IsZero() {
		span = last.Sub(first)
	}
	return
}
