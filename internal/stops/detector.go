package stops

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/trailtools/runstop/internal/track"
)

// ErrInvalidThreshold signals detector parameters that cannot be
// scanned with: a negative minimum duration or a non-positive spatial
// tolerance.
var ErrInvalidThreshold = errors.New("stops: invalid detector parameters")

// Config holds stop detection parameters.
type Config struct {
	// MinDuration is the shortest dwell that counts as a stop. A run of
	// exactly MinDuration qualifies.
	MinDuration time.Duration

	// RadiusM is the spatial tolerance in meters: a sample belongs to
	// the current run while it stays within RadiusM of the run's anchor
	// (the run's first sample).
	RadiusM float64

	// GeohashPrecision is the cell size (in geohash characters, 1..12)
	// used to label each stop's representative position.
	GeohashPrecision uint
}

// DefaultConfig returns the thresholds used by the CLI when nothing is
// overridden: a two minute dwell within 30 m, labeled at geohash
// precision 8 (~38 m cells).
func DefaultConfig() Config {
	return Config{
		MinDuration:      120 * time.Second,
		RadiusM:          30,
		GeohashPrecision: 8,
	}
}

// Validate reports ErrInvalidThreshold for parameters the scan cannot
// run with.
func (c Config) Validate() error {
	if c.MinDuration < 0 {
		return fmt.Errorf("min duration %s is negative: %w", c.MinDuration, ErrInvalidThreshold)
	}
	if c.RadiusM <= 0 {
		return fmt.Errorf("radius %.2f m is not positive: %w", c.RadiusM, ErrInvalidThreshold)
	}
	if c.GeohashPrecision < 1 || c.GeohashPrecision > 12 {
		return fmt.Errorf("geohash precision %d outside 1..12: %w", c.GeohashPrecision, ErrInvalidThreshold)
	}
	return nil
}

// Interval is one detected stop: a maximal run of samples that stayed
// within the spatial tolerance for at least the configured duration.
// StartIndex/EndIndex reference the enriched sequence (inclusive).
type Interval struct {
	StartIndex int
	EndIndex   int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Lat/Lon is the centroid of the run's samples; Geohash encodes it
	// at the configured precision.
	Lat     float64
	Lon     float64
	Geohash string

	// Samples is the number of samples summarized by this interval.
	Samples int
}

// Detect scans an enriched sample sequence for stop intervals.
//
// Clustering rule: a run grows sample by sample while the great-circle
// distance from the candidate sample to the run's anchor (its first
// sample) stays within RadiusM. The first sample outside the radius
// closes the run and anchors the next one, so two dwells separated by
// even a single moving sample are never merged. A closed run is
// reported iff its time span is at least MinDuration.
//
// The result is ordered by start time and non-overlapping. No
// qualifying runs yields an empty result, not an error.
func Detect(enriched []track.Enriched, cfg Config) ([]Interval, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var intervals []Interval
	if len(enriched) == 0 {
		return intervals, nil
	}

	runStart := 0
	for i := 1; i <= len(enriched); i++ {
		if i < len(enriched) {
			anchor := enriched[runStart]
			d := track.Haversine(anchor.Lat, anchor.Lon, enriched[i].Lat, enriched[i].Lon)
			if d <= cfg.RadiusM {
				continue
			}
		}

		if iv, ok := summarize(enriched, runStart, i-1, cfg); ok {
			intervals = append(intervals, iv)
		}
		runStart = i
	}

	return intervals, nil
}

// summarize builds the Interval for run [start, end] if it qualifies.
func summarize(enriched []track.Enriched, start, end int, cfg Config) (Interval, bool) {
	span := enriched[end].Time.Sub(enriched[start].Time)
	if span < cfg.MinDuration {
		return Interval{}, false
	}

	var latSum, lonSum float64
	for i := start; i <= end; i++ {
		latSum += enriched[i].Lat
		lonSum += enriched[i].Lon
	}
	n := float64(end - start + 1)
	lat, lon := latSum/n, lonSum/n

	return Interval{
		StartIndex: start,
		EndIndex:   end,
		StartTime:  enriched[start].Time,
		EndTime:    enriched[end].Time,
		Duration:   span,
		Lat:        lat,
		Lon:        lon,
		Geohash:    geohash.EncodeWithPrecision(lat, lon, cfg.GeohashPrecision),
		Samples:    end - start + 1,
	}, true
}

// TotalStopped sums the durations of all intervals.
func TotalStopped(intervals []Interval) time.Duration {
	var total time.Duration
	for _, iv := range intervals {
		total += iv.Duration
	}
	return total
}
