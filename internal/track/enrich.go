package track

import (
	"errors"
	"fmt"
	"time"
)

// ErrNonMonotonicTime signals timestamps that go backwards between
// consecutive samples. The input is corrupt and no partial enrichment
// is produced.
var ErrNonMonotonicTime = errors.New("track: timestamps out of order")

// Enrich derives inter-sample kinematics for an ordered sample
// sequence. The result has exactly one Enriched per input Sample, in
// input order; inputs are never mutated.
//
// Sample i (i < N-1) gets the great-circle distance, elapsed seconds
// and speed toward sample i+1. A zero elapsed time (duplicate
// timestamp) yields speed 0 and Degenerate=true rather than NaN/Inf.
// The final sample carries HasNext=false.
func Enrich(samples []Sample) ([]Enriched, error) {
	enriched := make([]Enriched, len(samples))

	for i, s := range samples {
		enriched[i] = Enriched{Sample: s}

		if i == len(samples)-1 {
			break
		}

		next := samples[i+1]
		elapsed := next.Time.Sub(s.Time).Seconds()
		if elapsed < 0 {
			return nil, fmt.Errorf("sample %d at %s precedes sample %d at %s: %w",
				i+1, next.Time.Format(time.RFC3339), i, s.Time.Format(time.RFC3339),
				ErrNonMonotonicTime)
		}

		dist := Haversine(s.Lat, s.Lon, next.Lat, next.Lon)

		e := &enriched[i]
		e.HasNext = true
		e.DistanceToNextM = dist
		e.ElapsedToNextS = elapsed

		if elapsed == 0 {
			e.Degenerate = true
			// speed stays 0
			continue
		}

		e.SpeedMPS = dist / elapsed
		e.SpeedKMH = e.SpeedMPS * 3.6
	}

	return enriched, nil
}

// TotalDistance sums the per-segment distances of an enriched track,
// in meters.
func TotalDistance(enriched []Enriched) float64 {
	var total float64
	for _, e := range enriched {
		if e.HasNext {
			total += e.DistanceToNextM
		}
	}
	return total
}

// Duration is the elapsed time from first to last sample.
func Duration(enriched []Enriched) time.Duration {
	if len(enriched) < 2 {
		return 0
	}
	return enriched[len(enriched)-1].Time.Sub(enriched[0].Time)
}

// Bounds computes the bounding box of an enriched track. The zero BBox
// is returned for an empty input.
func Bounds(enriched []Enriched) BBox {
	if len(enriched) == 0 {
		return BBox{}
	}

	b := BBox{
		MinLat: enriched[0].Lat, MaxLat: enriched[0].Lat,
		MinLon: enriched[0].Lon, MaxLon: enriched[0].Lon,
	}
	for _, e := range enriched[1:] {
		b.MinLat = min(b.MinLat, e.Lat)
		b.MaxLat = max(b.MaxLat, e.Lat)
		b.MinLon = min(b.MinLon, e.Lon)
		b.MaxLon = max(b.MaxLon, e.Lon)
	}
	return b
}
