package stops

import (
	"testing"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailtools/runstop/internal/track"
)

var t0 = time.Date(2011, 6, 13, 14, 0, 0, 0, time.UTC)

// dwell appends samples every stepS seconds around (lat, lon) with a
// few meters of jitter, like a GPS receiver at rest.
func dwell(samples []track.Sample, lat, lon float64, start time.Time, durS, stepS int) []track.Sample {
	for s := 0; s <= durS; s += stepS {
		jLat, jLon := lat, lon
		if (s/stepS)%2 == 1 {
			jLat += 0.00005 // ~6 m of jitter
			jLon += 0.00005
		}
		samples = append(samples, track.Sample{Lat: jLat, Lon: jLon, Time: start.Add(time.Duration(s) * time.Second)})
	}
	return samples
}

func enrich(t *testing.T, samples []track.Sample) []track.Enriched {
	t.Helper()
	enriched, err := track.Enrich(samples)
	require.NoError(t, err)
	return enriched
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero min duration", func(c *Config) { c.MinDuration = 0 }, false},
		{"negative min duration", func(c *Config) { c.MinDuration = -time.Second }, true},
		{"zero radius", func(c *Config) { c.RadiusM = 0 }, true},
		{"negative radius", func(c *Config) { c.RadiusM = -5 }, true},
		{"zero precision", func(c *Config) { c.GeohashPrecision = 0 }, true},
		{"precision too high", func(c *Config) { c.GeohashPrecision = 13 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidThreshold)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDetectRejectsBadConfigBeforeScanning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RadiusM = -1

	_, err := Detect(nil, cfg)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestDetectExactMinDuration(t *testing.T) {
	var samples []track.Sample
	samples = dwell(samples, 42.0, -71.0, t0, 120, 10) // exactly 120 s stationary
	samples = append(samples, track.Sample{Lat: 42.001, Lon: -71.001, Time: t0.Add(130 * time.Second)})
	samples = append(samples, track.Sample{Lat: 42.002, Lon: -71.002, Time: t0.Add(140 * time.Second)})

	cfg := DefaultConfig()
	intervals, err := Detect(enrich(t, samples), cfg)
	require.NoError(t, err)

	require.Len(t, intervals, 1)
	iv := intervals[0]
	assert.Equal(t, 0, iv.StartIndex)
	assert.Equal(t, 12, iv.EndIndex)
	assert.Equal(t, t0, iv.StartTime)
	assert.Equal(t, t0.Add(120*time.Second), iv.EndTime)
	assert.Equal(t, 120*time.Second, iv.Duration)
	assert.Equal(t, 13, iv.Samples)
	assert.InDelta(t, 42.0, iv.Lat, 0.0001)
	assert.InDelta(t, -71.0, iv.Lon, 0.0001)
}

func TestDetectOneSecondBelowMinDuration(t *testing.T) {
	var samples []track.Sample
	// 119 s stationary: one second short of the threshold.
	samples = dwell(samples, 42.0, -71.0, t0, 112, 7)
	samples = append(samples, track.Sample{Lat: 42.0, Lon: -71.0, Time: t0.Add(119 * time.Second)})
	samples = append(samples, track.Sample{Lat: 42.001, Lon: -71.001, Time: t0.Add(129 * time.Second)})

	intervals, err := Detect(enrich(t, samples), DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestDetectNoStationaryRuns(t *testing.T) {
	var samples []track.Sample
	for i := 0; i < 20; i++ {
		samples = append(samples, track.Sample{
			Lat:  42.0 + float64(i)*0.001, // ~111 m apart, well over the radius
			Lon:  -71.0,
			Time: t0.Add(time.Duration(i*10) * time.Second),
		})
	}

	intervals, err := Detect(enrich(t, samples), DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestDetectStopSpanningWholeTrack(t *testing.T) {
	var samples []track.Sample
	samples = dwell(samples, 42.0, -71.0, t0, 300, 10)

	intervals, err := Detect(enrich(t, samples), DefaultConfig())
	require.NoError(t, err)

	require.Len(t, intervals, 1)
	assert.Equal(t, 0, intervals[0].StartIndex)
	assert.Equal(t, len(samples)-1, intervals[0].EndIndex)
	assert.Equal(t, 300*time.Second, intervals[0].Duration)
}

func TestDetectMoverSplitsTwoStops(t *testing.T) {
	var samples []track.Sample
	samples = dwell(samples, 42.0, -71.0, t0, 150, 10)
	// One sample well outside the radius between the two dwells.
	samples = append(samples, track.Sample{Lat: 42.001, Lon: -71.001, Time: t0.Add(160 * time.Second)})
	samples = dwell(samples, 42.0, -71.0, t0.Add(170*time.Second), 150, 10)

	intervals, err := Detect(enrich(t, samples), DefaultConfig())
	require.NoError(t, err)

	require.Len(t, intervals, 2)
	first, second := intervals[0], intervals[1]
	assert.True(t, first.StartTime.Before(second.StartTime))
	assert.Less(t, first.EndIndex, second.StartIndex, "intervals must not overlap")
	assert.Equal(t, 150*time.Second, first.Duration)
	assert.Equal(t, 150*time.Second, second.Duration)
}

func TestDetectGeohashLabel(t *testing.T) {
	var samples []track.Sample
	samples = dwell(samples, 42.0, -71.0, t0, 200, 10)

	cfg := DefaultConfig()
	cfg.GeohashPrecision = 6

	intervals, err := Detect(enrich(t, samples), cfg)
	require.NoError(t, err)
	require.Len(t, intervals, 1)

	iv := intervals[0]
	assert.Len(t, iv.Geohash, 6)
	assert.Equal(t, geohash.EncodeWithPrecision(iv.Lat, iv.Lon, 6), iv.Geohash)
}

func TestDetectEmptyInput(t *testing.T) {
	intervals, err := Detect(nil, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestTotalStopped(t *testing.T) {
	intervals := []Interval{
		{Duration: 90 * time.Second},
		{Duration: 30 * time.Second},
	}
	assert.Equal(t, 2*time.Minute, TotalStopped(intervals))
}
