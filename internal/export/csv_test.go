package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailtools/runstop/internal/stops"
	"github.com/trailtools/runstop/internal/track"
)

func testEnriched(t *testing.T) []track.Enriched {
	t.Helper()
	samples := []track.Sample{
		{Lat: 42.32791, Lon: -71.10868, Time: time.Date(2011, 6, 13, 14, 42, 1, 0, time.UTC)},
		{Lat: 42.32796, Lon: -71.10874, Time: time.Date(2011, 6, 13, 14, 42, 4, 0, time.UTC)},
		{Lat: 42.328172, Lon: -71.109008, Time: time.Date(2011, 6, 13, 14, 42, 8, 0, time.UTC)},
	}
	enriched, err := track.Enrich(samples)
	require.NoError(t, err)
	return enriched
}

func TestWriteCSVColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testEnriched(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4) // header + 3 samples

	assert.Equal(t, "longitude,latitude,datetime,distance_to_next_m,speed_mps,speed_kmh", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "-71.10868,42.32791,2011-06-13T14:42:01Z,"))

	// The last sample has no next segment: derived columns stay empty.
	assert.True(t, strings.HasSuffix(lines[3], ",,,"), "got %q", lines[3])
}

func TestCSVRoundTrip(t *testing.T) {
	enriched := testEnriched(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, enriched))

	samples, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, samples, len(enriched))

	for i, s := range samples {
		assert.Equal(t, enriched[i].Lat, s.Lat, "lat %d", i)
		assert.Equal(t, enriched[i].Lon, s.Lon, "lon %d", i)
		assert.True(t, enriched[i].Time.Equal(s.Time), "time %d", i)
	}
}

func TestWriteCSVFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	path := filepath.Join(dir, "enriched.csv")
	require.NoError(t, WriteCSVFile(path, testEnriched(t)))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	samples, err := ReadCSV(file)
	require.NoError(t, err)
	assert.Len(t, samples, 3)
}

func TestReadCSVErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty input", ""},
		{"bad longitude", "longitude,latitude,datetime\nnope,42.0,2011-06-13T14:42:01Z"},
		{"bad latitude", "longitude,latitude,datetime\n-71.0,nope,2011-06-13T14:42:01Z"},
		{"bad datetime", "longitude,latitude,datetime\n-71.0,42.0,yesterday"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.in))
			assert.Error(t, err)
		})
	}
}

func TestWriteStopsCSV(t *testing.T) {
	intervals := []stops.Interval{
		{
			StartIndex: 3,
			EndIndex:   15,
			StartTime:  time.Date(2011, 6, 13, 14, 45, 0, 0, time.UTC),
			EndTime:    time.Date(2011, 6, 13, 14, 47, 30, 0, time.UTC),
			Duration:   150 * time.Second,
			Lat:        42.328,
			Lon:        -71.1088,
			Geohash:    "drt2yq8c",
			Samples:    13,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStopsCSV(&buf, intervals))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "start_time,end_time,duration_s,latitude,longitude,geohash,samples", lines[0])
	assert.Equal(t, "2011-06-13T14:45:00Z,2011-06-13T14:47:30Z,150,42.328,-71.1088,drt2yq8c,13", lines[1])
}

func TestWriteStopsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStopsCSV(&buf, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1) // header only
}
