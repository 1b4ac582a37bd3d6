package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/trailtools/runstop/internal/stops"
	"github.com/trailtools/runstop/internal/track"
)

// Column order of the enriched-sample export.
var header = []string{"longitude", "latitude", "datetime", "distance_to_next_m", "speed_mps", "speed_kmh"}

// WriteCSV writes one row per enriched sample, in source order.
// Positions are formatted with the shortest exact representation so a
// re-import reproduces them bit for bit; timestamps are RFC 3339 UTC.
// The final sample has no next segment, so its derived columns are
// left empty rather than written as a misleading zero.
func WriteCSV(w io.Writer, enriched []track.Enriched) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range enriched {
		row := []string{
			formatFloat(e.Lon),
			formatFloat(e.Lat),
			e.Time.UTC().Format(time.RFC3339Nano),
			"", "", "",
		}
		if e.HasNext {
			row[3] = formatFloat(e.DistanceToNextM)
			row[4] = formatFloat(e.SpeedMPS)
			row[5] = formatFloat(e.SpeedKMH)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the enriched-sample export to path.
func WriteCSVFile(path string, enriched []track.Enriched) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return WriteCSV(file, enriched)
}

// ReadCSV re-imports positions and timestamps from an enriched-sample
// export. Derived columns are ignored; they are recomputable.
func ReadCSV(r io.Reader) ([]track.Sample, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("missing header row")
	}

	samples := make([]track.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 3 {
			return nil, fmt.Errorf("row %d: expected at least 3 columns, got %d", i+1, len(rec))
		}
		lon, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad longitude %q: %w", i+1, rec[0], err)
		}
		lat, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad latitude %q: %w", i+1, rec[1], err)
		}
		ts, err := time.Parse(time.RFC3339Nano, rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad datetime %q: %w", i+1, rec[2], err)
		}
		samples = append(samples, track.Sample{Lat: lat, Lon: lon, Time: ts})
	}

	return samples, nil
}

// WriteStopsCSV writes one row per detected stop interval.
func WriteStopsCSV(w io.Writer, intervals []stops.Interval) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"start_time", "end_time", "duration_s", "latitude", "longitude", "geohash", "samples"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, iv := range intervals {
		row := []string{
			iv.StartTime.UTC().Format(time.RFC3339Nano),
			iv.EndTime.UTC().Format(time.RFC3339Nano),
			formatFloat(iv.Duration.Seconds()),
			formatFloat(iv.Lat),
			formatFloat(iv.Lon),
			iv.Geohash,
			strconv.Itoa(iv.Samples),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteStopsCSVFile writes the stop-interval export to path.
func WriteStopsCSVFile(path string, intervals []stops.Interval) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return WriteStopsCSV(file, intervals)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
