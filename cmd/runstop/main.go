package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/trailtools/runstop/internal/config"
	"github.com/trailtools/runstop/internal/export"
	"github.com/trailtools/runstop/internal/gpx"
	"github.com/trailtools/runstop/internal/render"
	"github.com/trailtools/runstop/internal/stops"
	"github.com/trailtools/runstop/internal/track"
)

// RunStats summarizes one processed track.
type RunStats struct {
	Points     int     `json:"points"`
	Tracks     int     `json:"tracks"`
	Segments   int     `json:"segments"`
	Degenerate int     `json:"degenerate_samples"`
	DistanceKM float64 `json:"distance_km"`

	DurationS         float64 `json:"duration_s"`
	AvgMovingSpeedKMH float64 `json:"avg_moving_speed_kmh"`

	Stops        int     `json:"stops"`
	StoppedTimeS float64 `json:"stopped_time_s"`

	ProcessingTime time.Duration `json:"processing_time_ms"`
}

func main() {
	var (
		inputFile = flag.String("i", "", "Input GPX file")
		outputDir = flag.String("o", "", "Output directory (default: from env, else current directory)")
		minStop   = flag.Float64("min-stop", -1, "Minimum stop duration in seconds")
		radius    = flag.Float64("radius", -1, "Stop spatial tolerance in meters")
		precision = flag.Uint("precision", 0, "Geohash precision for stop cells (1-12)")
		zoom      = flag.Int("zoom", -1, "Initial zoom of the interactive map")
		margin    = flag.Float64("margin", -1, "Bounding-box margin fraction for map framing")
		noMaps    = flag.Bool("no-maps", false, "Skip map rendering, write CSV exports only")
		showStats = flag.Bool("stats", false, "Show run statistics")
		statsJSON = flag.Bool("stats-json", false, "Output run statistics as JSON")
		version   = flag.Bool("version", false, "Show version information")
	)

	flag.Usage = func() {
		fmt.Printf("runstop - Find the stops in a recorded run\n\n")
		fmt.Printf("usage: runstop -i /path/to/track.gpx\n\n")
		fmt.Printf("examples:\n")
		fmt.Printf("  runstop -i morning_run.gpx\n")
		fmt.Printf("  runstop -i morning_run.gpx -min-stop 60 -radius 20\n")
		fmt.Printf("  runstop -i morning_run.gpx -no-maps -stats-json\n\n")
		fmt.Printf("options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("runstop v1.0.0 - GPS run stop detector")
		fmt.Println("https://github.com/trailtools/runstop")
		os.Exit(0)
	}

	if *inputFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)

	// Flags override environment configuration.
	if *minStop >= 0 {
		cfg.StopMinDuration = time.Duration(*minStop * float64(time.Second))
	}
	if *radius >= 0 {
		cfg.StopRadiusM = *radius
	}
	if *precision > 0 {
		cfg.GeohashPrecision = *precision
	}
	if *zoom >= 0 {
		cfg.MapZoom = *zoom
	}
	if *margin >= 0 {
		cfg.BBoxMargin = *margin
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	detectorCfg := stops.Config{
		MinDuration:      cfg.StopMinDuration,
		RadiusM:          cfg.StopRadiusM,
		GeohashPrecision: cfg.GeohashPrecision,
	}
	// Parameter errors abort before any scan or file write.
	if err := detectorCfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in detector parameters: %v\n", err)
		os.Exit(1)
	}

	startTime := time.Now()

	fmt.Printf("📖 Reading GPX file: %s\n", *inputFile)
	gpxData, err := gpx.Parse(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading GPX file: %v\n", err)
		os.Exit(1)
	}

	samples, err := gpxData.Samples()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting track: %v\n", err)
		os.Exit(1)
	}

	points, tracks, segments, _ := gpxData.Stats()
	fmt.Printf("📊 Track: %d points across %d track(s), %d segment(s)\n", points, tracks, segments)

	enriched, err := track.Enrich(samples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error enriching track: %v\n", err)
		os.Exit(1)
	}

	degenerate := 0
	for i, e := range enriched {
		if e.Degenerate {
			degenerate++
			log.WithFields(logrus.Fields{
				"index": i,
				"time":  e.Time,
			}).Warn("duplicate timestamp, reporting speed 0")
		}
	}

	base := strings.TrimSuffix(filepath.Base(*inputFile), filepath.Ext(*inputFile))
	outPath := func(suffix string) string {
		return filepath.Join(cfg.OutputDir, base+suffix)
	}

	// The tabular export is persisted before anything that can fail
	// downstream, so a renderer error never costs computed data.
	enrichedCSV := outPath("_enriched.csv")
	fmt.Printf("💾 Writing enriched samples: %s\n", enrichedCSV)
	if err := export.WriteCSVFile(enrichedCSV, enriched); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
		os.Exit(1)
	}

	intervals, err := stops.Detect(enriched, detectorCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error detecting stops: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("🛑 Detected %d stop(s) (min duration %s, radius %.0f m)\n",
		len(intervals), detectorCfg.MinDuration, detectorCfg.RadiusM)

	stopsCSV := outPath("_stops.csv")
	fmt.Printf("💾 Writing stop intervals: %s\n", stopsCSV)
	if err := export.WriteStopsCSVFile(stopsCSV, intervals); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing stops CSV: %v\n", err)
		os.Exit(1)
	}

	renderFailed := false
	if !*noMaps {
		r := render.New(render.Options{
			Width:      cfg.MapWidth,
			Height:     cfg.MapHeight,
			Zoom:       cfg.MapZoom,
			MarginFrac: cfg.BBoxMargin,
		}, log)

		artifacts := []struct {
			name   string
			render func() error
		}{
			{outPath("_path.png"), func() error { return r.StaticPath(outPath("_path.png"), enriched) }},
			{outPath("_stops.png"), func() error { return r.StaticStops(outPath("_stops.png"), enriched, intervals) }},
			{outPath("_map.html"), func() error { return r.Leaflet(outPath("_map.html"), enriched, intervals) }},
		}

		for _, a := range artifacts {
			fmt.Printf("🗺️  Rendering: %s\n", a.name)
			if err := a.render(); err != nil {
				// Reported, not masked; the CSVs above already stand.
				log.WithError(err).Error("map rendering failed")
				renderFailed = true
			}
		}
	}

	stats := buildStats(enriched, intervals, tracks, segments, degenerate, time.Since(startTime))

	if *statsJSON {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling stats: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	} else if *showStats {
		printStats(stats)
	}

	fmt.Printf("✅ Done: %d points, %.2f km, %d stop(s)\n",
		stats.Points, stats.DistanceKM, stats.Stops)

	if renderFailed {
		os.Exit(1)
	}
}

func buildStats(enriched []track.Enriched, intervals []stops.Interval,
	tracks, segments, degenerate int, elapsed time.Duration) RunStats {

	distance := track.TotalDistance(enriched)
	duration := track.Duration(enriched)
	stopped := stops.TotalStopped(intervals)

	stats := RunStats{
		Points:         len(enriched),
		Tracks:         tracks,
		Segments:       segments,
		Degenerate:     degenerate,
		DistanceKM:     distance / 1000,
		DurationS:      duration.Seconds(),
		Stops:          len(intervals),
		StoppedTimeS:   stopped.Seconds(),
		ProcessingTime: elapsed,
	}
	// Moving speed: stopped time doesn't count against the pace.
	if moving := duration - stopped; moving > 0 {
		stats.AvgMovingSpeedKMH = distance / moving.Seconds() * 3.6
	}
	return stats
}

func printStats(stats RunStats) {
	fmt.Printf("\n📊 Run Statistics:\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("📍 Points: %d (%d track(s), %d segment(s), %d degenerate)\n",
		stats.Points, stats.Tracks, stats.Segments, stats.Degenerate)
	fmt.Printf("📏 Distance: %.2f km\n", stats.DistanceKM)
	fmt.Printf("⏱️  Duration: %.0f s (avg moving %.1f km/h)\n", stats.DurationS, stats.AvgMovingSpeedKMH)
	fmt.Printf("🛑 Stops: %d (%.0f s stopped)\n", stats.Stops, stats.StoppedTimeS)
	fmt.Printf("⚙️  Processing Time: %v\n", stats.ProcessingTime)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}

// setupLogger mirrors the usual env split: human-readable debug output
// locally, JSON for anything that ships logs.
func setupLogger(env string) *logrus.Logger {
	log := logrus.New()

	switch env {
	case "production":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		log.SetLevel(logrus.InfoLevel)
	case "development":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}
