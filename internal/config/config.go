package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the environment-driven configuration surface. CLI flags
// take precedence over everything here.
type Config struct {
	Env       string // local, development, production
	OutputDir string

	// Stop detector thresholds.
	StopMinDuration  time.Duration
	StopRadiusM      float64
	GeohashPrecision uint

	// Map framing.
	MapWidth   int
	MapHeight  int
	MapZoom    int
	BBoxMargin float64
}

// Load reads .env (if present) and RUNSTOP_* environment variables,
// falling back to defaults for anything unset.
func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Env:       getenvDefault("RUNSTOP_ENV", "local"),
		OutputDir: getenvDefault("RUNSTOP_OUTPUT_DIR", "."),
	}

	minDuration, err := time.ParseDuration(getenvDefault("RUNSTOP_STOP_MIN_DURATION", "120s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUNSTOP_STOP_MIN_DURATION: %w", err)
	}
	cfg.StopMinDuration = minDuration

	radius, err := envFloat("RUNSTOP_STOP_RADIUS_M", 30)
	if err != nil {
		return nil, err
	}
	cfg.StopRadiusM = radius

	precision, err := envInt("RUNSTOP_GEOHASH_PRECISION", 8)
	if err != nil {
		return nil, err
	}
	if precision < 1 {
		return nil, fmt.Errorf("RUNSTOP_GEOHASH_PRECISION must be at least 1, got %d", precision)
	}
	cfg.GeohashPrecision = uint(precision)

	if cfg.MapWidth, err = envInt("RUNSTOP_MAP_WIDTH", 1200); err != nil {
		return nil, err
	}
	if cfg.MapHeight, err = envInt("RUNSTOP_MAP_HEIGHT", 800); err != nil {
		return nil, err
	}
	if cfg.MapZoom, err = envInt("RUNSTOP_MAP_ZOOM", 15); err != nil {
		return nil, err
	}
	if cfg.BBoxMargin, err = envFloat("RUNSTOP_BBOX_MARGIN", 0.1); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
