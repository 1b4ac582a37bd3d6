package render

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrRender marks any failure of the map renderer. The caller decides
// whether it is fatal; already-persisted tabular output is unaffected.
var ErrRender = errors.New("render: map rendering failed")

// Options frames the rendered maps.
type Options struct {
	Width      int
	Height     int
	Zoom       int     // initial zoom of the interactive map
	MarginFrac float64 // bounding-box margin as a fraction of the track span
}

// DefaultOptions returns the CLI defaults.
func DefaultOptions() Options {
	return Options{
		Width:      1200,
		Height:     800,
		Zoom:       15,
		MarginFrac: 0.1,
	}
}

// Renderer draws track and stop artifacts. It only reads its inputs.
type Renderer struct {
	opts Options
	log  *logrus.Logger
}

// New returns a Renderer with the given framing options.
func New(opts Options, log *logrus.Logger) *Renderer {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions()
	}
	return &Renderer{opts: opts, log: log}
}

// stopRadiusM scales a stop marker with its duration: 15 m base plus
// one meter per ten seconds stopped, capped so a long lunch break does
// not swallow the map.
func stopRadiusM(durationS float64) float64 {
	r := 15 + durationS/10
	if r > 120 {
		r = 120
	}
	return r
}

func wrapErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrRender)
}
