package analysis

import (
	"context"
	"math"

	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/orbit"
)

// AttractorConfig controls tail sampling for bifurcation diagrams.
type AttractorConfig struct {
	Transient int
	Samples   int
	Threshold float64
	// Component is the state index recorded.
	Component int
	// Resolution quantizes samples and drops repeats when > 0, so a period-4
	// window yields 4 values instead of Samples.
	Resolution float64
}

func DefaultAttractorConfig() AttractorConfig {
	return AttractorConfig{
		Transient:  1000,
		Samples:    200,
		Threshold:  orbit.DefaultThreshold,
		Resolution: 0,
	}
}

// Attractor iterates past the transient and returns Samples values of one
// state component. A divergent orbit returns dynamo.ErrDiverged.
func Attractor(ctx context.Context, m dynamo.Map, p dynamo.Params, x0 dynamo.State, cfg AttractorConfig) ([]float64, error) {
	if m == nil {
		return nil, dynamo.Invalidf("nil map")
	}
	if cfg.Component < 0 || cfg.Component >= m.Dim() {
		return nil, dynamo.Invalidf("component %d out of range for %d-dimensional map %s", cfg.Component, m.Dim(), m.Name())
	}
	if cfg.Samples < 1 {
		return nil, dynamo.Invalidf("samples must be at least 1, got %d", cfg.Samples)
	}

	it := orbit.New(m, orbit.Config{
		Transient: cfg.Transient,
		Measure:   cfg.Samples,
		Threshold: cfg.Threshold,
		Record:    true,
	})
	out, err := it.Run(ctx, p, x0, nil)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(out.Tail))
	for i, x := range out.Tail {
		values[i] = x[cfg.Component]
	}
	if cfg.Resolution > 0 {
		values = Distinct(values, cfg.Resolution)
	}
	return values, nil
}

// Distinct keeps the first sample of every resolution-sized bucket, in
// order of appearance.
func Distinct(values []float64, resolution float64) []float64 {
	if resolution <= 0 {
		return values
	}
	seen := make(map[int64]bool, len(values))
	out := make([]float64, 0, len(values))
	for _, v := range values {
		key := int64(math.Round(v / resolution))
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}
