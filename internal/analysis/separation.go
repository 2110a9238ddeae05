package analysis

import (
	"context"
	"math"

	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/orbit"
)

type SeparationConfig struct {
	// Delta is added to component 0 of the second trajectory.
	Delta     float64
	Steps     int
	Threshold float64
	// Period wraps coordinate differences into [-Period/2, Period/2) when
	// positive, for maps on a torus.
	Period float64
}

func DefaultSeparationConfig() SeparationConfig {
	return SeparationConfig{Delta: 1e-8, Steps: 25, Threshold: orbit.DefaultThreshold}
}

// Separation iterates x0 and a perturbed copy side by side and returns the
// distance between them after each step. It needs no Jacobian.
func Separation(ctx context.Context, m dynamo.Map, p dynamo.Params, x0 dynamo.State, cfg SeparationConfig) ([]float64, error) {
	if m == nil {
		return nil, dynamo.Invalidf("nil map")
	}
	if len(x0) != m.Dim() {
		return nil, dynamo.Invalidf("initial state has %d components, map %s needs %d", len(x0), m.Name(), m.Dim())
	}
	if cfg.Delta == 0 || math.IsNaN(cfg.Delta) || math.IsInf(cfg.Delta, 0) {
		return nil, dynamo.Invalidf("perturbation must be finite and non-zero, got %g", cfg.Delta)
	}
	if cfg.Steps < 1 {
		return nil, dynamo.Invalidf("steps must be at least 1, got %d", cfg.Steps)
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = orbit.DefaultThreshold
	}

	a := x0.Clone()
	b := x0.Clone()
	b[0] += cfg.Delta

	dist := make([]float64, cfg.Steps)
	for n := 0; n < cfg.Steps; n++ {
		if n&ctxCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		m.Apply(a, p, a)
		m.Apply(b, p, b)
		for _, x := range []dynamo.State{a, b} {
			if v := x.MaxAbs(); !(v <= cfg.Threshold) {
				return nil, &dynamo.DivergenceError{Step: n, Phase: dynamo.PhaseMeasure, State: x.Clone(), Reason: "separation orbit escaped"}
			}
		}
		dist[n] = distance(a, b, cfg.Period)
	}
	return dist, nil
}

const ctxCheckMask = 1<<10 - 1

func distance(a, b dynamo.State, period float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		if period > 0 {
			d -= period * math.Round(d/period)
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

// GrowthRate fits log(dist[n]) = c + lambda*n by least squares and returns
// lambda. Zero distances are skipped; fewer than two usable points is an
// error.
func GrowthRate(dist []float64) (float64, error) {
	var n, sx, sy, sxx, sxy float64
	for i, d := range dist {
		if !(d > 0) || math.IsInf(d, 0) {
			continue
		}
		x, y := float64(i), math.Log(d)
		n++
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	if n < 2 {
		return math.NaN(), dynamo.Invalidf("need at least two positive distances, got %v", n)
	}
	den := n*sxx - sx*sx
	return (n*sxy - sx*sy) / den, nil
}
