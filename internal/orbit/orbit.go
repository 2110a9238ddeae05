// Package orbit drives a map forward over a transient-then-measurement
// horizon and reports divergence explicitly.
package orbit

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/chaoslab/internal/dynamo"
)

// DefaultThreshold is the divergence bound used when Config.Threshold is 0.
const DefaultThreshold = 1e6

// ctxCheckMask controls how often the context is polled (every 1024 steps).
const ctxCheckMask = 1<<10 - 1

type Config struct {
	Transient int
	Measure   int
	Threshold float64
	// Record keeps every post-transient state in Outcome.Tail.
	Record bool
}

// StepFunc is invoked once per measured step with the state x_n before F is
// applied. Returning an error aborts the orbit.
type StepFunc func(n int, x dynamo.State) error

type Outcome struct {
	Final    dynamo.State
	Measured int
	Tail     []dynamo.State
}

type Iterator struct {
	m   dynamo.Map
	cfg Config
}

func New(m dynamo.Map, cfg Config) *Iterator {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Iterator{m: m, cfg: cfg}
}

func (it *Iterator) Config() Config { return it.cfg }

func (it *Iterator) Validate(x0 dynamo.State) error {
	if it.m == nil {
		return dynamo.Invalidf("nil map")
	}
	if it.m.Dim() <= 0 {
		return dynamo.Invalidf("map %s has dimension %d", it.m.Name(), it.m.Dim())
	}
	if len(x0) != it.m.Dim() {
		return dynamo.Invalidf("initial state has %d components, map %s needs %d", len(x0), it.m.Name(), it.m.Dim())
	}
	if it.cfg.Transient < 0 || it.cfg.Measure < 0 {
		return dynamo.Invalidf("negative horizon (transient=%d, measure=%d)", it.cfg.Transient, it.cfg.Measure)
	}
	if !(it.cfg.Threshold > 0) || math.IsInf(it.cfg.Threshold, 0) {
		return dynamo.Invalidf("divergence threshold must be positive and finite, got %g", it.cfg.Threshold)
	}
	return nil
}

// Run iterates the map from x0. x0 is never modified. On divergence the
// returned error is a *dynamo.DivergenceError and the outcome is nil.
func (it *Iterator) Run(ctx context.Context, p dynamo.Params, x0 dynamo.State, step StepFunc) (*Outcome, error) {
	if err := it.Validate(x0); err != nil {
		return nil, err
	}

	x := x0.Clone()

	for i := 0; i < it.cfg.Transient; i++ {
		if i&ctxCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		it.m.Apply(x, p, x)
		if err := it.check(x, i, dynamo.PhaseTransient); err != nil {
			return nil, err
		}
	}

	out := &Outcome{}
	if it.cfg.Record {
		out.Tail = make([]dynamo.State, 0, it.cfg.Measure)
	}

	for n := 0; n < it.cfg.Measure; n++ {
		if n&ctxCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if step != nil {
			if err := step(n, x); err != nil {
				var de *dynamo.DivergenceError
				if errors.As(err, &de) {
					de.Step, de.Phase = n, dynamo.PhaseMeasure
					return nil, de
				}
				if errors.Is(err, dynamo.ErrDiverged) {
					return nil, &dynamo.DivergenceError{Step: n, Phase: dynamo.PhaseMeasure, State: x.Clone(), Reason: err.Error()}
				}
				return nil, err
			}
		}

		it.m.Apply(x, p, x)
		if err := it.check(x, n, dynamo.PhaseMeasure); err != nil {
			return nil, err
		}
		if it.cfg.Record {
			out.Tail = append(out.Tail, x.Clone())
		}
		out.Measured++
	}

	out.Final = x
	return out, nil
}

func (it *Iterator) check(x dynamo.State, step int, phase dynamo.Phase) error {
	m := x.MaxAbs()
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return &dynamo.DivergenceError{Step: step, Phase: phase, State: x.Clone(), Reason: "non-finite state"}
	}
	if m > it.cfg.Threshold {
		return &dynamo.DivergenceError{
			Step:   step,
			Phase:  phase,
			State:  x.Clone(),
			Reason: fmt.Sprintf("max|x| %.3g > %.3g", m, it.cfg.Threshold),
		}
	}
	return nil
}
