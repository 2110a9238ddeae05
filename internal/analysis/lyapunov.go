package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/orbit"
	"github.com/san-kum/chaoslab/internal/tangent"
)

// Mode selects how divergence inside the measurement horizon is treated.
type Mode int

const (
	// ModeStrict aborts with dynamo.ErrDiverged on the first divergence.
	ModeStrict Mode = iota
	// ModeLenient skips non-finite growth steps and, if the orbit escapes,
	// averages over the valid steps collected so far.
	ModeLenient
)

func (m Mode) String() string {
	if m == ModeLenient {
		return "lenient"
	}
	return "strict"
}

// ParseMode accepts "strict", "lenient" or "" (strict).
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "strict":
		return ModeStrict, nil
	case "lenient":
		return ModeLenient, nil
	}
	return ModeStrict, dynamo.Invalidf("unknown estimation mode %q", s)
}

type Config struct {
	Transient int
	Measure   int
	// Exponents is the tangent subspace size k: 1 for the maximal exponent,
	// Dim() for the full spectrum.
	Exponents      int
	Threshold      float64
	RenormInterval int
	Mode           Mode
}

func DefaultConfig() Config {
	return Config{
		Transient:      1000,
		Measure:        5000,
		Exponents:      1,
		Threshold:      orbit.DefaultThreshold,
		RenormInterval: 1,
		Mode:           ModeStrict,
	}
}

func (c Config) Validate() error {
	if c.Transient < 0 {
		return dynamo.Invalidf("transient must be non-negative, got %d", c.Transient)
	}
	if c.Measure < 1 {
		return dynamo.Invalidf("measure must be at least 1, got %d", c.Measure)
	}
	if c.Exponents < 1 {
		return dynamo.Invalidf("exponents must be at least 1, got %d", c.Exponents)
	}
	if c.Threshold < 0 || math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return dynamo.Invalidf("divergence threshold must be positive and finite, got %g", c.Threshold)
	}
	if c.RenormInterval > c.Measure {
		return dynamo.Invalidf("renormalization interval %d exceeds measure %d", c.RenormInterval, c.Measure)
	}
	return nil
}

func (c Config) interval() int {
	if c.RenormInterval < 1 {
		return 1
	}
	return c.RenormInterval
}

// Accumulator keeps k running sums of log growth plus the number of valid
// renormalization steps for one orbit.
type Accumulator struct {
	sums  []float64
	valid int
}

func NewAccumulator(k int) *Accumulator {
	return &Accumulator{sums: make([]float64, k)}
}

func (a *Accumulator) Add(growth []float64) {
	for i, g := range growth {
		a.sums[i] += math.Log(g)
	}
	a.valid++
}

func (a *Accumulator) Reset() {
	for i := range a.sums {
		a.sums[i] = 0
	}
	a.valid = 0
}

func (a *Accumulator) Valid() int { return a.valid }

// Sums returns a copy of the running sums.
func (a *Accumulator) Sums() []float64 {
	out := make([]float64, len(a.sums))
	copy(out, a.sums)
	return out
}

// Mean divides every sum by steps.
func (a *Accumulator) Mean(steps int) []float64 {
	out := make([]float64, len(a.sums))
	for i, s := range a.sums {
		out[i] = s / float64(steps)
	}
	return out
}

// errCollapsed stops the orbit once the leading direction has an exactly
// zero growth: every exponent is then log 0 = -Inf.
var errCollapsed = errors.New("tangent frame collapsed")

// Estimator computes Lyapunov exponents by propagating a tangent frame
// along the orbit and renormalizing it with QR.
type Estimator struct {
	cfg Config
}

func NewEstimator(cfg Config) (*Estimator, error) {
	if cfg.Threshold == 0 {
		cfg.Threshold = orbit.DefaultThreshold
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{cfg: cfg}, nil
}

func (e *Estimator) Config() Config { return e.cfg }

// Check reports configuration problems for m and x0 without iterating.
func (e *Estimator) Check(m dynamo.Map, x0 dynamo.State) error {
	if m == nil {
		return dynamo.Invalidf("nil map")
	}
	if _, ok := dynamo.JacobianOf(m); !ok {
		return fmt.Errorf("%w: %s", dynamo.ErrUnsupported, m.Name())
	}
	d := m.Dim()
	if d <= 0 {
		return dynamo.Invalidf("map %s has dimension %d", m.Name(), d)
	}
	if e.cfg.Exponents > d {
		return dynamo.Invalidf("requested %d exponents from a %d-dimensional map", e.cfg.Exponents, d)
	}
	if len(x0) != d {
		return dynamo.Invalidf("initial state has %d components, map %s needs %d", len(x0), m.Name(), d)
	}
	return nil
}

// Estimate returns the k largest Lyapunov exponents in descending order.
// A step where J annihilates frame direction c (a singular Jacobian or a
// superstable point) fixes exponents c..k-1 at -Inf. The leading c directions
// keep being propagated and are averaged over the full horizon.
func (e *Estimator) Estimate(ctx context.Context, m dynamo.Map, p dynamo.Params, x0 dynamo.State) ([]float64, error) {
	if err := e.Check(m, x0); err != nil {
		return nil, err
	}
	jac, _ := dynamo.JacobianOf(m)

	d, k := m.Dim(), e.cfg.Exponents
	interval := e.cfg.interval()
	prop, err := tangent.New(d, k, interval)
	if err != nil {
		return nil, err
	}

	acc := NewAccumulator(k)
	j := dynamo.NewMatrix(d, d)
	lenient := e.cfg.Mode == ModeLenient

	step := func(_ int, x dynamo.State) error {
		jac(x, p, j)
		growth, renorm, err := prop.Advance(j)
		if err != nil {
			var ge *tangent.GrowthError
			if errors.As(err, &ge) && ge.Collapsed() {
				for c := ge.Direction; c < len(growth); c++ {
					growth[c] = 0
				}
				acc.Add(growth)
				if ge.Direction == 0 {
					return errCollapsed
				}
				return prop.Shrink(ge.Direction)
			}
			if lenient && errors.Is(err, dynamo.ErrDiverged) {
				prop.Reset()
				return nil
			}
			return err
		}
		if renorm {
			acc.Add(growth)
		}
		return nil
	}

	it := orbit.New(m, orbit.Config{
		Transient: e.cfg.Transient,
		Measure:   e.cfg.Measure,
		Threshold: e.cfg.Threshold,
	})

	if _, err := it.Run(ctx, p, x0, step); err != nil {
		if errors.Is(err, errCollapsed) {
			return sortDescending(acc.Mean(acc.Valid() * interval)), nil
		}
		if lenient && errors.Is(err, dynamo.ErrDiverged) && acc.Valid() > 0 {
			return sortDescending(acc.Mean(acc.Valid() * interval)), nil
		}
		return nil, err
	}

	if acc.Valid() == 0 {
		return nil, &dynamo.DivergenceError{Step: e.cfg.Measure, Phase: dynamo.PhaseMeasure, Reason: "no valid renormalization steps"}
	}
	return sortDescending(acc.Mean(acc.Valid() * interval)), nil
}

func sortDescending(v []float64) []float64 {
	sort.Sort(sort.Reverse(sort.Float64Slice(v)))
	return v
}

// MaxExponent is a convenience wrapper returning only the largest exponent.
func MaxExponent(ctx context.Context, m dynamo.Map, p dynamo.Params, x0 dynamo.State, cfg Config) (float64, error) {
	cfg.Exponents = 1
	est, err := NewEstimator(cfg)
	if err != nil {
		return math.NaN(), err
	}
	exps, err := est.Estimate(ctx, m, p, x0)
	if err != nil {
		return math.NaN(), err
	}
	return exps[0], nil
}
