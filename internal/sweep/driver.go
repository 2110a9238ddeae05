// Package sweep evaluates Lyapunov exponents and attractors over 1-D and 2-D
// parameter grids on a bounded worker pool.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/chaoslab/internal/analysis"
	"github.com/san-kum/chaoslab/internal/dynamo"
)

// Progress observes sweep completion. Update is called from worker
// goroutines and must be safe for concurrent use.
type Progress interface {
	Update(done, total int)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(done, total int)

func (f ProgressFunc) Update(done, total int) { f(done, total) }

// PointFunc evaluates one grid point. Returning an error that wraps
// dynamo.ErrDiverged marks the point invalid; any other error aborts the
// sweep.
type PointFunc func(ctx context.Context, p dynamo.Params) ([]float64, error)

type Driver struct {
	workers  int
	logger   *zap.Logger
	progress Progress
}

type Option func(*Driver)

// WithWorkers bounds the number of concurrent grid points. n <= 0 means
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(d *Driver) { d.workers = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithProgress(p Progress) Option {
	return func(d *Driver) { d.progress = p }
}

func NewDriver(opts ...Option) *Driver {
	d := &Driver{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers <= 0 {
		d.workers = dynamo.DefaultWorkers()
	}
	return d
}

func (d *Driver) Workers() int { return d.workers }

func resolveBase(m dynamo.Map, base dynamo.Params) (dynamo.Params, error) {
	if base == nil {
		base = m.DefaultParams()
	}
	if len(base) != len(m.ParamNames()) {
		return nil, dynamo.Invalidf("map %s takes %d parameters, got %d", m.Name(), len(m.ParamNames()), len(base))
	}
	return base, nil
}

// Sweep1D estimates cfg.Exponents exponents at every value of axis, the
// other parameters fixed at base (nil means the map defaults).
func (d *Driver) Sweep1D(ctx context.Context, m dynamo.Map, base dynamo.Params, axis Axis, x0 dynamo.State, cfg analysis.Config) (*Series, error) {
	est, err := d.prepare(m, x0, cfg)
	if err != nil {
		return nil, err
	}
	return d.Evaluate1D(ctx, m, base, axis, cfg.Exponents, func(ctx context.Context, p dynamo.Params) ([]float64, error) {
		return est.Estimate(ctx, m, p, x0)
	})
}

// Sweep2D estimates exponents over axis1 x axis2. Rows of the result follow
// axis2 and columns axis1.
func (d *Driver) Sweep2D(ctx context.Context, m dynamo.Map, base dynamo.Params, axis1, axis2 Axis, x0 dynamo.State, cfg analysis.Config) (*Grid, error) {
	est, err := d.prepare(m, x0, cfg)
	if err != nil {
		return nil, err
	}
	return d.Evaluate2D(ctx, m, base, axis1, axis2, cfg.Exponents, func(ctx context.Context, p dynamo.Params) ([]float64, error) {
		return est.Estimate(ctx, m, p, x0)
	})
}

func (d *Driver) prepare(m dynamo.Map, x0 dynamo.State, cfg analysis.Config) (*analysis.Estimator, error) {
	est, err := analysis.NewEstimator(cfg)
	if err != nil {
		return nil, err
	}
	if err := est.Check(m, x0); err != nil {
		return nil, err
	}
	return est, nil
}

// Evaluate1D runs fn at every axis value. Each successful call must return
// exactly width values.
func (d *Driver) Evaluate1D(ctx context.Context, m dynamo.Map, base dynamo.Params, axis Axis, width int, fn PointFunc) (*Series, error) {
	if m == nil {
		return nil, dynamo.Invalidf("nil map")
	}
	idx, err := axis.index(m)
	if err != nil {
		return nil, err
	}
	base, err = resolveBase(m, base)
	if err != nil {
		return nil, err
	}
	if width < 1 {
		return nil, dynamo.Invalidf("result width must be at least 1, got %d", width)
	}

	n := axis.Len()
	s := &Series{
		Map:       m.Name(),
		Param:     axis.Param,
		Params:    append([]float64(nil), axis.Values...),
		Values:    make([][]float64, n),
		Exponents: width,
	}

	err = d.run(ctx, m.Name(), n, func(ctx context.Context, i int) error {
		v, err := d.point(ctx, fn, base.With(idx, axis.Values[i]), width)
		if err != nil {
			return err
		}
		s.Values[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Evaluate2D runs fn over the axis1 x axis2 grid.
func (d *Driver) Evaluate2D(ctx context.Context, m dynamo.Map, base dynamo.Params, axis1, axis2 Axis, width int, fn PointFunc) (*Grid, error) {
	if m == nil {
		return nil, dynamo.Invalidf("nil map")
	}
	i1, err := axis1.index(m)
	if err != nil {
		return nil, err
	}
	i2, err := axis2.index(m)
	if err != nil {
		return nil, err
	}
	if i1 == i2 {
		return nil, dynamo.Invalidf("both axes sweep parameter %q", axis1.Param)
	}
	base, err = resolveBase(m, base)
	if err != nil {
		return nil, err
	}
	if width < 1 {
		return nil, dynamo.Invalidf("result width must be at least 1, got %d", width)
	}

	g := newGrid(axis1.Len(), axis2.Len(), width)
	g.Map = m.Name()
	g.Param1, g.Param2 = axis1.Param, axis2.Param
	g.Axis1 = append([]float64(nil), axis1.Values...)
	g.Axis2 = append([]float64(nil), axis2.Values...)

	err = d.run(ctx, m.Name(), g.Rows*g.Cols, func(ctx context.Context, i int) error {
		row, col := i/g.Cols, i%g.Cols
		p := base.With(i1, axis1.Values[col])
		p[i2] = axis2.Values[row]

		v, err := d.point(ctx, fn, p, width)
		if err != nil {
			return err
		}
		copy(g.Data[g.offset(row, col):], v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Bifurcation samples the attractor of one state component along axis. No
// Jacobian is needed.
func (d *Driver) Bifurcation(ctx context.Context, m dynamo.Map, base dynamo.Params, axis Axis, x0 dynamo.State, cfg analysis.AttractorConfig) (*Bifurcation, error) {
	if m == nil {
		return nil, dynamo.Invalidf("nil map")
	}
	idx, err := axis.index(m)
	if err != nil {
		return nil, err
	}
	base, err = resolveBase(m, base)
	if err != nil {
		return nil, err
	}
	if len(x0) != m.Dim() {
		return nil, dynamo.Invalidf("initial state has %d components, map %s needs %d", len(x0), m.Name(), m.Dim())
	}
	if cfg.Component < 0 || cfg.Component >= m.Dim() {
		return nil, dynamo.Invalidf("component %d out of range for %d-dimensional map %s", cfg.Component, m.Dim(), m.Name())
	}
	if cfg.Samples < 1 {
		return nil, dynamo.Invalidf("samples must be at least 1, got %d", cfg.Samples)
	}

	b := &Bifurcation{
		Map:       m.Name(),
		Param:     axis.Param,
		Component: cfg.Component,
		Branches:  make([]Branch, axis.Len()),
	}

	err = d.run(ctx, m.Name(), axis.Len(), func(ctx context.Context, i int) error {
		param := axis.Values[i]
		values, err := analysis.Attractor(ctx, m, base.With(idx, param), x0, cfg)
		switch {
		case err == nil:
			b.Branches[i] = Branch{Param: param, Values: values, Valid: true}
		case errors.Is(err, dynamo.ErrDiverged):
			d.logger.Debug("point diverged", zap.Float64(axis.Param, param), zap.Error(err))
			b.Branches[i] = Branch{Param: param}
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (d *Driver) point(ctx context.Context, fn PointFunc, p dynamo.Params, width int) ([]float64, error) {
	v, err := fn(ctx, p)
	if err != nil {
		if errors.Is(err, dynamo.ErrDiverged) {
			d.logger.Debug("point diverged", zap.Float64s("params", p), zap.Error(err))
			return nanVector(width), nil
		}
		return nil, fmt.Errorf("params %v: %w", p, err)
	}
	if len(v) != width {
		return nil, dynamo.Invalidf("point returned %d values, want %d", len(v), width)
	}
	return v, nil
}

func (d *Driver) run(ctx context.Context, name string, n int, fn func(ctx context.Context, i int) error) error {
	start := time.Now()
	d.logger.Info("sweep started", zap.String("map", name), zap.Int("points", n), zap.Int("workers", d.workers))

	var done atomic.Int64
	err := dynamo.ParallelFor(ctx, n, d.workers, func(ctx context.Context, i int) error {
		if err := fn(ctx, i); err != nil {
			return err
		}
		if d.progress != nil {
			d.progress.Update(int(done.Add(1)), n)
		}
		return nil
	})
	if err != nil {
		d.logger.Warn("sweep aborted", zap.String("map", name), zap.Error(err))
		return err
	}

	d.logger.Info("sweep finished", zap.String("map", name), zap.Int("points", n), zap.Duration("elapsed", time.Since(start)))
	return nil
}
