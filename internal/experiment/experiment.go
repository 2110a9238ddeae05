package experiment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/chaoslab/internal/analysis"
	"github.com/san-kum/chaoslab/internal/config"
	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/maps"
	"github.com/san-kum/chaoslab/internal/orbit"
	"github.com/san-kum/chaoslab/internal/sweep"
)

// defaultInit seeds every component when a config has no init_state.
const defaultInit = 0.1

// matrixMap is implemented by maps whose Jacobian is a constant matrix.
type matrixMap interface {
	Matrix(p dynamo.Params) *dynamo.Matrix
}

type Result struct {
	Name   string
	Kind   string
	Map    string
	Params dynamo.Params
	Init   dynamo.State

	Exponents   []float64
	Series      *sweep.Series
	Grid        *sweep.Grid
	Bifurcation *sweep.Bifurcation
	Portrait    *analysis.PhasePortrait2D
	Distances   []float64
	Rate        float64

	Elapsed time.Duration
}

type Experiment struct {
	cfg    *config.Config
	m      dynamo.Map
	base   dynamo.Params
	x0     dynamo.State
	mode   analysis.Mode
	logger *zap.Logger
	opts   []sweep.Option
}

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSweepOptions forwards options to the sweep driver (workers, progress).
func WithSweepOptions(opts ...sweep.Option) Option {
	return func(e *Experiment) { e.opts = append(e.opts, opts...) }
}

// New resolves the map, parameters and initial state of cfg. Every config
// problem is reported here, before anything is iterated.
func New(cfg *config.Config, reg *Registry, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}

	m, err := reg.GetMap(cfg.Map)
	if err != nil {
		return nil, err
	}
	if cfg.Compose > 1 {
		m = maps.Compose(m, cfg.Compose)
	}

	base, err := ResolveParams(m, cfg.Params)
	if err != nil {
		return nil, err
	}

	x0 := make(dynamo.State, m.Dim())
	switch {
	case len(cfg.Init) == 0:
		for i := range x0 {
			x0[i] = defaultInit
		}
	case len(cfg.Init) == m.Dim():
		copy(x0, cfg.Init)
	default:
		return nil, dynamo.Invalidf("init_state has %d components, map %s needs %d", len(cfg.Init), m.Name(), m.Dim())
	}

	mode, err := analysis.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	e := &Experiment{cfg: cfg, m: m, base: base, x0: x0, mode: mode, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ResolveParams overlays named values on the map defaults.
func ResolveParams(m dynamo.Map, named map[string]float64) (dynamo.Params, error) {
	p := m.DefaultParams().Clone()
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		i := dynamo.ParamIndex(m, k)
		if i < 0 {
			return nil, dynamo.Invalidf("map %s has no parameter %q (have %v)", m.Name(), k, m.ParamNames())
		}
		p[i] = named[k]
	}
	return p, nil
}

func (e *Experiment) Map() dynamo.Map        { return e.m }
func (e *Experiment) Params() dynamo.Params  { return e.base.Clone() }
func (e *Experiment) Init() dynamo.State     { return e.x0.Clone() }
func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) estimatorConfig() analysis.Config {
	return analysis.Config{
		Transient:      e.cfg.Transient,
		Measure:        e.cfg.Measure,
		Exponents:      e.cfg.Exponents,
		Threshold:      e.cfg.Threshold,
		RenormInterval: e.cfg.RenormInterval,
		Mode:           e.mode,
	}
}

func (e *Experiment) driver() *sweep.Driver {
	opts := []sweep.Option{sweep.WithLogger(e.logger)}
	if e.cfg.Workers > 0 {
		opts = append(opts, sweep.WithWorkers(e.cfg.Workers))
	}
	return sweep.NewDriver(append(opts, e.opts...)...)
}

func axisOf(a *config.AxisConfig) sweep.Axis {
	return sweep.LinearAxis(a.Param, a.Min, a.Max, a.Steps)
}

// Run executes the experiment. A single-orbit kind that diverges returns an
// error wrapping dynamo.ErrDiverged; sweep kinds record NaN instead.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{
		Name:   e.cfg.Name,
		Kind:   e.cfg.Kind,
		Map:    e.m.Name(),
		Params: e.base.Clone(),
		Init:   e.x0.Clone(),
	}

	e.logger.Debug("running experiment",
		zap.String("kind", e.cfg.Kind),
		zap.String("map", e.m.Name()),
		zap.Float64s("params", e.base),
	)

	var err error
	switch e.cfg.Kind {
	case config.KindLyapunov:
		err = e.runLyapunov(ctx, res)
	case config.KindSweep:
		res.Series, err = e.driver().Sweep1D(ctx, e.m, e.base, axisOf(e.cfg.Axis), e.x0, e.estimatorConfig())
	case config.KindPlane:
		res.Grid, err = e.driver().Sweep2D(ctx, e.m, e.base, axisOf(e.cfg.Axis), axisOf(e.cfg.Axis2), e.x0, e.estimatorConfig())
	case config.KindBifurcation:
		res.Bifurcation, err = e.driver().Bifurcation(ctx, e.m, e.base, axisOf(e.cfg.Axis), e.x0, analysis.AttractorConfig{
			Transient:  e.cfg.Transient,
			Samples:    e.cfg.Bifurcation.Samples,
			Threshold:  e.cfg.Threshold,
			Component:  e.cfg.Bifurcation.Component,
			Resolution: e.cfg.Bifurcation.Resolution,
		})
	case config.KindSpectrum:
		res.Series, err = e.runSpectrum(ctx)
	case config.KindOrbit:
		res.Portrait, err = e.runOrbit(ctx)
	case config.KindSensitivity:
		err = e.runSensitivity(ctx, res)
	default:
		err = dynamo.Invalidf("unknown kind %q", e.cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", e.cfg.Kind, e.m.Name(), err)
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func (e *Experiment) runLyapunov(ctx context.Context, res *Result) error {
	est, err := analysis.NewEstimator(e.estimatorConfig())
	if err != nil {
		return err
	}
	res.Exponents, err = est.Estimate(ctx, e.m, e.base, e.x0)
	return err
}

func (e *Experiment) runSpectrum(ctx context.Context) (*sweep.Series, error) {
	mm, ok := e.m.(matrixMap)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a constant-matrix map", dynamo.ErrUnsupported, e.m.Name())
	}
	return e.driver().Evaluate1D(ctx, e.m, e.base, axisOf(e.cfg.Axis), e.m.Dim(),
		func(_ context.Context, p dynamo.Params) ([]float64, error) {
			return analysis.LinearSpectrum(mm.Matrix(p))
		})
}

func (e *Experiment) runOrbit(ctx context.Context) (*analysis.PhasePortrait2D, error) {
	yIdx := 1
	if e.m.Dim() == 1 {
		yIdx = 0
	}
	return analysis.PhasePortrait(ctx, e.m, e.base, e.x0, orbit.Config{
		Transient: e.cfg.Transient,
		Measure:   e.cfg.Measure,
		Threshold: e.cfg.Threshold,
	}, 0, yIdx)
}

func (e *Experiment) runSensitivity(ctx context.Context, res *Result) error {
	dist, err := analysis.Separation(ctx, e.m, e.base, e.x0, analysis.SeparationConfig{
		Delta:     e.cfg.Sensitivity.Delta,
		Steps:     e.cfg.Sensitivity.Steps,
		Threshold: e.cfg.Threshold,
		Period:    e.cfg.Sensitivity.Period,
	})
	if err != nil {
		return err
	}
	res.Distances = dist
	res.Rate, err = analysis.GrowthRate(dist)
	return err
}
