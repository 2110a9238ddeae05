package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaoslab/internal/dynamo"
)

const (
	DefaultTransient = 1000
	DefaultMeasure   = 5000
	DefaultThreshold = 1e6
	DefaultSamples   = 200
	DefaultSteps     = 200
	DefaultDelta     = 1e-8
)

// Experiment kinds.
const (
	KindLyapunov    = "lyapunov"
	KindSweep       = "sweep"
	KindPlane       = "plane"
	KindBifurcation = "bifurcation"
	KindSpectrum    = "spectrum"
	KindOrbit       = "orbit"
	KindSensitivity = "sensitivity"
)

var kinds = map[string]bool{
	KindLyapunov: true, KindSweep: true, KindPlane: true, KindBifurcation: true,
	KindSpectrum: true, KindOrbit: true, KindSensitivity: true,
}

// Kinds lists the experiment kinds in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Config struct {
	Name    string             `yaml:"name,omitempty"`
	Kind    string             `yaml:"kind"`
	Map     string             `yaml:"map"`
	Compose int                `yaml:"compose,omitempty"`
	Params  map[string]float64 `yaml:"params,omitempty"`
	Init    []float64          `yaml:"init_state,omitempty"`

	Transient      int     `yaml:"transient"`
	Measure        int     `yaml:"measure"`
	Exponents      int     `yaml:"exponents"`
	Threshold      float64 `yaml:"threshold"`
	RenormInterval int     `yaml:"renorm_interval,omitempty"`
	Mode           string  `yaml:"mode,omitempty"`

	Axis  *AxisConfig `yaml:"axis,omitempty"`
	Axis2 *AxisConfig `yaml:"axis2,omitempty"`

	Bifurcation BifurcationConfig `yaml:"bifurcation,omitempty"`
	Sensitivity SensitivityConfig `yaml:"sensitivity,omitempty"`

	Workers int `yaml:"workers,omitempty"`
}

type AxisConfig struct {
	Param string  `yaml:"param"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Steps int     `yaml:"steps"`
}

type BifurcationConfig struct {
	Samples    int     `yaml:"samples,omitempty"`
	Component  int     `yaml:"component,omitempty"`
	Resolution float64 `yaml:"resolution,omitempty"`
}

type SensitivityConfig struct {
	Delta  float64 `yaml:"delta,omitempty"`
	Steps  int     `yaml:"steps,omitempty"`
	Period float64 `yaml:"period,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Kind:      KindLyapunov,
		Map:       "logistic",
		Transient: DefaultTransient,
		Measure:   DefaultMeasure,
		Exponents: 1,
		Threshold: DefaultThreshold,
		Bifurcation: BifurcationConfig{
			Samples: DefaultSamples,
		},
		Sensitivity: SensitivityConfig{
			Delta: DefaultDelta,
			Steps: 25,
		},
	}
}

// Clone returns a deep copy, so presets can be tweaked by callers.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	out.Init = append([]float64(nil), c.Init...)
	if c.Axis != nil {
		a := *c.Axis
		out.Axis = &a
	}
	if c.Axis2 != nil {
		a := *c.Axis2
		out.Axis2 = &a
	}
	return &out
}

// Validate checks the fields that do not depend on the map. Map-specific
// checks (parameter names, state length) happen when the experiment is built.
func (c *Config) Validate() error {
	if !kinds[c.Kind] {
		return dynamo.Invalidf("unknown kind %q (want one of %v)", c.Kind, Kinds())
	}
	if c.Map == "" {
		return dynamo.Invalidf("map is required")
	}
	if c.Compose < 0 {
		return dynamo.Invalidf("compose must be non-negative, got %d", c.Compose)
	}
	if c.Transient < 0 {
		return dynamo.Invalidf("transient must be non-negative, got %d", c.Transient)
	}
	if c.Measure < 0 {
		return dynamo.Invalidf("measure must be non-negative, got %d", c.Measure)
	}
	if c.Threshold < 0 {
		return dynamo.Invalidf("threshold must be positive, got %g", c.Threshold)
	}

	switch c.Kind {
	case KindLyapunov, KindSweep, KindPlane:
		if c.Measure < 1 {
			return dynamo.Invalidf("%s needs measure >= 1", c.Kind)
		}
		if c.Exponents < 1 {
			return dynamo.Invalidf("exponents must be at least 1, got %d", c.Exponents)
		}
	case KindBifurcation:
		if c.Bifurcation.Samples < 1 {
			return dynamo.Invalidf("bifurcation needs samples >= 1")
		}
	case KindSensitivity:
		if c.Sensitivity.Delta == 0 || c.Sensitivity.Steps < 1 {
			return dynamo.Invalidf("sensitivity needs a non-zero delta and steps >= 1")
		}
	}

	switch c.Kind {
	case KindSweep, KindBifurcation, KindSpectrum:
		if err := c.Axis.validate("axis"); err != nil {
			return err
		}
	case KindPlane:
		if err := c.Axis.validate("axis"); err != nil {
			return err
		}
		if err := c.Axis2.validate("axis2"); err != nil {
			return err
		}
		if c.Axis.Param == c.Axis2.Param {
			return dynamo.Invalidf("axis and axis2 both sweep %q", c.Axis.Param)
		}
	}
	return nil
}

func (a *AxisConfig) validate(field string) error {
	if a == nil {
		return dynamo.Invalidf("%s is required", field)
	}
	if a.Param == "" {
		return dynamo.Invalidf("%s.param is required", field)
	}
	if a.Steps < 1 {
		return dynamo.Invalidf("%s.steps must be at least 1, got %d", field, a.Steps)
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
