package config

import "sort"

var Presets = map[string]map[string]*Config{
	"logistic": {
		"fixed-point": {
			Kind: KindLyapunov, Map: "logistic", Params: map[string]float64{"r": 2.8},
			Init: []float64{0.3}, Transient: 1000, Measure: 5000, Exponents: 1, Threshold: DefaultThreshold,
		},
		"chaos": {
			Kind: KindLyapunov, Map: "logistic", Params: map[string]float64{"r": 4.0},
			Init: []float64{0.3}, Transient: 1000, Measure: 100000, Exponents: 1, Threshold: DefaultThreshold,
		},
		"lyapunov": {
			Kind: KindSweep, Map: "logistic", Init: []float64{0.3},
			Transient: 1000, Measure: 5000, Exponents: 1, Threshold: DefaultThreshold,
			Axis: &AxisConfig{Param: "r", Min: 0, Max: 4, Steps: 2000},
		},
		"bifurcation": {
			Kind: KindBifurcation, Map: "logistic", Init: []float64{1e-5},
			Transient: 800, Threshold: DefaultThreshold,
			Axis:        &AxisConfig{Param: "r", Min: 0, Max: 4, Steps: 1000},
			Bifurcation: BifurcationConfig{Samples: 200},
		},
		"return-map": {
			Kind: KindOrbit, Map: "logistic", Params: map[string]float64{"r": 3.9},
			Init: []float64{0.2}, Transient: 100, Measure: 2000, Threshold: DefaultThreshold,
		},
	},
	"henon": {
		"lyapunov": {
			Kind: KindSweep, Map: "henon", Params: map[string]float64{"b": 0.3},
			Init: []float64{0, 0}, Transient: 5000, Measure: 10000, Exponents: 1, Threshold: 100,
			Axis: &AxisConfig{Param: "a", Min: 0.1, Max: 1.4, Steps: 500},
		},
		"spectrum": {
			Kind: KindSweep, Map: "henon", Params: map[string]float64{"b": 0.3},
			Init: []float64{0.1, 0.1}, Transient: 1000, Measure: 4000, Exponents: 2, Threshold: DefaultThreshold,
			Axis: &AxisConfig{Param: "a", Min: 1.0, Max: 1.5, Steps: 200},
		},
		"plane": {
			Kind: KindPlane, Map: "henon", Init: []float64{0, 0},
			Transient: 100, Measure: 900, Exponents: 1, Threshold: 100,
			Axis:  &AxisConfig{Param: "a", Min: 1.0, Max: 1.4, Steps: 200},
			Axis2: &AxisConfig{Param: "b", Min: 0.2, Max: 0.4, Steps: 200},
		},
		"bifurcation": {
			Kind: KindBifurcation, Map: "henon", Params: map[string]float64{"b": 0.3},
			Init: []float64{0.1, 0.1}, Transient: 100, Threshold: DefaultThreshold,
			Axis:        &AxisConfig{Param: "a", Min: 0.5, Max: 1.4, Steps: 1000},
			Bifurcation: BifurcationConfig{Samples: 200},
		},
		"attractor": {
			Kind: KindOrbit, Map: "henon", Params: map[string]float64{"a": 1.4, "b": 0.3},
			Init: []float64{0.1, 0.1}, Transient: 100, Measure: 10000, Threshold: DefaultThreshold,
		},
		"classic": {
			Kind: KindLyapunov, Map: "henon", Params: map[string]float64{"a": 1.4, "b": 0.3},
			Init: []float64{0.1, 0.1}, Transient: 1000, Measure: 10000, Exponents: 2, Threshold: DefaultThreshold,
		},
	},
	"torus": {
		"cat": {
			Kind: KindLyapunov, Map: "torus", Params: map[string]float64{"a": 1},
			Init: []float64{0.123456, 0.654321}, Transient: 100, Measure: 5000, Exponents: 2, Threshold: DefaultThreshold,
		},
		"bifurcation": {
			Kind: KindBifurcation, Map: "torus", Init: []float64{0.123456, 0.654321},
			Transient: 200, Threshold: DefaultThreshold,
			Axis:        &AxisConfig{Param: "a", Min: -0.5, Max: 2.0, Steps: 601},
			Bifurcation: BifurcationConfig{Samples: 200},
		},
		"spectrum": {
			Kind: KindSpectrum, Map: "torus", Exponents: 2,
			Axis: &AxisConfig{Param: "a", Min: -1.5, Max: 2.5, Steps: 801},
		},
		"sensitivity": {
			Kind: KindSensitivity, Map: "torus", Params: map[string]float64{"a": 1},
			Init: []float64{0.123456, 0.654321}, Threshold: DefaultThreshold,
			Sensitivity: SensitivityConfig{Delta: 1e-10, Steps: 20, Period: 1},
		},
	},
	"linear": {
		"saddle": {
			Kind: KindOrbit, Map: "linear", Init: []float64{1, 1},
			Transient: 0, Measure: 30, Threshold: DefaultThreshold,
		},
		"spectrum": {
			Kind: KindSpectrum, Map: "linear", Exponents: 2,
			Params: map[string]float64{"m11": 0.5, "m12": 1, "m21": 0, "m22": 0.5},
			Axis:   &AxisConfig{Param: "m22", Min: 0.25, Max: 2.5, Steps: 200},
		},
	},
	"flip": {
		"bifurcation": {
			Kind: KindBifurcation, Map: "flip", Init: []float64{0.1, 0.1},
			Transient: 1000, Threshold: DefaultThreshold,
			Axis:        &AxisConfig{Param: "mu", Min: -0.5, Max: 0.9, Steps: 400},
			Bifurcation: BifurcationConfig{Samples: 64},
		},
		"orbit": {
			Kind: KindOrbit, Map: "flip", Params: map[string]float64{"mu": 0.2},
			Init: []float64{0.1, 0.5}, Transient: 0, Measure: 100, Threshold: DefaultThreshold,
		},
	},
	"pitchfork": {
		"bifurcation": {
			Kind: KindBifurcation, Map: "pitchfork", Init: []float64{0.1, 0},
			Transient: 1000, Threshold: DefaultThreshold,
			Axis:        &AxisConfig{Param: "r", Min: 0, Max: 1.9, Steps: 400},
			Bifurcation: BifurcationConfig{Samples: 64},
		},
		"orbit": {
			Kind: KindOrbit, Map: "pitchfork", Params: map[string]float64{"r": 1.5},
			Init: []float64{0.05, 0.8}, Transient: 0, Measure: 100, Threshold: DefaultThreshold,
		},
	},
	"transcritical": {
		"bifurcation": {
			Kind: KindBifurcation, Map: "transcritical", Init: []float64{0.1, 0},
			Transient: 1000, Threshold: DefaultThreshold,
			Axis:        &AxisConfig{Param: "mu", Min: 0.5, Max: 2.5, Steps: 400},
			Bifurcation: BifurcationConfig{Samples: 64},
		},
		"orbit": {
			Kind: KindOrbit, Map: "transcritical", Params: map[string]float64{"mu": 1.5},
			Init: []float64{0.1, 0.5}, Transient: 0, Measure: 100, Threshold: DefaultThreshold,
		},
	},
	"saddle-node": {
		"orbit": {
			Kind: KindOrbit, Map: "saddle-node", Params: map[string]float64{"mu": -0.04},
			Init: []float64{-0.15, -0.05}, Transient: 0, Measure: 200, Threshold: DefaultThreshold,
		},
		"lyapunov": {
			Kind: KindLyapunov, Map: "saddle-node", Params: map[string]float64{"mu": -0.04},
			Init: []float64{-0.15, -0.05}, Transient: 500, Measure: 5000, Exponents: 2, Threshold: DefaultThreshold,
		},
	},
	"hopf": {
		"circle": {
			Kind: KindOrbit, Map: "hopf", Params: map[string]float64{"mu": 0.1},
			Init: []float64{0.05, 0}, Transient: 200, Measure: 2000, Threshold: DefaultThreshold,
		},
		"bifurcation": {
			Kind: KindBifurcation, Map: "hopf", Init: []float64{0.05, 0},
			Transient: 1000, Threshold: DefaultThreshold,
			Axis:        &AxisConfig{Param: "mu", Min: -0.2, Max: 0.3, Steps: 250},
			Bifurcation: BifurcationConfig{Samples: 200},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(mapName, preset string) *Config {
	mapPresets, ok := Presets[mapName]
	if !ok {
		return nil
	}
	cfg, ok := mapPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	out.Name = mapName + "/" + preset
	return out
}

func ListPresets(mapName string) []string {
	mapPresets, ok := Presets[mapName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(mapPresets))
	for name := range mapPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
