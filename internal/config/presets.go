package config

var Presets = map[string]*Config{
	"decay": {
		Method: "rk45", Rtol: DefaultRtol, Atol: DefaultAtol,
		MaxSteps: DefaultMaxSteps, Interpolate: true,
		T0: 0, TEnd: 5, Samples: DefaultSamples,
		Operator: OperatorConfig{Kind: "diagonal", Diag: []float64{-1}},
		Y0:       []float64{1},
	},
	"oscillator": {
		Method: "rk45", Rtol: DefaultRtol, Atol: DefaultAtol,
		MaxSteps: DefaultMaxSteps, Interpolate: true,
		T0: 0, TEnd: 10, Samples: 200,
		Operator: OperatorConfig{Kind: "matrix", Matrix: [][]float64{{0, 1}, {-1, 0}}},
		Y0:       []float64{1, 0},
	},
	"damped": {
		Method: "rk45", Rtol: DefaultRtol, Atol: DefaultAtol,
		MaxSteps: DefaultMaxSteps, Interpolate: true,
		T0: 0, TEnd: 20, Samples: 400,
		Operator: OperatorConfig{Kind: "matrix", Matrix: [][]float64{{0, 1}, {-1, -0.2}}},
		Y0:       []float64{1, 0},
	},
	"driven": {
		Method: "rk23", Rtol: 1e-7, Atol: 1e-9,
		MaxSteps: DefaultMaxSteps, Interpolate: true,
		T0: 0, TEnd: 10, Samples: 200,
		Operator: OperatorConfig{Kind: "diagonal", Diag: []float64{-1}, Drive: 2},
		Y0:       []float64{1},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
