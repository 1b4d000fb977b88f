package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odeflow/internal/operator"
	"github.com/san-kum/odeflow/internal/solve"
	"github.com/san-kum/odeflow/internal/stepper"
	"github.com/san-kum/odeflow/internal/vec"
)

const (
	DefaultRtol     = 1e-6
	DefaultAtol     = 1e-8
	DefaultMaxSteps = 10000
	DefaultSamples  = 100
)

type Config struct {
	Method      string  `yaml:"method"`
	Rtol        float64 `yaml:"rtol"`
	Atol        float64 `yaml:"atol"`
	FirstStep   float64 `yaml:"first_step"`
	MinStep     float64 `yaml:"min_step"`
	MaxStep     float64 `yaml:"max_step"`
	MaxSteps    int     `yaml:"max_steps"`
	Interpolate bool    `yaml:"interpolate"`

	T0      float64 `yaml:"t0"`
	TEnd    float64 `yaml:"t_end"`
	Samples int     `yaml:"samples"`

	Operator OperatorConfig `yaml:"operator"`
	Y0       []float64      `yaml:"y0"`
}

type OperatorConfig struct {
	Kind   string      `yaml:"kind"` // "diagonal" or "matrix"
	Diag   []float64   `yaml:"diag"`
	Matrix [][]float64 `yaml:"matrix"`

	// Drive, when nonzero, multiplies the operator by cos(Drive*t).
	Drive float64 `yaml:"drive"`
}

func DefaultConfig() *Config {
	return &Config{
		Method:      "rk45",
		Rtol:        DefaultRtol,
		Atol:        DefaultAtol,
		MaxSteps:    DefaultMaxSteps,
		Interpolate: true,
		T0:          0,
		TEnd:        5,
		Samples:     DefaultSamples,
		Operator:    OperatorConfig{Kind: "diagonal", Diag: []float64{-1}},
		Y0:          []float64{1},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// BuildOperator constructs the configured right-hand-side evaluator.
func (c *Config) BuildOperator() (operator.Operator, error) {
	var op operator.Operator

	switch c.Operator.Kind {
	case "diagonal", "":
		if len(c.Operator.Diag) == 0 {
			return nil, fmt.Errorf("diagonal operator needs a diag entry")
		}
		op = operator.NewDiagonal(c.Operator.Diag)
	case "matrix":
		m, err := operator.NewDense(c.Operator.Matrix)
		if err != nil {
			return nil, err
		}
		op = m
	default:
		return nil, fmt.Errorf("unknown operator kind: %s", c.Operator.Kind)
	}

	if w := c.Operator.Drive; w != 0 {
		op = operator.NewScaled(op, func(t float64) float64 { return math.Cos(w * t) })
	}
	return op, nil
}

func (c *Config) InitialState() vec.Vector {
	return vec.Vector(c.Y0).Clone()
}

func (c *Config) StepperOptions() stepper.Options {
	return stepper.Options{
		Method:      c.Method,
		Rtol:        c.Rtol,
		Atol:        c.Atol,
		FirstStep:   c.FirstStep,
		MinStep:     c.MinStep,
		MaxStep:     c.MaxStep,
		MaxSteps:    c.MaxSteps,
		Interpolate: c.Interpolate,
	}
}

func (c *Config) SolveConfig() solve.Config {
	return solve.Config{
		T0:      c.T0,
		TEnd:    c.TEnd,
		Samples: c.Samples,
		Options: c.StepperOptions(),
	}
}
