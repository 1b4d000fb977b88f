// Package solve drives a stepper across a uniform sampling grid,
// collecting the trajectory for storage, plotting, and analysis.
package solve

import (
	"context"
	"fmt"

	"github.com/san-kum/odeflow/internal/operator"
	"github.com/san-kum/odeflow/internal/stepper"
	"github.com/san-kum/odeflow/internal/vec"
)

type Config struct {
	T0      float64
	TEnd    float64
	Samples int
	Options stepper.Options
}

type Result struct {
	Times  []float64
	States []vec.Vector
	Stats  stepper.Stats
}

func validateConfig(cfg Config) error {
	if cfg.TEnd <= cfg.T0 {
		return fmt.Errorf("end time %g must be after start time %g", cfg.TEnd, cfg.T0)
	}
	if cfg.Samples < 1 {
		return fmt.Errorf("samples must be positive, got %d", cfg.Samples)
	}
	return nil
}

// Run integrates the operator from y0 over [T0, TEnd], sampling at
// Samples+1 uniformly spaced times including both endpoints. A partial
// result is returned alongside the error when integration fails or the
// context is canceled.
func Run(ctx context.Context, op operator.Operator, y0 vec.Vector, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s, err := stepper.New(op, cfg.Options)
	if err != nil {
		return nil, err
	}
	s.SetInitialValue(y0, cfg.T0)

	result := &Result{
		Times:  make([]float64, 0, cfg.Samples+1),
		States: make([]vec.Vector, 0, cfg.Samples+1),
	}
	result.Times = append(result.Times, cfg.T0)
	result.States = append(result.States, y0.Clone())

	span := cfg.TEnd - cfg.T0
	for i := 1; i <= cfg.Samples; i++ {
		select {
		case <-ctx.Done():
			result.Stats = s.Stats()
			return result, ctx.Err()
		default:
		}

		target := cfg.T0 + span*float64(i)/float64(cfg.Samples)
		if i == cfg.Samples {
			target = cfg.TEnd
		}

		tReached, y, err := s.Integrate(target, false)
		if err != nil {
			result.Stats = s.Stats()
			return result, err
		}
		if !y.IsValid() {
			result.Stats = s.Stats()
			return result, fmt.Errorf("invalid state (NaN/Inf) at t=%.4f", tReached)
		}

		result.Times = append(result.Times, tReached)
		result.States = append(result.States, y.Clone())
	}

	result.Stats = s.Stats()
	return result, nil
}
