package solve

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odeflow/internal/operator"
	"github.com/san-kum/odeflow/internal/stepper"
	"github.com/san-kum/odeflow/internal/vec"
)

func TestRunDecay(t *testing.T) {
	cfg := Config{
		T0:      0,
		TEnd:    1,
		Samples: 10,
		Options: stepper.DefaultOptions(),
	}

	result, err := Run(context.Background(), operator.NewDiagonal([]float64{-1}), vec.Vector{1}, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Times) != 11 || len(result.States) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(result.Times))
	}
	if result.Times[0] != 0 || result.Times[10] != 1 {
		t.Errorf("endpoints wrong: %g..%g", result.Times[0], result.Times[10])
	}

	for i, ti := range result.Times {
		want := math.Exp(-ti)
		if math.Abs(result.States[i][0]-want) > 1e-5 {
			t.Errorf("y(%g) = %.8f, want %.8f", ti, result.States[i][0], want)
		}
	}

	if result.Stats.Accepted == 0 {
		t.Error("no steps recorded in stats")
	}
}

func TestRunValidatesConfig(t *testing.T) {
	op := operator.NewDiagonal([]float64{-1})

	if _, err := Run(context.Background(), op, vec.Vector{1}, Config{T0: 1, TEnd: 0, Samples: 10, Options: stepper.DefaultOptions()}); err == nil {
		t.Error("expected error for reversed time span")
	}
	if _, err := Run(context.Background(), op, vec.Vector{1}, Config{T0: 0, TEnd: 1, Samples: 0, Options: stepper.DefaultOptions()}); err == nil {
		t.Error("expected error for zero samples")
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{T0: 0, TEnd: 1, Samples: 10, Options: stepper.DefaultOptions()}
	result, err := Run(ctx, operator.NewDiagonal([]float64{-1}), vec.Vector{1}, cfg)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.Times) != 1 {
		t.Error("expected the partial result to retain the initial sample")
	}
}

func TestRunSurfacesStepperFailure(t *testing.T) {
	opts := stepper.DefaultOptions()
	opts.MaxSteps = 1
	opts.FirstStep = 1e-4

	cfg := Config{T0: 0, TEnd: 1, Samples: 2, Options: opts}
	_, err := Run(context.Background(), operator.NewDiagonal([]float64{-1}), vec.Vector{1}, cfg)

	if !errors.Is(err, stepper.ErrMaxStepsExceeded) {
		t.Fatalf("expected ErrMaxStepsExceeded, got %v", err)
	}
}
