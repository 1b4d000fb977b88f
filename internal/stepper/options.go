package stepper

import "fmt"

// Options configures one integration. Zero values mean: auto-estimate
// the first step, no lower step bound, no upper step bound.
type Options struct {
	Method    string
	Rtol      float64
	Atol      float64
	FirstStep float64
	MinStep   float64
	MaxStep   float64
	MaxSteps  int

	// Interpolate enables dense output: the integrator keeps the front
	// of integration ahead of the reported time and answers queries
	// inside the last accepted step without stepping to them.
	Interpolate bool
}

func DefaultOptions() Options {
	return Options{
		Method:      "rk45",
		Rtol:        1e-6,
		Atol:        1e-8,
		MaxSteps:    10000,
		Interpolate: true,
	}
}

func (o Options) validate() error {
	if o.Rtol <= 0 {
		return fmt.Errorf("rtol must be positive, got %g", o.Rtol)
	}
	if o.Atol < 0 {
		return fmt.Errorf("atol must be nonnegative, got %g", o.Atol)
	}
	if o.MinStep < 0 || o.FirstStep < 0 || o.MaxStep < 0 {
		return fmt.Errorf("step bounds must be nonnegative")
	}
	if o.MaxStep > 0 && o.MaxStep < o.MinStep {
		return fmt.Errorf("max step %g below min step %g", o.MaxStep, o.MinStep)
	}
	if o.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", o.MaxSteps)
	}
	return nil
}

// Stats accumulates step accounting since the last SetInitialValue.
type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
	LastStep    float64
	NextStep    float64
}
