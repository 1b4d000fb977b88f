// Package analysis provides empirical accuracy measurements for the
// integration methods.
package analysis

import (
	"math"

	"github.com/san-kum/odeflow/internal/operator"
	"github.com/san-kum/odeflow/internal/stepper"
	"github.com/san-kum/odeflow/internal/vec"
)

// LocalOrder estimates a method's local convergence order by taking a
// single step of size dt and dt/2 from (t0, y0) and comparing both
// against a tight-tolerance reference. For a method of order p the
// local error scales like dt^(p+1), so the log2 error ratio minus one
// approximates p.
func LocalOrder(op operator.Operator, y0 vec.Vector, t0, dt float64, method string) (float64, error) {
	e1, err := singleStepError(op, y0, t0, dt, method)
	if err != nil {
		return 0, err
	}
	e2, err := singleStepError(op, y0, t0, dt/2, method)
	if err != nil {
		return 0, err
	}
	if e1 == 0 || e2 == 0 {
		return math.Inf(1), nil
	}
	return math.Log2(e1/e2) - 1, nil
}

func singleStepError(op operator.Operator, y0 vec.Vector, t0, dt float64, method string) (float64, error) {
	got, err := singleStep(op, y0, t0, dt, method)
	if err != nil {
		return 0, err
	}
	want, err := reference(op, y0, t0, t0+dt)
	if err != nil {
		return 0, err
	}

	diff := vec.New(len(got))
	got.SubInto(want, diff)
	return diff.Norm(), nil
}

// singleStep forces one step of exactly dt: the tolerances are wide
// open so the error test cannot reject, and the first step is pinned.
func singleStep(op operator.Operator, y0 vec.Vector, t0, dt float64, method string) (vec.Vector, error) {
	opts := stepper.Options{
		Method:    method,
		Rtol:      10,
		Atol:      1e6,
		FirstStep: dt,
		MaxSteps:  10,
	}

	s, err := stepper.New(op, opts)
	if err != nil {
		return nil, err
	}
	s.SetInitialValue(y0, t0)

	_, y, err := s.Integrate(t0+dt, false)
	if err != nil {
		return nil, err
	}
	return y.Clone(), nil
}

func reference(op operator.Operator, y0 vec.Vector, t0, t1 float64) (vec.Vector, error) {
	opts := stepper.DefaultOptions()
	opts.Rtol = 1e-12
	opts.Atol = 1e-14
	opts.MaxSteps = 100000
	opts.Interpolate = false

	s, err := stepper.New(op, opts)
	if err != nil {
		return nil, err
	}
	s.SetInitialValue(y0, t0)

	_, y, err := s.Integrate(t1, false)
	if err != nil {
		return nil, err
	}
	return y.Clone(), nil
}
