package stepper

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odeflow/internal/operator"
	"github.com/san-kum/odeflow/internal/vec"
)

func decay() operator.Operator {
	return operator.NewDiagonal([]float64{-1})
}

func oscillator() operator.Operator {
	op, _ := operator.NewDense([][]float64{
		{0, 1},
		{-1, 0},
	})
	return op
}

func newStepper(t *testing.T, op operator.Operator, opts Options) *Stepper {
	t.Helper()
	s, err := New(op, opts)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDecayToTolerance(t *testing.T) {
	opts := DefaultOptions()
	opts.Rtol = 1e-6
	opts.Atol = 1e-8

	s := newStepper(t, decay(), opts)
	s.SetInitialValue(vec.Vector{1}, 0)

	tReached, y, err := s.Integrate(1, false)
	if err != nil {
		t.Fatal(err)
	}

	if tReached != 1 {
		t.Errorf("expected t=1, got %g", tReached)
	}
	if got, want := y[0], math.Exp(-1); math.Abs(got-want) > 1e-5 {
		t.Errorf("y(1) = %.10f, want %.10f", got, want)
	}
	if s.Status() != StatusReady {
		t.Errorf("status = %v", s.Status())
	}
}

func TestExactLandingWithoutInterpolation(t *testing.T) {
	opts := DefaultOptions()
	opts.Interpolate = false

	s := newStepper(t, decay(), opts)
	s.SetInitialValue(vec.Vector{1}, 0)

	tReached, y, err := s.Integrate(1, false)
	if err != nil {
		t.Fatal(err)
	}

	if tReached != 1 {
		t.Errorf("expected exact landing at t=1, got %g", tReached)
	}
	if math.Abs(y[0]-math.Exp(-1)) > 1e-5 {
		t.Errorf("y(1) = %.10f", y[0])
	}
}

func TestMaxStepsExceeded(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSteps = 1
	opts.FirstStep = 1e-3

	s := newStepper(t, decay(), opts)
	s.SetInitialValue(vec.Vector{1}, 0)

	_, _, err := s.Integrate(10, false)
	if !errors.Is(err, ErrMaxStepsExceeded) {
		t.Fatalf("expected ErrMaxStepsExceeded, got %v", err)
	}
	if s.Status() != StatusFailedMaxSteps {
		t.Errorf("status = %v", s.Status())
	}

	// Terminal until re-initialized.
	if _, _, err := s.Integrate(10, false); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized after failure, got %v", err)
	}

	s.SetInitialValue(vec.Vector{1}, 0)
	if s.Status() != StatusReady {
		t.Errorf("status after re-init = %v", s.Status())
	}
}

func TestToleranceUnreachable(t *testing.T) {
	opts := DefaultOptions()
	opts.FirstStep = 1
	opts.MinStep = 1

	s := newStepper(t, operator.NewDiagonal([]float64{-50}), opts)
	s.SetInitialValue(vec.Vector{1}, 0)

	_, _, err := s.Integrate(10, false)
	if !errors.Is(err, ErrToleranceUnreachable) {
		t.Fatalf("expected ErrToleranceUnreachable, got %v", err)
	}
	if s.Status() != StatusFailedTolerance {
		t.Errorf("status = %v", s.Status())
	}
}

func TestEvaluateOutOfRange(t *testing.T) {
	s := newStepper(t, decay(), DefaultOptions())
	s.SetInitialValue(vec.Vector{1}, 0)

	if _, err := s.Evaluate(0.5); !errors.Is(err, ErrOutOfRangeInterpolation) {
		t.Errorf("expected out-of-range before any step, got %v", err)
	}

	if _, _, err := s.Integrate(0.5, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Evaluate(s.Front() + 10); !errors.Is(err, ErrOutOfRangeInterpolation) {
		t.Errorf("expected out-of-range beyond front, got %v", err)
	}

	opts := DefaultOptions()
	opts.Interpolate = false
	s2 := newStepper(t, decay(), opts)
	s2.SetInitialValue(vec.Vector{1}, 0)
	if _, _, err := s2.Integrate(0.5, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s2.Evaluate(0.25); !errors.Is(err, ErrOutOfRangeInterpolation) {
		t.Errorf("expected out-of-range with interpolation disabled, got %v", err)
	}
}

func TestInterpolationBoundaryLaw(t *testing.T) {
	for _, method := range []string{"rk23", "rk45", "rk4"} {
		opts := DefaultOptions()
		opts.Method = method
		opts.FirstStep = 0.1

		s := newStepper(t, oscillator(), opts)
		s.SetInitialValue(vec.Vector{1, 0}, 0)

		if _, _, err := s.Integrate(0, true); err != nil {
			t.Fatalf("%s: %v", method, err)
		}

		lo, err := s.Evaluate(s.tPrev)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		hi, err := s.Evaluate(s.tFront)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}

		for i := range lo {
			if math.Abs(lo[i]-s.yPrev[i]) > 1e-12 {
				t.Errorf("%s: evaluate(tPrev)[%d] = %g, want %g", method, i, lo[i], s.yPrev[i])
			}
			if math.Abs(hi[i]-s.yFront[i]) > 1e-12 {
				t.Errorf("%s: evaluate(tFront)[%d] = %g, want %g", method, i, hi[i], s.yFront[i])
			}
		}
	}
}

func TestInterpolationAccuracy(t *testing.T) {
	opts := DefaultOptions()
	opts.Rtol = 1e-8
	opts.Atol = 1e-10

	s := newStepper(t, oscillator(), opts)
	s.SetInitialValue(vec.Vector{1, 0}, 0)

	for _, target := range []float64{0.1, 0.25, 0.4, 0.77, 1.3, 2.0} {
		_, y, err := s.Integrate(target, false)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(y[0]-math.Cos(target)) > 1e-6 {
			t.Errorf("y(%g)[0] = %.10f, want %.10f", target, y[0], math.Cos(target))
		}
		if math.Abs(y[1]+math.Sin(target)) > 1e-6 {
			t.Errorf("y(%g)[1] = %.10f, want %.10f", target, y[1], -math.Sin(target))
		}
	}
}

func TestTimeMonotonicity(t *testing.T) {
	s := newStepper(t, decay(), DefaultOptions())
	s.SetInitialValue(vec.Vector{1}, 0)

	last := 0.0
	for _, target := range []float64{0.1, 0.2, 0.5, 0.9, 1.5} {
		tReached, _, err := s.Integrate(target, false)
		if err != nil {
			t.Fatal(err)
		}
		if tReached < last {
			t.Errorf("reported time went backwards: %g after %g", tReached, last)
		}
		if tReached > target {
			t.Errorf("reported time %g passed target %g", tReached, target)
		}
		last = tReached
	}
}

func TestStepBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.MinStep = 0.01
	opts.MaxStep = 0.05

	s := newStepper(t, decay(), opts)
	s.SetInitialValue(vec.Vector{1}, 0)

	for i := 0; i < 20; i++ {
		if _, _, err := s.Integrate(10, true); err != nil {
			t.Fatal(err)
		}
		dt := s.Stats().LastStep
		if dt < opts.MinStep-1e-15 || dt > opts.MaxStep+1e-15 {
			t.Errorf("step %d: dt = %g outside [%g, %g]", i, dt, opts.MinStep, opts.MaxStep)
		}
	}
}

func TestTargetBehind(t *testing.T) {
	opts := DefaultOptions()
	opts.Interpolate = false

	s := newStepper(t, decay(), opts)
	s.SetInitialValue(vec.Vector{1}, 0)

	if _, _, err := s.Integrate(-1, false); !errors.Is(err, ErrTargetBehind) {
		t.Errorf("expected ErrTargetBehind, got %v", err)
	}
	if s.Status() != StatusReady {
		t.Errorf("target-behind should not be terminal, status = %v", s.Status())
	}
}

func TestFirstStepOption(t *testing.T) {
	opts := DefaultOptions()
	opts.FirstStep = 0.01

	s := newStepper(t, decay(), opts)
	s.SetInitialValue(vec.Vector{1}, 0)
	if s.Stats().NextStep != 0.01 {
		t.Errorf("explicit first step not honored: %g", s.Stats().NextStep)
	}

	s2 := newStepper(t, decay(), DefaultOptions())
	s2.SetInitialValue(vec.Vector{1}, 0)
	if s2.Stats().NextStep <= 0 {
		t.Errorf("estimated first step not positive: %g", s2.Stats().NextStep)
	}
	if s2.Stats().Evaluations != 2 {
		t.Errorf("first-step estimate should cost two evaluations, got %d", s2.Stats().Evaluations)
	}
}

func TestEvaluationCountPerStep(t *testing.T) {
	opts := DefaultOptions()
	opts.FirstStep = 0.1
	opts.Interpolate = false

	s := newStepper(t, decay(), opts)
	s.SetInitialValue(vec.Vector{1}, 0)

	before := s.Stats().Evaluations
	if _, _, err := s.Integrate(1, true); err != nil {
		t.Fatal(err)
	}
	stats := s.Stats()

	perAttempt := s.Tableau().Stages * (stats.Accepted + stats.Rejected)
	if stats.Evaluations-before != perAttempt {
		t.Errorf("evaluations = %d, want %d", stats.Evaluations-before, perAttempt)
	}
}

// localError takes a single fixed step of size dt from y(0)=1 for
// dy/dt = -y and returns the deviation from the exact solution.
func localError(t *testing.T, method string, dt float64) float64 {
	opts := DefaultOptions()
	opts.Method = method
	opts.FirstStep = dt
	opts.Interpolate = false

	s := newStepper(t, decay(), opts)
	s.SetInitialValue(vec.Vector{1}, 0)

	_, y, err := s.Integrate(dt, false)
	if err != nil {
		t.Fatal(err)
	}
	if s.Stats().Accepted != 1 {
		t.Fatalf("%s: expected a single step, took %d", method, s.Stats().Accepted)
	}
	return math.Abs(y[0] - math.Exp(-dt))
}

func TestLocalErrorScaling(t *testing.T) {
	// Halving the step shrinks the local error by about 2^(order+1).
	tests := []struct {
		method string
		dt     float64
		lo, hi float64
	}{
		{"euler", 0.1, 3.0, 5.0},
		{"rk4", 0.2, 24.0, 40.0},
	}

	for _, tt := range tests {
		e1 := localError(t, tt.method, tt.dt)
		e2 := localError(t, tt.method, tt.dt/2)
		ratio := e1 / e2
		if ratio < tt.lo || ratio > tt.hi {
			t.Errorf("%s: error ratio %g outside [%g, %g]", tt.method, ratio, tt.lo, tt.hi)
		}
	}
}

func TestOneStepAdvances(t *testing.T) {
	s := newStepper(t, decay(), DefaultOptions())
	s.SetInitialValue(vec.Vector{1}, 0)

	tReached, _, err := s.Integrate(10, true)
	if err != nil {
		t.Fatal(err)
	}
	if tReached <= 0 {
		t.Errorf("one step did not advance time: %g", tReached)
	}
	if tReached != s.Front() {
		t.Errorf("one-step time %g does not match front %g", tReached, s.Front())
	}
	if s.Stats().Accepted != 1 {
		t.Errorf("expected one accepted step, got %d", s.Stats().Accepted)
	}
}

func TestOptionsValidation(t *testing.T) {
	bad := []Options{
		{Method: "rk45", Rtol: 0, Atol: 1e-8, MaxSteps: 10},
		{Method: "rk45", Rtol: 1e-6, Atol: -1, MaxSteps: 10},
		{Method: "rk45", Rtol: 1e-6, MaxSteps: 0},
		{Method: "rk45", Rtol: 1e-6, MaxSteps: 10, MinStep: 1, MaxStep: 0.5},
		{Method: "nope", Rtol: 1e-6, MaxSteps: 10},
	}

	for i, opts := range bad {
		if _, err := New(decay(), opts); err == nil {
			t.Errorf("case %d: expected construction error", i)
		}
	}
}
