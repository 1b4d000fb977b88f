// Package stepper implements an adaptive explicit Runge-Kutta
// integrator for dy/dt = L(t)y with embedded error control and dense
// output.
//
// A Stepper owns its state and stage buffers exclusively; it is not
// safe for concurrent use, but independent Steppers may run on separate
// goroutines as long as the shared operator is a pure function.
package stepper

import (
	"math"

	"github.com/san-kum/odeflow/internal/operator"
	"github.com/san-kum/odeflow/internal/tableau"
	"github.com/san-kum/odeflow/internal/vec"
)

type Stepper struct {
	tab  *tableau.Tableau
	opts Options
	op   operator.Operator

	// Stage-derivative arena, sized once at SetInitialValue.
	k     []vec.Vector
	yTemp vec.Vector
	yNew  vec.Vector
	yErr  vec.Vector
	scale vec.Vector

	t, tPrev, tFront    float64
	y, yPrev, yFront    vec.Vector
	normPrev, normFront float64

	dtSafe float64 // controller's proposed next step
	dtInt  float64 // step actually used for the last accepted step

	status Status
	stats  Stats
}

// New builds a stepper for the method named in opts. The tableau comes
// pre-validated from the registry.
func New(op operator.Operator, opts Options) (*Stepper, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	tb, err := tableau.Get(opts.Method)
	if err != nil {
		return nil, err
	}
	return &Stepper{tab: tb, opts: opts, op: op}, nil
}

// SetInitialValue (re)initializes the integration at (t0, y0) and
// allocates the stage buffers for y0's dimension. It clears any
// terminal failure state.
func (s *Stepper) SetInitialValue(y0 vec.Vector, t0 float64) {
	n := len(y0)

	s.k = make([]vec.Vector, s.tab.TotalStages())
	for i := range s.k {
		s.k[i] = vec.New(n)
	}
	s.yTemp = vec.New(n)
	s.yNew = vec.New(n)
	s.yErr = vec.New(n)
	s.scale = vec.New(n)

	s.y = y0.Clone()
	s.yPrev = y0.Clone()
	s.yFront = y0.Clone()
	s.t = t0
	s.tPrev = t0
	s.tFront = t0
	s.normPrev = y0.Norm()
	s.normFront = s.normPrev
	s.dtInt = 0
	s.stats = Stats{}

	if s.opts.FirstStep > 0 {
		s.dtSafe = s.clampStep(s.opts.FirstStep)
	} else {
		s.dtSafe = s.estimateFirstStep(t0, y0)
	}
	s.stats.NextStep = s.dtSafe

	s.status = StatusReady
}

// Integrate advances toward target. With oneStep set it performs
// exactly one accepted internal step; otherwise it steps until the
// target is reached, landing exactly on it when interpolation is off
// and answering via dense output when it is on.
//
// The returned vector is the stepper's reporting buffer; callers that
// retain it across calls must clone it.
func (s *Stepper) Integrate(target float64, oneStep bool) (float64, vec.Vector, error) {
	if s.status != StatusReady {
		return s.t, s.y, &IntegrationError{Time: s.t, Wrapped: ErrNotInitialized}
	}
	s.status = StatusStepping

	attempts := 0
	var err error
	if oneStep {
		err = s.integrateOneStep(target, &attempts)
	} else if s.interpolating() {
		err = s.integrateDense(target, &attempts)
	} else {
		err = s.integrateExact(target, &attempts)
	}
	if err != nil {
		if !s.status.Failed() {
			s.status = StatusReady
		}
		return s.t, s.y, err
	}

	s.status = StatusReady
	return s.t, s.y, nil
}

func (s *Stepper) integrateOneStep(target float64, attempts *int) error {
	maxDt := math.Inf(1)
	if !s.interpolating() {
		if target <= s.t {
			return &IntegrationError{Time: s.t, Wrapped: ErrTargetBehind}
		}
		maxDt = target - s.t
	}
	if _, err := s.step(maxDt, attempts); err != nil {
		return err
	}
	s.t = s.tFront
	s.y.Set(s.yFront)
	return nil
}

func (s *Stepper) integrateDense(target float64, attempts *int) error {
	if target < s.tPrev {
		return &IntegrationError{Time: s.t, Wrapped: ErrTargetBehind}
	}

	for s.tFront < target {
		if _, err := s.step(math.Inf(1), attempts); err != nil {
			return err
		}
	}

	// Reported time never passes the target; the front may stay ahead
	// to serve later queries in the same interval.
	s.t = target
	if target == s.tFront {
		s.y.Set(s.yFront)
	} else if target == s.tPrev {
		s.y.Set(s.yPrev)
	} else {
		s.interpolateInto(target, s.y)
	}
	return nil
}

func (s *Stepper) integrateExact(target float64, attempts *int) error {
	if target < s.t {
		return &IntegrationError{Time: s.t, Wrapped: ErrTargetBehind}
	}

	for s.t < target {
		// The final step shrinks to land exactly on the target.
		dt, err := s.step(target-s.t, attempts)
		if err != nil {
			return err
		}
		if math.Abs(target-s.tFront) <= 1e-12*math.Max(math.Abs(target), dt) {
			s.tFront = target
		}
		s.t = s.tFront
		s.y.Set(s.yFront)
	}
	return nil
}

func (s *Stepper) interpolating() bool {
	return s.opts.Interpolate && s.tab.Interpolate
}

// T returns the last reported time.
func (s *Stepper) T() float64 { return s.t }

// Y returns the state at T. The buffer is reused by later calls.
func (s *Stepper) Y() vec.Vector { return s.y }

// Front returns the head of integration; it can run ahead of T when
// dense output is enabled.
func (s *Stepper) Front() float64 { return s.tFront }

func (s *Stepper) Status() Status { return s.status }

func (s *Stepper) Stats() Stats { return s.stats }

// Tableau exposes the method's coefficient table.
func (s *Stepper) Tableau() *tableau.Tableau { return s.tab }
