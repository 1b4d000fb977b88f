package stepper

import "github.com/san-kum/odeflow/internal/vec"

// computeExtraStages evaluates the tableau's extra dense-output stages.
// Their A rows extend the main recursion relative to the step origin,
// so this runs after acceptance but before the interval rotates.
func (s *Stepper) computeExtraStages(dt float64) {
	for i := s.tab.Stages; i < s.tab.TotalStages(); i++ {
		s.yTemp.Set(s.yFront)
		for j, a := range s.tab.A[i] {
			if a != 0 {
				s.yTemp.Axpy(dt*a, s.k[j])
			}
		}
		s.eval(s.tFront+s.tab.C[i]*dt, s.yTemp, s.k[i])
	}
}

// Evaluate computes the dense-output approximation at t, which must lie
// inside the last accepted interval [tPrev, tFront]. It requires dense
// output to be enabled and at least one accepted step.
func (s *Stepper) Evaluate(t float64) (vec.Vector, error) {
	if s.status == StatusUninitialized {
		return nil, &IntegrationError{Time: s.t, Wrapped: ErrNotInitialized}
	}
	if !s.interpolating() || s.dtInt == 0 || t < s.tPrev || t > s.tFront {
		return nil, &IntegrationError{Time: s.t, Wrapped: ErrOutOfRangeInterpolation}
	}

	out := vec.New(len(s.y))
	s.interpolateInto(t, out)
	return out, nil
}

// interpolateInto evaluates the interpolation polynomial at t. At
// theta=0 the weights vanish and the result is yPrev; at theta=1 they
// reduce to the solution weights and the result is yFront (both
// enforced by tableau validation).
func (s *Stepper) interpolateInto(t float64, out vec.Vector) {
	theta := (t - s.tPrev) / s.dtInt

	out.Set(s.yPrev)
	for j := 0; j < s.tab.TotalStages(); j++ {
		if w := s.tab.InterpWeight(j, theta); w != 0 {
			out.Axpy(s.dtInt*w, s.k[j])
		}
	}
}
