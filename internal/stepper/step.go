package stepper

import (
	"math"

	"github.com/san-kum/odeflow/internal/vec"
)

const (
	stepSafety = 0.9
	minFactor  = 0.2
	maxFactor  = 10.0

	// Consecutive rejections of the same step before giving up even
	// when the step size is still above the configured minimum.
	maxRejections = 16
)

// step performs one accepted step from the front, retrying rejected
// attempts with a shrunken step size. Every attempt, accepted or
// rejected, counts against the per-call budget.
func (s *Stepper) step(maxDt float64, attempts *int) (float64, error) {
	rejections := 0
	for {
		if *attempts >= s.opts.MaxSteps {
			s.status = StatusFailedMaxSteps
			return 0, &IntegrationError{Time: s.tFront, Attempts: *attempts, Wrapped: ErrMaxStepsExceeded}
		}
		*attempts++

		dt := s.dtSafe
		if dt > maxDt {
			dt = maxDt
		}

		s.computeStep(dt)

		if s.tab.Adaptive {
			errNorm := s.estimateError(dt)
			dtNext := s.proposeStep(errNorm, dt)
			if errNorm > 1 {
				s.stats.Rejected++
				rejections++
				if dt <= s.opts.MinStep || rejections >= maxRejections {
					s.status = StatusFailedTolerance
					return 0, &IntegrationError{Time: s.tFront, Attempts: *attempts, Wrapped: ErrToleranceUnreachable}
				}
				s.dtSafe = dtNext
				continue
			}
			s.dtSafe = dtNext
		}

		s.accept(dt)
		s.stats.Accepted++
		s.stats.LastStep = dt
		s.stats.NextStep = s.dtSafe
		return dt, nil
	}
}

// computeStep runs the explicit stage recursion from (tFront, yFront)
// with step size dt, filling k[0..Stages) and yNew. Exactly Stages
// operator evaluations, no mutation beyond the stage buffers.
func (s *Stepper) computeStep(dt float64) {
	s.eval(s.tFront, s.yFront, s.k[0])

	for i := 1; i < s.tab.Stages; i++ {
		s.yTemp.Set(s.yFront)
		for j, a := range s.tab.A[i] {
			if a != 0 {
				s.yTemp.Axpy(dt*a, s.k[j])
			}
		}
		s.eval(s.tFront+s.tab.C[i]*dt, s.yTemp, s.k[i])
	}

	s.yNew.Set(s.yFront)
	for j, b := range s.tab.B {
		if b != 0 {
			s.yNew.Axpy(dt*b, s.k[j])
		}
	}
}

// estimateError returns the weighted local error estimate; values at or
// below 1 mean the step is acceptable.
func (s *Stepper) estimateError(dt float64) float64 {
	for i := range s.scale {
		ay := math.Abs(s.yFront[i])
		if an := math.Abs(s.yNew[i]); an > ay {
			ay = an
		}
		s.scale[i] = s.opts.Atol + s.opts.Rtol*ay
	}

	s.yErr.Zero()
	for j, e := range s.tab.E {
		if e != 0 {
			s.yErr.Axpy(dt*e, s.k[j])
		}
	}
	return vec.WeightedNorm(s.yErr, s.scale)
}

// proposeStep applies the standard controller law, symmetric between
// growth and shrinkage, with the factor clamped to avoid oscillation.
func (s *Stepper) proposeStep(errNorm, dt float64) float64 {
	factor := maxFactor
	if errNorm > 0 {
		factor = stepSafety * math.Pow(errNorm, -1.0/float64(s.tab.Order+1))
		if factor < minFactor {
			factor = minFactor
		} else if factor > maxFactor {
			factor = maxFactor
		}
	}
	return s.clampStep(dt * factor)
}

func (s *Stepper) clampStep(dt float64) float64 {
	if s.opts.MaxStep > 0 && dt > s.opts.MaxStep {
		dt = s.opts.MaxStep
	}
	if dt < s.opts.MinStep {
		dt = s.opts.MinStep
	}
	return dt
}

// accept commits the attempted step: dense-output stages are computed
// against the step origin before the interval rotates forward.
func (s *Stepper) accept(dt float64) {
	if s.interpolating() {
		s.computeExtraStages(dt)
	}

	s.tPrev = s.tFront
	s.yPrev.Set(s.yFront)
	s.normPrev = s.normFront

	s.tFront += dt
	s.yFront.Set(s.yNew)
	s.normFront = s.yFront.Norm()
	s.dtInt = dt
}

func (s *Stepper) eval(t float64, y, dydt vec.Vector) {
	s.op.Apply(t, y, dydt)
	s.stats.Evaluations++
}
