package stepper

import (
	"math"

	"github.com/san-kum/odeflow/internal/vec"
)

// estimateFirstStep picks a starting step size from two operator
// evaluations: a trial step proportional to |y|/|f|, an explicit Euler
// probe at that step, and a bound from the resulting curvature
// estimate. Runs only when no explicit first step is configured.
func (s *Stepper) estimateFirstStep(t float64, y0 vec.Vector) float64 {
	f0 := s.k[0]
	f1 := s.yNew
	y1 := s.yTemp

	for i := range s.scale {
		s.scale[i] = s.opts.Atol + s.opts.Rtol*math.Abs(y0[i])
	}

	s.eval(t, y0, f0)
	d0 := vec.WeightedNorm(y0, s.scale)
	d1 := vec.WeightedNorm(f0, s.scale)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}

	y1.Set(y0)
	y1.Axpy(h0, f0)
	s.eval(t+h0, y1, f1)

	f1.SubInto(f0, f1)
	d2 := vec.WeightedNorm(f1, s.scale) / h0

	var h1 float64
	if math.Max(d1, d2) <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/float64(s.tab.Order+1))
	}

	return s.clampStep(math.Min(100*h0, h1))
}
