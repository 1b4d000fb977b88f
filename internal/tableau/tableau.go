package tableau

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTableau indicates inconsistent Butcher coefficients. It is
// only ever produced at construction; a tableau obtained from the
// registry has already passed validation.
var ErrInvalidTableau = errors.New("tableau: inconsistent coefficients")

// Tableau describes one explicit Runge-Kutta method. A, B, C are the
// Butcher coefficients, E the embedded error-estimate weights, BI the
// dense-output interpolation polynomials (one row of theta-polynomial
// coefficients per stage, columns theta^1..theta^d).
//
// Extra stages beyond Stages are evaluated only when a step is accepted
// and dense output is requested; their A rows and C entries extend the
// main recursion.
type Tableau struct {
	Name        string
	Stages      int
	ExtraStages int
	Order       int
	DenseOrder  int
	Adaptive    bool
	Interpolate bool

	A       [][]float64 // ragged lower-triangular, Stages+ExtraStages rows
	B       []float64   // solution weights, len Stages
	C       []float64   // stage time fractions, len Stages+ExtraStages
	E       []float64   // error weights, len Stages, nil if !Adaptive
	BI      [][]float64 // interpolation polynomials, nil if !Interpolate
	BFactor []float64   // optional per-stage interpolation scaling
}

const coeffTol = 1e-12

// Validate checks the coefficient invariants. Called once when a method
// is registered; user-constructed tableaus must call it before use.
func (tb *Tableau) Validate() error {
	total := tb.Stages + tb.ExtraStages

	if tb.Stages < 1 {
		return fmt.Errorf("%w: %s: stage count %d", ErrInvalidTableau, tb.Name, tb.Stages)
	}
	if len(tb.A) != total || len(tb.C) != total || len(tb.B) != tb.Stages {
		return fmt.Errorf("%w: %s: array sizes do not match stage count", ErrInvalidTableau, tb.Name)
	}
	if tb.C[0] != 0 {
		return fmt.Errorf("%w: %s: c[0] = %g, want 0", ErrInvalidTableau, tb.Name, tb.C[0])
	}

	sumB := 0.0
	for _, b := range tb.B {
		sumB += b
	}
	if math.Abs(sumB-1) > coeffTol {
		return fmt.Errorf("%w: %s: sum(b) = %g, want 1", ErrInvalidTableau, tb.Name, sumB)
	}

	for i, row := range tb.A {
		if len(row) > i {
			return fmt.Errorf("%w: %s: a row %d is not strictly lower-triangular", ErrInvalidTableau, tb.Name, i)
		}
		sum := 0.0
		for _, a := range row {
			sum += a
		}
		if math.Abs(sum-tb.C[i]) > coeffTol {
			return fmt.Errorf("%w: %s: a row %d sums to %g, want c[%d] = %g",
				ErrInvalidTableau, tb.Name, i, sum, i, tb.C[i])
		}
	}

	if tb.Adaptive && len(tb.E) != tb.Stages {
		return fmt.Errorf("%w: %s: error weights length %d, want %d", ErrInvalidTableau, tb.Name, len(tb.E), tb.Stages)
	}

	if tb.Interpolate {
		if len(tb.BI) != total {
			return fmt.Errorf("%w: %s: interpolation table has %d rows, want %d", ErrInvalidTableau, tb.Name, len(tb.BI), total)
		}
		if tb.BFactor != nil && len(tb.BFactor) != total {
			return fmt.Errorf("%w: %s: b_factor length %d, want %d", ErrInvalidTableau, tb.Name, len(tb.BFactor), total)
		}
		// At theta=1 the interpolant must reproduce the solution
		// weights, so evaluate(t_front) lands on y_front exactly.
		for j, row := range tb.BI {
			sum := 0.0
			for _, p := range row {
				sum += p
			}
			want := 0.0
			if j < tb.Stages {
				want = tb.B[j]
			}
			if tb.BFactor != nil {
				sum *= tb.BFactor[j]
			}
			if math.Abs(sum-want) > coeffTol {
				return fmt.Errorf("%w: %s: interpolant row %d sums to %g, want %g",
					ErrInvalidTableau, tb.Name, j, sum, want)
			}
		}
	} else if tb.ExtraStages != 0 {
		return fmt.Errorf("%w: %s: extra stages without interpolation", ErrInvalidTableau, tb.Name)
	}

	return nil
}

// InterpWeight evaluates the dense-output polynomial for one stage at
// theta in [0, 1]: sum_m BI[stage][m] * theta^(m+1), times the stage's
// BFactor entry when present.
func (tb *Tableau) InterpWeight(stage int, theta float64) float64 {
	row := tb.BI[stage]
	w := 0.0
	for m := len(row) - 1; m >= 0; m-- {
		w = (w + row[m]) * theta
	}
	if tb.BFactor != nil {
		w *= tb.BFactor[stage]
	}
	return w
}

// TotalStages is the stage buffer size: main plus dense-output stages.
func (tb *Tableau) TotalStages() int {
	return tb.Stages + tb.ExtraStages
}
