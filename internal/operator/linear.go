package operator

import (
	"fmt"

	"github.com/san-kum/odeflow/internal/vec"
)

// Diagonal applies a constant diagonal operator: dy_i/dt = d_i * y_i.
// A single negative entry models exponential decay.
type Diagonal struct {
	diag []float64
}

func NewDiagonal(diag []float64) *Diagonal {
	return &Diagonal{diag: diag}
}

func (d *Diagonal) Apply(t float64, y, dydt vec.Vector) {
	for i, v := range d.diag {
		dydt[i] = v * y[i]
	}
}

// Dense applies a constant dense matrix: dy/dt = A y.
type Dense struct {
	rows [][]float64
}

func NewDense(rows [][]float64) (*Dense, error) {
	n := len(rows)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("matrix row %d has %d entries, want %d", i, len(row), n)
		}
	}
	return &Dense{rows: rows}, nil
}

func (m *Dense) Apply(t float64, y, dydt vec.Vector) {
	for i, row := range m.rows {
		sum := 0.0
		for j, a := range row {
			sum += a * y[j]
		}
		dydt[i] = sum
	}
}

// Scaled wraps an operator with a time-dependent coefficient:
// dy/dt = g(t) * (L y). The coefficient must be deterministic.
type Scaled struct {
	inner Operator
	coeff func(t float64) float64
}

func NewScaled(inner Operator, coeff func(t float64) float64) *Scaled {
	return &Scaled{inner: inner, coeff: coeff}
}

func (s *Scaled) Apply(t float64, y, dydt vec.Vector) {
	s.inner.Apply(t, y, dydt)
	dydt.Scale(s.coeff(t))
}
