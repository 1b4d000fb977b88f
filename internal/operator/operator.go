package operator

import "github.com/san-kum/odeflow/internal/vec"

// Operator evaluates the right-hand side of dy/dt = L(t)y, writing the
// derivative into dydt. Implementations must be pure functions of
// (t, y): the stepper calls Apply once per stage per attempt, rejected
// attempts included, and may do so from multiple goroutines when
// independent steppers share an operator.
type Operator interface {
	Apply(t float64, y, dydt vec.Vector)
}

// Func adapts a plain function to the Operator interface.
type Func func(t float64, y, dydt vec.Vector)

func (f Func) Apply(t float64, y, dydt vec.Vector) {
	f(t, y, dydt)
}
