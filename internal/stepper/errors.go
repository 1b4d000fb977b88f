package stepper

import (
	"errors"
	"fmt"
)

// Terminal and caller-error conditions. Step rejections from the error
// test are retried internally and never surface on their own; only the
// conditions below reach the caller.
var (
	// ErrNotInitialized indicates Integrate was called before
	// SetInitialValue, or after a terminal failure without
	// re-initializing.
	ErrNotInitialized = errors.New("stepper: integrator not initialized")

	// ErrToleranceUnreachable indicates the step size was driven to the
	// minimum while the error test kept failing.
	ErrToleranceUnreachable = errors.New("stepper: tolerance unreachable at minimum step size")

	// ErrMaxStepsExceeded indicates the per-call step budget ran out
	// before the target time was reached.
	ErrMaxStepsExceeded = errors.New("stepper: step budget exhausted before target")

	// ErrOutOfRangeInterpolation indicates a dense-output query outside
	// the accepted interval, or with interpolation disabled.
	ErrOutOfRangeInterpolation = errors.New("stepper: interpolation outside accepted interval")

	// ErrTargetBehind indicates a target time behind the current state.
	ErrTargetBehind = errors.New("stepper: target time behind current state")
)

// IntegrationError carries the integration context of a failure.
type IntegrationError struct {
	Time     float64
	Attempts int
	Wrapped  error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%v (t=%g, %d step attempts)", e.Wrapped, e.Time, e.Attempts)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
