package stepper

// Status is the driver's state-machine position. The failed states are
// terminal: Integrate rejects further calls until SetInitialValue runs
// again.
type Status int

const (
	StatusUninitialized Status = iota
	StatusReady
	StatusStepping
	StatusFailedTolerance
	StatusFailedMaxSteps
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusReady:
		return "ready"
	case StatusStepping:
		return "stepping"
	case StatusFailedTolerance:
		return "failed: tolerance unreachable"
	case StatusFailedMaxSteps:
		return "failed: max steps exceeded"
	default:
		return "unknown"
	}
}

// Failed reports whether the status is terminal.
func (s Status) Failed() bool {
	return s == StatusFailedTolerance || s == StatusFailedMaxSteps
}
