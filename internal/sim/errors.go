package sim

import (
	"errors"
	"fmt"
)

// Domain errors for engine construction and stepping.
var (
	// ErrInvalidConfig indicates a configuration that violates its invariants.
	ErrInvalidConfig = errors.New("sim: invalid configuration")

	// ErrInvalidState indicates an initial state outside the vehicle envelope.
	ErrInvalidState = errors.New("sim: invalid initial state")

	// ErrNonPositiveStep indicates a time step that is not a positive finite number.
	ErrNonPositiveStep = errors.New("sim: time step must be positive")
)

// StepError wraps an error with the engine position at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
