package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrNoInitialState indicates an integrator was configured without initial conditions.
	ErrNoInitialState = errors.New("dynamo: missing initial state")

	// ErrNoDynamics indicates an integrator was configured without a dynamics function.
	ErrNoDynamics = errors.New("dynamo: missing dynamics")

	// ErrDimensionMismatch indicates the initial state and the dynamics disagree on dimension.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrInvalidStep indicates a non-positive or non-finite integration step.
	ErrInvalidStep = errors.New("dynamo: step size must be positive and finite")

	// ErrInvalidDuration indicates a negative or non-finite advance duration.
	ErrInvalidDuration = errors.New("dynamo: duration must be non-negative and finite")

	// ErrIndexOutOfRange indicates a state index outside the state vector.
	ErrIndexOutOfRange = errors.New("dynamo: state index out of range")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrNoZeroReached indicates run-to-zero hit its step ceiling first.
	ErrNoZeroReached = errors.New("dynamo: component did not reach zero within step limit")

	// ErrParameterBounds indicates an unknown or missing coefficient.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    uint64
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
