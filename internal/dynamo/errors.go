package dynamo

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers.
var (
	// ErrInvalidParameter indicates a parameter value is outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrIntegrationFailure indicates the solver could not advance a window.
	ErrIntegrationFailure = errors.New("dynamo: integration failure")
)

// Integration failure causes. All of them wrap ErrIntegrationFailure.
var (
	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = fmt.Errorf("%w: adaptive timestep below minimum", ErrIntegrationFailure)

	// ErrTooManySteps indicates the substep budget of a single window ran out.
	ErrTooManySteps = fmt.Errorf("%w: substep budget exhausted", ErrIntegrationFailure)

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = fmt.Errorf("%w: invalid state (NaN or Inf detected)", ErrIntegrationFailure)

	// ErrStepBudget indicates the run exceeded its configured window budget.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")
)

// ParameterError reports the offending field of a rejected configuration.
type ParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %g: %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// InvalidParam is shorthand for building a *ParameterError.
func InvalidParam(field string, value float64, reason string) error {
	return &ParameterError{Field: field, Value: value, Reason: reason}
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
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
