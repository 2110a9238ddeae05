package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for orbit and Lyapunov computations.
var (
	// ErrDiverged indicates the orbit left the divergence threshold or a
	// tangent growth factor became non-finite.
	ErrDiverged = errors.New("dynamo: orbit diverged")

	// ErrUnsupported indicates an operation that needs a Jacobian was
	// requested on a map that does not provide one.
	ErrUnsupported = errors.New("dynamo: map has no jacobian")

	// ErrInvalidConfiguration indicates a setup mistake detected before any
	// iteration begins.
	ErrInvalidConfiguration = errors.New("dynamo: invalid configuration")
)

// Phase names the part of the horizon an orbit was in.
type Phase string

const (
	PhaseTransient Phase = "transient"
	PhaseMeasure   Phase = "measure"
)

// DivergenceError wraps ErrDiverged with orbit context.
type DivergenceError struct {
	Step   int
	Phase  Phase
	State  State
	Reason string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%s at %s step %d: %s", ErrDiverged, e.Phase, e.Step, e.Reason)
}

func (e *DivergenceError) Unwrap() error {
	return ErrDiverged
}

// Invalidf returns an error wrapping ErrInvalidConfiguration.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
