package dynamo

import (
	"errors"
	"fmt"
)

// ErrDivergence is matched by every integration failure. The integrator could
// not complete the requested interval within its step or error budget.
var ErrDivergence = errors.New("dynamo: numerical divergence")

// Causes of divergence.
var (
	// ErrNonFinite indicates a NaN or Inf in a derivative evaluation or stage state.
	ErrNonFinite = errors.New("dynamo: non-finite derivative")

	// ErrStepTooSmall indicates the adaptive step fell below the precision floor.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudget indicates the sub-step budget was exhausted.
	ErrStepBudget = errors.New("dynamo: sub-step budget exceeded")

	// ErrDegenerate indicates parameters that make the mass matrix singular.
	ErrDegenerate = errors.New("dynamo: degenerate parameters")
)

// ErrDimensionMismatch indicates a state vector of the wrong length.
var ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

// DivergenceError wraps a divergence cause with integration context.
type DivergenceError struct {
	Cause    error
	Time     float64 // integration time reached within the interval
	Step     float64 // last attempted sub-step size
	Substeps int
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v: %v (t=%.6g, h=%.3g, substeps=%d)", ErrDivergence, e.Cause, e.Time, e.Step, e.Substeps)
}

func (e *DivergenceError) Unwrap() error {
	return e.Cause
}

func (e *DivergenceError) Is(target error) bool {
	return target == ErrDivergence
}
