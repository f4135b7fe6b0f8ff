// Package dynamo provides the core simulation primitives shared by the
// pendulum model, the integrator and the frame loop.
//
// The package defines:
//
//   - [State]: generalized coordinates of a system
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: integrates a system across a fixed interval
//   - [Metric]: per-frame diagnostic observer
//   - [NormalizeAngle]: wraps an angle into (-π, π]
//
// # Errors
//
// Integration failures are reported as [*DivergenceError]. Every such error
// matches [ErrDivergence] with errors.Is, and additionally matches its cause
// ([ErrNonFinite], [ErrStepTooSmall], [ErrStepBudget], [ErrDegenerate]):
//
//	next, err := solver.Step(c, x, cfg)
//	if errors.Is(err, dynamo.ErrDivergence) {
//	    // stop auto-stepping until reset
//	}
//
// # Thread Safety
//
// Nothing in this package holds shared state. Integrators that keep scratch
// buffers are NOT safe for concurrent use.
package dynamo
