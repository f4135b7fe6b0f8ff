package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/integrators"
	"github.com/LemoMew/FractalPendulum/internal/physics"
)

// ErrInvalidStepConfig is returned for step configurations that cannot be
// integrated at all. It is a configuration error, not a divergence.
var ErrInvalidStepConfig = errors.New("sim: invalid step config")

// StepConfig controls how one frame interval is integrated.
type StepConfig struct {
	Dt          float64 `yaml:"dt"`           // frame interval
	H           float64 `yaml:"h"`            // initial trial sub-step
	AbsTol      float64 `yaml:"abs_tol"`
	RelTol      float64 `yaml:"rel_tol"`
	MaxSubsteps int     `yaml:"max_substeps"` // accepted plus rejected sub-steps per frame
}

func DefaultStepConfig() StepConfig {
	return StepConfig{
		Dt:          0.001,
		H:           0.001,
		AbsTol:      integrators.DefaultTolerance,
		RelTol:      integrators.DefaultTolerance,
		MaxSubsteps: integrators.DefaultMaxSteps,
	}
}

func (c StepConfig) Validate() error {
	positive := func(name string, v float64) error {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidStepConfig, name, v)
		}
		return nil
	}
	if err := positive("dt", c.Dt); err != nil {
		return err
	}
	if err := positive("h", c.H); err != nil {
		return err
	}
	if err := positive("abs_tol", c.AbsTol); err != nil {
		return err
	}
	if err := positive("rel_tol", c.RelTol); err != nil {
		return err
	}
	if c.MaxSubsteps <= 0 {
		return fmt.Errorf("%w: max_substeps must be positive, got %d", ErrInvalidStepConfig, c.MaxSubsteps)
	}
	return nil
}

// Solver advances the triple pendulum by one frame interval. It reuses the
// integrator's scratch buffers and is not safe for concurrent use.
type Solver struct {
	integ *integrators.DOP853
	model *physics.TriplePendulum
}

func NewSolver() *Solver {
	return &Solver{
		integ: integrators.NewDOP853(),
		model: physics.NewTriplePendulum(physics.DefaultConstants()),
	}
}

// Step integrates x over cfg.Dt and wraps the three angles into (-π, π].
// x is never modified; on error the caller keeps its previous state.
// Degenerate constants and integration failures are reported as
// *dynamo.DivergenceError.
func (s *Solver) Step(c physics.Constants, x dynamo.State, cfg StepConfig) (dynamo.State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x) != physics.StateDim {
		return nil, fmt.Errorf("%w: got %d values, want %d", dynamo.ErrDimensionMismatch, len(x), physics.StateDim)
	}
	if err := c.Validate(); err != nil {
		return nil, &dynamo.DivergenceError{Cause: err}
	}

	s.model.Constants = c
	s.integ.AbsTol = cfg.AbsTol
	s.integ.RelTol = cfg.RelTol
	s.integ.InitialStep = cfg.H
	s.integ.MaxSteps = cfg.MaxSubsteps

	next, err := s.integ.Integrate(s.model, x, 0, cfg.Dt)
	if err != nil {
		return nil, err
	}

	next[0] = dynamo.NormalizeAngle(next[0])
	next[2] = dynamo.NormalizeAngle(next[2])
	next[4] = dynamo.NormalizeAngle(next[4])
	return next, nil
}

// Stats reports the integrator counters of the last step.
func (s *Solver) Stats() integrators.Stats { return s.integ.Stats() }

// Step is a convenience wrapper around a fresh Solver.
func Step(c physics.Constants, x dynamo.State, cfg StepConfig) (dynamo.State, error) {
	return NewSolver().Step(c, x, cfg)
}
