package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/metrics"
	"github.com/LemoMew/FractalPendulum/internal/physics"
)

func TestStepEnergyConservation(t *testing.T) {
	c := physics.DefaultConstants()
	cfg := DefaultStepConfig()
	solver := NewSolver()

	x := DefaultInitialState()
	e0 := metrics.Measure(c, x).Total

	for i := 0; i < 1000; i++ {
		next, err := solver.Step(c, x, cfg)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		x = next
	}

	if drift := math.Abs(metrics.Measure(c, x).Total - e0); drift >= 1e-3 {
		t.Errorf("energy drift after 1000 steps = %v, want < 1e-3", drift)
	}
}

func TestStepEquilibrium(t *testing.T) {
	unit := physics.Constants{
		Masses:  [3]float64{1, 1, 1},
		Lengths: [3]float64{1, 1, 1},
		Gravity: 9.8,
	}

	tests := []struct {
		name string
		c    physics.Constants
		dts  []float64
	}{
		{"unit constants", unit, []float64{1e-6, 0.001, 0.1, 1, 100, 1e4}},
		{"default constants", physics.DefaultConstants(), []float64{0.001, 0.01, 0.1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, dt := range tt.dts {
				cfg := DefaultStepConfig()
				cfg.Dt = dt
				cfg.H = dt

				x, err := Step(tt.c, dynamo.State{0, 0, 0, 0, 0, 0}, cfg)
				if err != nil {
					t.Fatalf("dt=%v: %v", dt, err)
				}
				for i, v := range x {
					if v != 0 {
						t.Errorf("dt=%v: x[%d] = %v, want 0", dt, i, v)
					}
				}
			}
		})
	}
}

func TestStepNormalizesAngles(t *testing.T) {
	c := physics.DefaultConstants()
	cfg := DefaultStepConfig()
	cfg.Dt = 0.01
	cfg.H = 0.01
	solver := NewSolver()

	x := dynamo.State{math.Pi - 1e-3, 5, -math.Pi + 1e-3, -5, 3, 4}
	for i := 0; i < 200; i++ {
		next, err := solver.Step(c, x, cfg)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		for _, j := range []int{0, 2, 4} {
			if next[j] <= -math.Pi || next[j] > math.Pi {
				t.Fatalf("step %d: θ index %d = %v outside (-π, π]", i, j, next[j])
			}
		}
		x = next
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	x := DefaultInitialState()
	orig := x.Clone()

	if _, err := Step(physics.DefaultConstants(), x, DefaultStepConfig()); err != nil {
		t.Fatal(err)
	}
	for i := range x {
		if x[i] != orig[i] {
			t.Fatalf("input modified at %d: %v != %v", i, x[i], orig[i])
		}
	}
}

func TestStepDivergence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*physics.Constants, dynamo.State, *StepConfig)
		cause  error
	}{
		{
			name:   "NaN angle",
			mutate: func(_ *physics.Constants, x dynamo.State, _ *StepConfig) { x[0] = math.NaN() },
			cause:  dynamo.ErrNonFinite,
		},
		{
			name:   "infinite velocity",
			mutate: func(_ *physics.Constants, x dynamo.State, _ *StepConfig) { x[3] = math.Inf(1) },
			cause:  dynamo.ErrNonFinite,
		},
		{
			name:   "zero mass",
			mutate: func(c *physics.Constants, _ dynamo.State, _ *StepConfig) { c.Masses[0] = 0 },
			cause:  dynamo.ErrDegenerate,
		},
		{
			name:   "zero length",
			mutate: func(c *physics.Constants, _ dynamo.State, _ *StepConfig) { c.Lengths[1] = 0 },
			cause:  dynamo.ErrDegenerate,
		},
		{
			name: "sub-step budget",
			mutate: func(_ *physics.Constants, _ dynamo.State, cfg *StepConfig) {
				cfg.Dt = 1
				cfg.H = 1
				cfg.MaxSubsteps = 1
			},
			cause: dynamo.ErrStepBudget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := physics.DefaultConstants()
			x := DefaultInitialState()
			cfg := DefaultStepConfig()
			tt.mutate(&c, x, &cfg)

			next, err := Step(c, x, cfg)
			if next != nil {
				t.Errorf("expected no state on failure, got %v", next)
			}
			if !errors.Is(err, dynamo.ErrDivergence) {
				t.Fatalf("expected ErrDivergence, got %v", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("expected cause %v, got %v", tt.cause, err)
			}
			var de *dynamo.DivergenceError
			if !errors.As(err, &de) {
				t.Errorf("expected *DivergenceError, got %T", err)
			}
		})
	}
}

func TestStepInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StepConfig)
	}{
		{"zero dt", func(c *StepConfig) { c.Dt = 0 }},
		{"negative h", func(c *StepConfig) { c.H = -0.1 }},
		{"NaN dt", func(c *StepConfig) { c.Dt = math.NaN() }},
		{"zero abs tol", func(c *StepConfig) { c.AbsTol = 0 }},
		{"zero rel tol", func(c *StepConfig) { c.RelTol = 0 }},
		{"zero budget", func(c *StepConfig) { c.MaxSubsteps = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultStepConfig()
			tt.mutate(&cfg)

			_, err := Step(physics.DefaultConstants(), DefaultInitialState(), cfg)
			if !errors.Is(err, ErrInvalidStepConfig) {
				t.Fatalf("expected ErrInvalidStepConfig, got %v", err)
			}
			if errors.Is(err, dynamo.ErrDivergence) {
				t.Error("config error reported as divergence")
			}
		})
	}
}

func TestStepDimensionMismatch(t *testing.T) {
	_, err := Step(physics.DefaultConstants(), dynamo.State{1, 2, 3}, DefaultStepConfig())
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
