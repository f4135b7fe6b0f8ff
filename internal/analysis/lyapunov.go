package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/physics"
	"github.com/LemoMew/FractalPendulum/internal/sim"
)

// LyapunovExponent estimates the largest Lyapunov exponent with the
// two-trajectory method. After every frame the separation is measured,
// its log growth accumulated and the companion rescaled back to d0.
// A positive value indicates chaos.
func LyapunovExponent(ctx context.Context, c physics.Constants, x0 dynamo.State, cfg sim.StepConfig, frames int, d0 float64) (float64, error) {
	if frames <= 0 {
		return 0, fmt.Errorf("frames must be positive, got %d", frames)
	}
	if !(d0 > 0) {
		return 0, fmt.Errorf("perturbation must be positive, got %g", d0)
	}
	if len(x0) != physics.StateDim {
		return 0, fmt.Errorf("%w: got %d values, want %d", dynamo.ErrDimensionMismatch, len(x0), physics.StateDim)
	}

	ref, companion := sim.NewSolver(), sim.NewSolver()
	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += d0

	sumLog := 0.0
	diff := make(dynamo.State, len(x))

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		next, err := ref.Step(c, x, cfg)
		if err != nil {
			return 0, fmt.Errorf("reference trajectory: %w", err)
		}
		nextP, err := companion.Step(c, xp, cfg)
		if err != nil {
			return 0, fmt.Errorf("perturbed trajectory: %w", err)
		}

		sep := separation(next, nextP, diff)
		if sep > 0 {
			sumLog += math.Log(sep / d0)
			scale := d0 / sep
			for j := range nextP {
				nextP[j] = next[j] + diff[j]*scale
			}
		}
		x, xp = next, nextP
	}

	return sumLog / (float64(frames) * cfg.Dt), nil
}

// separation writes b - a into diff, wrapping angle differences, and returns
// its norm.
func separation(a, b, diff dynamo.State) float64 {
	for i := range a {
		d := b[i] - a[i]
		if i%2 == 0 {
			d = dynamo.NormalizeAngle(d)
		}
		diff[i] = d
	}
	return diff.Norm()
}
