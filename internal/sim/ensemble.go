package sim

import (
	"context"
	"math/rand"
	"sync"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/physics"
)

// Ensemble runs copies of one pendulum from slightly perturbed initial states.
// Member 0 starts from the unperturbed state. Each member owns its own
// Simulator, so members run in parallel.
type Ensemble struct {
	constants    physics.Constants
	step         StepConfig
	numRuns      int
	seedStart    int64
	Perturbation float64
}

func NewEnsemble(c physics.Constants, step StepConfig, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		constants:    c,
		step:         step,
		numRuns:      numRuns,
		seedStart:    seedStart,
		Perturbation: 1e-8,
	}
}

// Run advances every member for frames steps. Members that diverge keep their
// partial results; the first error is returned with all results.
func (e *Ensemble) Run(ctx context.Context, x0 dynamo.State, frames int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			start := x0.Clone()
			if idx > 0 {
				rng := rand.New(rand.NewSource(seed))
				for j := range start {
					start[j] += (rng.Float64()*2 - 1) * e.Perturbation
				}
			}

			s, err := New(e.constants, start, WithStepConfig(e.step), WithSeed(seed))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, frames)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

// Spread returns, for every recorded frame, the largest distance between the
// unperturbed member and any other member. Frames past the shortest run are
// dropped.
func Spread(results []*Result) []float64 {
	if len(results) == 0 || results[0] == nil {
		return nil
	}
	n := len(results[0].States)
	for _, r := range results {
		if r == nil {
			return nil
		}
		if len(r.States) < n {
			n = len(r.States)
		}
	}

	spread := make([]float64, n)
	for f := 0; f < n; f++ {
		ref := results[0].States[f]
		for _, r := range results[1:] {
			if d := ref.Distance(r.States[f]); d > spread[f] {
				spread[f] = d
			}
		}
	}
	return spread
}
