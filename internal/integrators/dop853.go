package integrators

import (
	"math"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
)

const (
	DefaultTolerance = 1e-12
	DefaultMaxSteps  = 100000
)

// DOP853 is an explicit adaptive Runge-Kutta integrator of order 8 with a
// combined 5th/3rd order error estimate. It keeps scratch buffers between
// calls and is not safe for concurrent use.
type DOP853 struct {
	AbsTol      float64
	RelTol      float64
	InitialStep float64 // first trial sub-step; 0 picks the whole interval
	MaxSteps    int     // accepted plus rejected sub-steps per Integrate call

	safety   float64
	minScale float64
	maxScale float64

	k       [dopStages + 1]dynamo.State
	y, yNew dynamo.State
	scratch dynamo.State

	stats Stats
}

// Stats describes the last Integrate call.
type Stats struct {
	Accepted  int
	Rejected  int
	Evals     int
	LastStep  float64
	Completed bool
}

func NewDOP853() *DOP853 {
	return &DOP853{
		AbsTol:   DefaultTolerance,
		RelTol:   DefaultTolerance,
		MaxSteps: DefaultMaxSteps,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (d *DOP853) Stats() Stats { return d.stats }

func (d *DOP853) ensureScratch(n int) {
	if len(d.y) != n {
		for i := range d.k {
			d.k[i] = make(dynamo.State, n)
		}
		d.y = make(dynamo.State, n)
		d.yNew = make(dynamo.State, n)
		d.scratch = make(dynamo.State, n)
	}
}

func (d *DOP853) eval(dyn dynamo.System, t float64, x, dx dynamo.State) bool {
	d.stats.Evals++
	dyn.Derive(t, x, dx)
	return dx.IsValid()
}

// Integrate advances x from t0 to t1 and returns the state at t1. The last
// sub-step is clamped to land exactly on t1. Failures are returned as
// *dynamo.DivergenceError.
func (d *DOP853) Integrate(dyn dynamo.System, x dynamo.State, t0, t1 float64) (dynamo.State, error) {
	n := len(x)
	if n != dyn.StateDim() {
		return nil, dynamo.ErrDimensionMismatch
	}
	d.ensureScratch(n)
	d.stats = Stats{}

	copy(d.y, x)
	t := t0
	span := t1 - t0
	if span <= 0 {
		d.stats.Completed = true
		return d.y.Clone(), nil
	}

	h := d.InitialStep
	if h <= 0 || h > span {
		h = span
	}

	diverged := func(cause error) error {
		d.stats.LastStep = h
		return &dynamo.DivergenceError{
			Cause:    cause,
			Time:     t,
			Step:     h,
			Substeps: d.stats.Accepted + d.stats.Rejected,
		}
	}

	if !d.y.IsValid() || !d.eval(dyn, t, d.y, d.k[0]) {
		return nil, diverged(dynamo.ErrNonFinite)
	}

	exponent := -1.0 / 8.0
	rejected := false

	for {
		remaining := t1 - t
		if remaining <= 4*epsilon*math.Max(math.Abs(t1), 1) {
			break
		}
		last := false
		if h >= remaining {
			h = remaining
			last = true
		}
		if h < 10*epsilon*math.Max(math.Abs(t), math.Abs(t1)) {
			return nil, diverged(dynamo.ErrStepTooSmall)
		}
		if d.stats.Accepted+d.stats.Rejected >= d.MaxSteps {
			return nil, diverged(dynamo.ErrStepBudget)
		}

		if !d.attempt(dyn, t, h) {
			return nil, diverged(dynamo.ErrNonFinite)
		}

		errNorm := d.errorNorm(h)
		if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
			return nil, diverged(dynamo.ErrNonFinite)
		}

		if errNorm <= 1 {
			d.stats.Accepted++
			if last {
				t = t1
			} else {
				t += h
			}
			d.y, d.yNew = d.yNew, d.y
			d.k[0], d.k[dopStages] = d.k[dopStages], d.k[0]

			scale := d.maxScale
			if errNorm > 0 {
				scale = math.Min(d.maxScale, d.safety*math.Pow(errNorm, exponent))
			}
			if rejected {
				scale = math.Min(1, scale)
			}
			rejected = false
			d.stats.LastStep = h
			if last {
				break
			}
			h *= scale
		} else {
			d.stats.Rejected++
			rejected = true
			h *= math.Max(d.minScale, d.safety*math.Pow(errNorm, exponent))
		}
	}

	d.stats.Completed = true
	return d.y.Clone(), nil
}

// attempt evaluates all stages for a step of size h from (t, d.y) into d.yNew
// and the FSAL derivative into d.k[dopStages].
func (d *DOP853) attempt(dyn dynamo.System, t, h float64) bool {
	n := len(d.y)
	for s := 1; s < dopStages; s++ {
		row := &dopA[s]
		for i := 0; i < n; i++ {
			acc := 0.0
			for j := 0; j < s; j++ {
				acc += row[j] * d.k[j][i]
			}
			d.scratch[i] = d.y[i] + h*acc
		}
		if !d.eval(dyn, t+dopC[s]*h, d.scratch, d.k[s]) {
			return false
		}
	}

	for i := 0; i < n; i++ {
		acc := 0.0
		for s := 0; s < dopStages; s++ {
			acc += dopB[s] * d.k[s][i]
		}
		d.yNew[i] = d.y[i] + h*acc
	}
	if !d.yNew.IsValid() {
		return false
	}
	return d.eval(dyn, t+h, d.yNew, d.k[dopStages])
}

func (d *DOP853) errorNorm(h float64) float64 {
	n := len(d.y)
	err5, err3 := 0.0, 0.0
	for i := 0; i < n; i++ {
		e5, e3 := 0.0, 0.0
		for s := 0; s < dopStages; s++ {
			e5 += dopE5[s] * d.k[s][i]
			e3 += dopE3[s] * d.k[s][i]
		}
		sc := d.AbsTol + d.RelTol*math.Max(math.Abs(d.y[i]), math.Abs(d.yNew[i]))
		e5 /= sc
		e3 /= sc
		err5 += e5 * e5
		err3 += e3 * e3
	}
	if err5 == 0 && err3 == 0 {
		return 0
	}
	den := err5 + 0.01*err3
	return math.Abs(h) * err5 / math.Sqrt(den*float64(n))
}

const epsilon = 2.220446049250313e-16
