package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Distance returns the euclidean distance between two states of equal length.
func (s State) Distance(other State) float64 {
	sum := 0.0
	for i := range s {
		if i >= len(other) {
			break
		}
		d := s[i] - other[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// System is an autonomous-or-not ODE. Derive writes dX/dt at (t, x) into dx,
// which has the same length as x.
type System interface {
	Derive(t float64, x, dx State)
	StateDim() int
}

// Integrator advances x from t0 to t1. The input state is not modified.
type Integrator interface {
	Integrate(dyn System, x State, t0, t1 float64) (State, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
