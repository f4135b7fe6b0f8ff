package metrics

import (
	"math"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/physics"
)

// EnergySample is a diagnostic snapshot. It is never fed back into physics.
type EnergySample struct {
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Total     float64 `json:"total"`
}

// Measure computes the energy of state x. The potential is zero at the pivot
// height and decreases downward.
func Measure(c physics.Constants, x dynamo.State) EnergySample {
	if len(x) < physics.StateDim {
		return EnergySample{}
	}
	q1, w1, q2, w2, q3, w3 := x[0], x[1], x[2], x[3], x[4], x[5]
	m1, m2, m3 := c.Masses[0], c.Masses[1], c.Masses[2]
	l1, l2, l3 := c.Lengths[0], c.Lengths[1], c.Lengths[2]
	g := c.Gravity
	mt := m1 + m2 + m3

	ke := 0.5*mt*l1*l1*w1*w1 +
		0.5*m2*l2*l2*w2*w2 +
		0.5*m3*l3*l3*w3*w3 +
		m2*l1*l2*math.Cos(q2)*w1*w2 +
		m3*l1*l3*math.Cos(q3)*w1*w3

	pe := -mt*g*l1*math.Cos(q1) -
		m2*g*l2*math.Cos(q1+q2) -
		m3*g*l3*math.Cos(q1+q3)

	return EnergySample{Kinetic: ke, Potential: pe, Total: ke + pe}
}

// EnergyDrift tracks the largest absolute deviation of total energy from the
// first observed sample.
type EnergyDrift struct {
	name          string
	constants     physics.Constants
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(c physics.Constants) *EnergyDrift {
	return &EnergyDrift{
		name:      "energy_drift",
		constants: c,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

// SetConstants switches the parameters used for later samples. Changing the
// constants changes the energy, so the reference is re-taken on the next
// observation.
func (e *EnergyDrift) SetConstants(c physics.Constants) {
	e.constants = c
	e.Reset()
}

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := Measure(e.constants, x).Total

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++
	e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e.initialEnergy))
}

// Value returns the maximum absolute drift seen since the last reset.
func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current returns the signed drift of the latest sample.
func (e *EnergyDrift) Current() float64 {
	return e.currentEnergy - e.initialEnergy
}

func (e *EnergyDrift) Initial() float64 { return e.initialEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
