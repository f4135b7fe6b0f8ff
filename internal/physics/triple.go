package physics

import (
	"fmt"
	"math"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
)

const (
	DefaultGravity = 9.8

	// StateDim is the number of generalized coordinates: θ1, ω1, θ2, ω2, θ3, ω3.
	StateDim = 6
)

// Constants are the physical parameters of the pendulum. Link 1 hangs from a
// fixed pivot; links 2 and 3 both hang from the tip of link 1.
type Constants struct {
	Masses  [3]float64 `yaml:"masses"`
	Lengths [3]float64 `yaml:"lengths"`
	Gravity float64    `yaml:"gravity"`
}

func DefaultConstants() Constants {
	return Constants{
		Masses:  [3]float64{1.0, 0.5, 0.3},
		Lengths: [3]float64{1.0, 0.9, 0.8},
		Gravity: DefaultGravity,
	}
}

// Validate reports masses or lengths that are not positive finite numbers.
// Such values make the mass matrix singular.
func (c Constants) Validate() error {
	for i, m := range c.Masses {
		if !(m > 0) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: mass m%d = %g", dynamo.ErrDegenerate, i+1, m)
		}
	}
	for i, l := range c.Lengths {
		if !(l > 0) || math.IsInf(l, 0) {
			return fmt.Errorf("%w: length l%d = %g", dynamo.ErrDegenerate, i+1, l)
		}
	}
	if math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0) {
		return fmt.Errorf("%w: gravity = %g", dynamo.ErrDegenerate, c.Gravity)
	}
	return nil
}

// LengthRatios returns l2/l1 and l3/l1.
func (c Constants) LengthRatios() (float64, float64) {
	return c.Lengths[1] / c.Lengths[0], c.Lengths[2] / c.Lengths[0]
}

// TriplePendulum implements dynamo.System for the three-link pendulum.
// State: [theta1, omega1, theta2, omega2, theta3, omega3]
type TriplePendulum struct {
	Constants
}

func NewTriplePendulum(c Constants) *TriplePendulum {
	return &TriplePendulum{Constants: c}
}

func (p *TriplePendulum) StateDim() int { return StateDim }

func (p *TriplePendulum) Derive(_ float64, x, dx dynamo.State) {
	q1, w1, q2, w2, q3, w3 := x[0], x[1], x[2], x[3], x[4], x[5]
	m1, m2, m3 := p.Masses[0], p.Masses[1], p.Masses[2]
	l1, l2, l3 := p.Lengths[0], p.Lengths[1], p.Lengths[2]
	g := p.Gravity

	s1, c1 := math.Sincos(q1)
	s2, c2 := math.Sincos(q2)
	s3, c3 := math.Sincos(q3)
	s12 := math.Sin(q1 + q2)
	s13 := math.Sin(q1 + q3)
	w2sq, w3sq := w2*w2, w3*w3

	// Shared by all three accelerations.
	den := l1 * (m1 + m2*s2*s2 + m3*s3*s3)

	a1 := (-g*l1*(m1+m2+m3)*s1 -
		g*l2*m2*s12 -
		g*l3*m3*s13 +
		g*l1*m2*s12*c2 +
		g*l1*m3*s13*c3 +
		l1*l2*m2*w2sq*s2 +
		l1*l3*m3*w3sq*s3) / l1 / den

	a2 := (-g*l1*(m1+m2)*s2*c1 -
		g*l1*m3*s12*s3*s3 -
		g*l1*m3*s13*c2*c3 -
		l1*l2*m2*w2sq*s2*c2 -
		l1*l3*m3*w3sq*s3*c2 +
		g*l1*m3*s1*c2 +
		g*l2*m2*s12*c2 +
		g*l3*m3*s13*c2) / l2 / den

	a3 := (-g*l1*(m1+m3)*s3*c1 -
		g*l1*m2*s12*c2*c3 -
		g*l1*m2*s13*s2*s2 -
		l1*l2*m2*w2sq*s2*c3 -
		l1*l3*m3*w3sq*s3*c3 +
		g*l1*m2*s1*c3 +
		g*l2*m2*s12*c3 +
		g*l3*m3*s13*c3) / l3 / den

	dx[0], dx[1] = w1, a1
	dx[2], dx[3] = w2, a2
	dx[4], dx[5] = w3, a3
}

// Positions returns the three mass positions relative to the pivot, with y
// pointing down. theta = 0 hangs straight down.
func (p *TriplePendulum) Positions(x dynamo.State) [3][2]float64 {
	l1, l2, l3 := p.Lengths[0], p.Lengths[1], p.Lengths[2]
	q1, q12, q13 := x[0], x[0]+x[2], x[0]+x[4]

	x1, y1 := l1*math.Sin(q1), l1*math.Cos(q1)
	return [3][2]float64{
		{x1, y1},
		{x1 + l2*math.Sin(q12), y1 + l2*math.Cos(q12)},
		{x1 + l3*math.Sin(q13), y1 + l3*math.Cos(q13)},
	}
}

func (p *TriplePendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"m1": p.Masses[0],
		"m2": p.Masses[1],
		"m3": p.Masses[2],
		"l1": p.Lengths[0],
		"l2": p.Lengths[1],
		"l3": p.Lengths[2],
		"g":  p.Gravity,
	}
}

func (p *TriplePendulum) SetParam(name string, value float64) error {
	switch name {
	case "m1":
		p.Masses[0] = value
	case "m2":
		p.Masses[1] = value
	case "m3":
		p.Masses[2] = value
	case "l1":
		p.Lengths[0] = value
	case "l2":
		p.Lengths[1] = value
	case "l3":
		p.Lengths[2] = value
	case "g":
		p.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
