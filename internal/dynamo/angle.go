package dynamo

import "math"

const twoPi = 2 * math.Pi

// NormalizeAngle wraps theta into (-π, π]. The result is congruent to theta
// modulo 2π.
func NormalizeAngle(theta float64) float64 {
	r := math.Mod(theta, twoPi)
	if r < 0 {
		r += twoPi
	}
	if r > math.Pi {
		r -= twoPi
	}
	return r
}
