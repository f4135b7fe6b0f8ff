package dynamo

import (
	"math"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"pi", math.Pi, math.Pi},
		{"minus pi", -math.Pi, math.Pi},
		{"two pi", 2 * math.Pi, 0},
		{"just past pi", math.Pi + 0.5, -math.Pi + 0.5},
		{"negative", -3, -3},
		{"small negative", -1e-20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeAngleRangeAndCongruence(t *testing.T) {
	for i := -2000; i <= 2000; i++ {
		theta := float64(i) * 0.37
		got := NormalizeAngle(theta)

		if got <= -math.Pi || got > math.Pi {
			t.Fatalf("NormalizeAngle(%v) = %v, outside (-π, π]", theta, got)
		}
		if rem := math.Remainder(theta-got, twoPi); math.Abs(rem) > 1e-9 {
			t.Fatalf("NormalizeAngle(%v) = %v, not congruent (remainder %v)", theta, got, rem)
		}
	}
}
