package palette

import (
	"image/color"
	"math"
	"testing"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
)

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		name    string
		h, s, l float64
		want    color.RGBA
	}{
		{"red", 0, 1, 0.5, color.RGBA{255, 0, 0, 255}},
		{"yellow", math.Pi / 3, 1, 0.5, color.RGBA{255, 255, 0, 255}},
		{"green", 2 * math.Pi / 3, 1, 0.5, color.RGBA{0, 255, 0, 255}},
		{"cyan", math.Pi, 1, 0.5, color.RGBA{0, 255, 255, 255}},
		{"blue", 4 * math.Pi / 3, 1, 0.5, color.RGBA{0, 0, 255, 255}},
		{"magenta", 5 * math.Pi / 3, 1, 0.5, color.RGBA{255, 0, 255, 255}},
		{"white", 1.0, 1, 1, color.RGBA{255, 255, 255, 255}},
		{"black", 1.0, 1, 0, color.RGBA{0, 0, 0, 255}},
		{"grey", 2.0, 0, 0.5, color.RGBA{128, 128, 128, 255}},
		{"negative hue", -2 * math.Pi / 3, 1, 0.5, color.RGBA{0, 0, 255, 255}},
		{"clamped", 0, 2, 0.5, color.RGBA{255, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HSLToRGB(tt.h, tt.s, tt.l); got != tt.want {
				t.Errorf("HSLToRGB(%v, %v, %v) = %v, want %v", tt.h, tt.s, tt.l, got, tt.want)
			}
		})
	}
}

func TestHSLToRGBPeriodic(t *testing.T) {
	hues := []float64{0, 0.3, 1.7, 2.9, 4.2, 5.5, -0.4, -2.5, -6.0}
	levels := []float64{0, 0.25, 0.6, 1}

	for _, h := range hues {
		for _, s := range levels {
			for _, l := range levels {
				a := HSLToRGB(h, s, l)
				b := HSLToRGB(h+2*math.Pi, s, l)
				if a != b {
					t.Errorf("hue %v (s=%v, l=%v): %v != %v after one turn", h, s, l, a, b)
				}
			}
		}
	}
}

func TestHSLToRGBNonFinite(t *testing.T) {
	got := HSLToRGB(math.NaN(), math.NaN(), 0.5)
	want := color.RGBA{128, 128, 128, 255}
	if got != want {
		t.Errorf("expected grey for NaN input, got %v", got)
	}
}

func TestResolveHuePairFixed(t *testing.T) {
	s := DefaultSettings()
	s.Mode = Fixed
	s.Hue1, s.Hue2 = 0.7, 3.1

	states := []dynamo.State{
		{0, 0, 0, 0, 0, 0},
		{1, 2, 3, 4, 5, 6},
		{-3, 10, 0.5, -8, 2, 100},
	}
	for _, x := range states {
		lo, hi := ResolveHuePair(s, x)
		if lo != 0.7 || hi != 3.1 {
			t.Errorf("state %v: got (%v, %v), want (0.7, 3.1)", x, lo, hi)
		}
	}
}

func TestResolveHuePairDynamic(t *testing.T) {
	s := Settings{
		Mode:    Dynamic,
		Target1: Omega1,
		Target2: Omega3,
		Target3: Theta2,
		Factor:  0.5,
	}
	x := dynamo.State{0.1, 2, 0.3, 4, 0.5, 6}

	lo, hi := ResolveHuePair(s, x)
	if math.Abs(lo-(0.3+2*0.5)) > 1e-12 {
		t.Errorf("expected low hue 1.3, got %v", lo)
	}
	if math.Abs(hi-(0.3+6*0.5)) > 1e-12 {
		t.Errorf("expected high hue 3.3, got %v", hi)
	}
}

func TestTargetValue(t *testing.T) {
	x := dynamo.State{10, 11, 12, 13, 14, 15}
	tests := []struct {
		target Target
		want   float64
	}{
		{Theta1, 10}, {Omega1, 11}, {Theta2, 12}, {Omega2, 13}, {Theta3, 14}, {Omega3, 15},
	}
	for _, tt := range tests {
		if got := tt.target.Value(x); got != tt.want {
			t.Errorf("%v.Value() = %v, want %v", tt.target, got, tt.want)
		}
	}
	if got := Target(42).Value(x); got != 0 {
		t.Errorf("out of range target should read 0, got %v", got)
	}
}

func TestParseTarget(t *testing.T) {
	for i, name := range targetNames {
		got, err := ParseTarget(name)
		if err != nil || got != Target(i) {
			t.Errorf("ParseTarget(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseTarget("phi"); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("Dynamic"); err != nil || m != Dynamic {
		t.Errorf("ParseMode(Dynamic) = %v, %v", m, err)
	}
	if _, err := ParseMode("rainbow"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(1, 3, 0.5); got != 2 {
		t.Errorf("Lerp(1, 3, 0.5) = %v, want 2", got)
	}
	if got := Lerp(1, 3, 0); got != 1 {
		t.Errorf("Lerp(1, 3, 0) = %v, want 1", got)
	}
}
