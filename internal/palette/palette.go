// Package palette resolves the hue pair used to color the fractal and
// converts hue/saturation/luminance to 8-bit RGB.
package palette

import (
	"fmt"
	"math"
	"strings"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
)

type Mode int

const (
	Fixed Mode = iota
	Dynamic
)

var modeNames = map[Mode]string{
	Fixed:   "fixed",
	Dynamic: "dynamic",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return Fixed, fmt.Errorf("unknown hue mode: %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Target selects one state component. The zero value is Theta1.
type Target int

const (
	Theta1 Target = iota
	Omega1
	Theta2
	Omega2
	Theta3
	Omega3
)

var targetNames = [...]string{"theta1", "omega1", "theta2", "omega2", "theta3", "omega3"}

func (t Target) String() string {
	if t < 0 || int(t) >= len(targetNames) {
		return fmt.Sprintf("target(%d)", int(t))
	}
	return targetNames[t]
}

func ParseTarget(s string) (Target, error) {
	for i, name := range targetNames {
		if strings.EqualFold(s, name) {
			return Target(i), nil
		}
	}
	return Theta1, fmt.Errorf("unknown hue target: %q", s)
}

func (t Target) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Target) UnmarshalText(text []byte) error {
	parsed, err := ParseTarget(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value reads the selected component. Target order matches the state layout.
func (t Target) Value(x dynamo.State) float64 {
	if t < 0 || int(t) >= len(x) {
		return 0
	}
	return x[t]
}

// Settings configure hue resolution. Hues are in radians.
type Settings struct {
	Mode    Mode    `yaml:"mode"`
	Hue1    float64 `yaml:"hue1"`
	Hue2    float64 `yaml:"hue2"`
	Target1 Target  `yaml:"target1"`
	Target2 Target  `yaml:"target2"`
	Target3 Target  `yaml:"target3"`
	Factor  float64 `yaml:"factor"`
}

func DefaultSettings() Settings {
	return Settings{
		Mode:    Dynamic,
		Hue1:    0,
		Hue2:    2 * math.Pi,
		Target1: Omega1,
		Target2: Omega2,
		Target3: Theta1,
		Factor:  0.1,
	}
}

// ResolveHuePair returns the two hue endpoints for the current frame. In
// dynamic mode both endpoints are offset by Target3 and spread by the
// Target1/Target2 components scaled by Factor.
func ResolveHuePair(s Settings, x dynamo.State) (float64, float64) {
	if s.Mode != Dynamic {
		return s.Hue1, s.Hue2
	}
	base := s.Target3.Value(x)
	return base + s.Target1.Value(x)*s.Factor, base + s.Target2.Value(x)*s.Factor
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
