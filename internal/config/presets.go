package config

import (
	"sort"

	"github.com/LemoMew/FractalPendulum/internal/palette"
)

// Preset adjusts a default configuration.
type Preset struct {
	Description string
	Apply       func(*Config)
}

var Presets = map[string]Preset{
	"default": {
		Description: "the classic chaotic start",
		Apply:       func(*Config) {},
	},
	"gentle": {
		Description: "small swings near the hanging equilibrium",
		Apply: func(c *Config) {
			c.Pendulum.InitialState = [6]float64{0.3, 0, 0.2, 0, -0.2, 0}
		},
	},
	"inverted": {
		Description: "all links balanced upright with a tiny nudge",
		Apply: func(c *Config) {
			c.Pendulum.InitialState = [6]float64{3.14, 0, 0.001, 0, -0.001, 0}
		},
	},
	"equal": {
		Description: "equal masses and lengths, fixed rainbow palette",
		Apply: func(c *Config) {
			c.Pendulum.Masses = [3]float64{1, 1, 1}
			c.Pendulum.Lengths = [3]float64{1, 1, 1}
			c.Render.Palette.Mode = palette.Fixed
			c.Render.Depth = 10
		},
	},
	"spiral": {
		Description: "short outer links, deep recursion",
		Apply: func(c *Config) {
			c.Pendulum.Lengths = [3]float64{1, 0.7, 0.6}
			c.Pendulum.InitialState = [6]float64{1.2, 0, 0.4, 2, -0.6, -2}
			c.Render.Depth = 14
			c.Render.Zoom = 0.2
		},
	},
	"moon": {
		Description: "lunar gravity",
		Apply: func(c *Config) {
			c.Pendulum.Gravity = 1.62
		},
	},
}

// GetPreset returns the default configuration with the named preset applied,
// or nil if there is no such preset.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.Apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
