package fractal

import "github.com/LemoMew/FractalPendulum/internal/palette"

const (
	// MaxDepth bounds the recursion; depth d produces 2^(d+1)-1 segments.
	MaxDepth     = 20
	DefaultDepth = 12
)

// Config controls fractal geometry and its visual attributes. Width and ball
// radius are in screen units; offsets are in simulation units.
type Config struct {
	Depth           int              `yaml:"depth"`
	Zoom            float64          `yaml:"zoom"`
	XOffset         float64          `yaml:"x_offset"`
	YOffset         float64          `yaml:"y_offset"`
	LineWidth       float64          `yaml:"line_width"`
	WidthDecay      float64          `yaml:"width_decay"`
	Luminance       float64          `yaml:"luminance"`
	LuminanceDecay  float64          `yaml:"luminance_decay"`
	Saturation      float64          `yaml:"saturation"`
	SaturationDecay float64          `yaml:"saturation_decay"`
	ShowBalls       bool             `yaml:"show_balls"`
	BallRadius      float64          `yaml:"ball_radius"`
	Palette         palette.Settings `yaml:"palette"`
}

func DefaultConfig() Config {
	return Config{
		Depth:           DefaultDepth,
		Zoom:            0.1,
		LineWidth:       5.0,
		WidthDecay:      0.8,
		Luminance:       1.0,
		LuminanceDecay:  0.9,
		Saturation:      1.0,
		SaturationDecay: 0.99,
		ShowBalls:       true,
		BallRadius:      10.0,
		Palette:         palette.DefaultSettings(),
	}
}

// SegmentCount returns the number of segments generated for depth.
func SegmentCount(depth int) int {
	depth = clampDepth(depth)
	return 1<<(depth+1) - 1
}

func clampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > MaxDepth {
		return MaxDepth
	}
	return depth
}
