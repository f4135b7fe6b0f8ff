package palette

import (
	"image/color"
	"math"
)

// HSLToRGB converts a hue in radians plus saturation and luminance in [0, 1]
// to an opaque 8-bit color. The hue is periodic in 2π; s and l are clamped.
func HSLToRGB(h, s, l float64) color.RGBA {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		h = 0
	}
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	deg := h / (2 * math.Pi) * 360
	if deg >= 360 {
		deg = 0
	}
	s = clamp01(s)
	l = clamp01(l)

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(deg/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case deg < 60:
		r, g, b = c, x, 0
	case deg < 120:
		r, g, b = x, c, 0
	case deg < 180:
		r, g, b = 0, c, x
	case deg < 240:
		r, g, b = 0, x, c
	case deg < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{R: channel(r + m), G: channel(g + m), B: channel(b + m), A: 0xff}
}

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v*255))))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
