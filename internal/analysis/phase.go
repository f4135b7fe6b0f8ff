package analysis

import (
	"math"
	"strings"

	"github.com/LemoMew/FractalPendulum/internal/fractal"
	"github.com/LemoMew/FractalPendulum/internal/sim"
)

// PhasePortrait2D holds two state components of a recorded run.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []fractal.Vec2
}

func PhasePortrait(result *sim.Result, xIdx, yIdx int) *PhasePortrait2D {
	if result == nil {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]fractal.Vec2, 0, len(result.States)),
	}
	for _, x := range result.States {
		if xIdx >= len(x) || yIdx >= len(x) {
			return nil
		}
		portrait.Points = append(portrait.Points, fractal.Vec2{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait
}

// PhasePortraitToASCII plots the points on a width x height character grid
// with axes where they cross the visible area.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection holds the points where a trajectory crossed a plane.
type PoincareSection struct {
	Points []fractal.Vec2
}

// PoincareSectionFromResult records components recordX and recordY whenever
// component crossIdx rises through threshold, interpolating linearly between
// frames. Jumps larger than π are angle wraps and are ignored.
func PoincareSectionFromResult(result *sim.Result, crossIdx int, threshold float64, recordX, recordY int) *PoincareSection {
	if result == nil {
		return nil
	}
	section := &PoincareSection{Points: make([]fractal.Vec2, 0)}

	for i := 1; i < len(result.States); i++ {
		prev, curr := result.States[i-1], result.States[i]
		if crossIdx >= len(curr) || recordX >= len(curr) || recordY >= len(curr) {
			return nil
		}

		a, b := prev[crossIdx], curr[crossIdx]
		if !(a < threshold && b >= threshold) || b-a > math.Pi {
			continue
		}

		frac := (threshold - a) / (b - a)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		section.Points = append(section.Points, fractal.Vec2{
			X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
			Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
		})
	}
	return section
}

func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: section.Points}, width, height)
}
