package viz

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/LemoMew/FractalPendulum/internal/fractal"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const (
	blank = 0x2800

	// ballScale converts ball radii from screen pixels to sub-pixels.
	ballScale = 0.25
)

// Canvas is a grid of Braille cells. Each cell carries the color of the last
// dot drawn into it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]color.RGBA
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]color.RGBA, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]color.RGBA, w)
	}
	c.Clear()
	return c
}

// Bounds is the drawable area in sub-pixels: (Width*2) x (Height*4).
func (c *Canvas) Bounds() fractal.Rect {
	return fractal.NewRect(0, 0, float64(c.Width*2), float64(c.Height*4))
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set sets a sub-pixel without changing the cell color.
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// SetColor sets a sub-pixel and recolors its cell.
func (c *Canvas) SetColor(x, y int, clr color.RGBA) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Colors[row][col] = clr
}

func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = color.RGBA{}
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, clr color.RGBA) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetColor(x0, y0, clr)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle outlines a circle of radius r sub-pixels.
func (c *Canvas) DrawCircle(cx, cy, r int, clr color.RGBA) {
	if r <= 0 {
		c.SetColor(cx, cy, clr)
		return
	}
	x, y, d := r, 0, 1-r
	for x >= y {
		for _, p := range [8][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			c.SetColor(cx+p[0], cy+p[1], clr)
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// DrawPrimitives draws fractal primitives whose coordinates are already in
// sub-pixels. Segments are clipped to the canvas before rasterizing.
func (c *Canvas) DrawPrimitives(prims []fractal.Primitive) {
	bounds := c.Bounds()
	for _, p := range prims {
		switch p.Kind {
		case fractal.Segment:
			a, b, ok := clipSegment(p.A, p.B, bounds)
			if !ok {
				continue
			}
			c.DrawLine(round(a.X), round(a.Y), round(b.X), round(b.Y), p.Color)
		case fractal.Ball:
			if !p.A.IsFinite() || !bounds.Intersects(fractal.RectFromCenterSize(p.A, fractal.Vec2{X: 2 * p.Radius, Y: 2 * p.Radius})) {
				continue
			}
			c.DrawCircle(round(p.A.X), round(p.A.Y), round(p.Radius*ballScale), p.Color)
		}
	}
}

// String renders the grid with each run of same-colored cells styled once.
func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] {
				continue
			}
			b.WriteString(colorize(string(row[start:j]), c.Colors[i][start]))
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func colorize(s string, clr color.RGBA) string {
	if clr == (color.RGBA{}) {
		return s
	}
	hex := colorful.Color{
		R: float64(clr.R) / 255,
		G: float64(clr.G) / 255,
		B: float64(clr.B) / 255,
	}.Hex()
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(s)
}

// clipSegment clips ab to r (Liang-Barsky).
func clipSegment(a, b fractal.Vec2, r fractal.Rect) (fractal.Vec2, fractal.Vec2, bool) {
	if !a.IsFinite() || !b.IsFinite() {
		return a, b, false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X - r.Min.X},
		{dx, r.Max.X - a.X},
		{-dy, a.Y - r.Min.Y},
		{dy, r.Max.Y - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return fractal.Vec2{X: a.X + t0*dx, Y: a.Y + t0*dy},
		fractal.Vec2{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func round(v float64) int { return int(math.Round(v)) }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
