package viz

import (
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/LemoMew/FractalPendulum/internal/fractal"
)

var red = color.RGBA{R: 255, A: 255}

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(1, 3)
	if got, want := c.Grid[0][0], rune(blank|0x1|0x80); got != want {
		t.Errorf("cell = %U, want %U", got, want)
	}
	c.Unset(0, 0)
	if got, want := c.Grid[0][0], rune(blank|0x80); got != want {
		t.Errorf("after unset cell = %U, want %U", got, want)
	}
	if c.Grid[0][1] != blank {
		t.Errorf("untouched cell = %U", c.Grid[0][1])
	}
}

func TestCanvasOutOfBounds(t *testing.T) {
	c := NewCanvas(2, 1)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		c.SetColor(p[0], p[1], red)
	}
	for j, r := range c.Grid[0] {
		if r != blank {
			t.Errorf("cell %d = %U, want blank", j, r)
		}
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(2, 1)
	c.DrawLine(0, 0, 3, 0, red)
	for j := 0; j < 2; j++ {
		if got, want := c.Grid[0][j], rune(blank|0x1|0x8); got != want {
			t.Errorf("cell %d = %U, want %U", j, got, want)
		}
		if c.Colors[0][j] != red {
			t.Errorf("cell %d color = %v", j, c.Colors[0][j])
		}
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(3, 2)
	c.DrawCircle(2, 4, 2, red)
	c.Clear()
	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.Grid[i][j] != blank || c.Colors[i][j] != (color.RGBA{}) {
				t.Fatalf("cell (%d,%d) not cleared", i, j)
			}
		}
	}
}

func TestClipSegment(t *testing.T) {
	r := fractal.NewRect(0, 0, 4, 4)
	tests := []struct {
		name   string
		a, b   fractal.Vec2
		ok     bool
		wa, wb fractal.Vec2
	}{
		{"inside", fractal.Vec2{X: 1, Y: 1}, fractal.Vec2{X: 3, Y: 2}, true, fractal.Vec2{X: 1, Y: 1}, fractal.Vec2{X: 3, Y: 2}},
		{"crossing", fractal.Vec2{X: -10, Y: 2}, fractal.Vec2{X: 10, Y: 2}, true, fractal.Vec2{X: 0, Y: 2}, fractal.Vec2{X: 4, Y: 2}},
		{"outside", fractal.Vec2{X: -3, Y: -1}, fractal.Vec2{X: -1, Y: -3}, false, fractal.Vec2{}, fractal.Vec2{}},
		{"parallel outside", fractal.Vec2{X: -1, Y: 0}, fractal.Vec2{X: -1, Y: 4}, false, fractal.Vec2{}, fractal.Vec2{}},
		{"nan", fractal.Vec2{X: math.NaN(), Y: 0}, fractal.Vec2{X: 1, Y: 1}, false, fractal.Vec2{}, fractal.Vec2{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, ok := clipSegment(tt.a, tt.b, r)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (a != tt.wa || b != tt.wb) {
				t.Errorf("got %v-%v, want %v-%v", a, b, tt.wa, tt.wb)
			}
		})
	}
}

func TestDrawPrimitives(t *testing.T) {
	c := NewCanvas(10, 5)
	prims := []fractal.Primitive{
		{Kind: fractal.Segment, A: fractal.Vec2{X: -1e12, Y: 10}, B: fractal.Vec2{X: 1e12, Y: 10}, Color: red},
		{Kind: fractal.Segment, A: fractal.Vec2{X: math.Inf(1), Y: 0}, B: fractal.Vec2{X: 0, Y: 0}, Color: red},
		{Kind: fractal.Ball, A: fractal.Vec2{X: 10, Y: 10}, B: fractal.Vec2{X: 10, Y: 10}, Radius: 8, Color: red},
		{Kind: fractal.Ball, A: fractal.Vec2{X: 1e9, Y: 1e9}, Radius: 8, Color: red},
	}
	c.DrawPrimitives(prims)

	row := 10 / 4
	for j := 0; j < c.Width; j++ {
		if c.Grid[row][j] == blank {
			t.Errorf("cell (%d,%d) empty, want the clipped segment", row, j)
		}
	}
	if c.Grid[0][0] != blank {
		t.Errorf("non-finite segment drawn at origin")
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	c.SetColor(0, 0, red)
	out := c.String()
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("got %d lines, want 2", got)
	}
	if !strings.ContainsRune(out, blank|0x1) {
		t.Errorf("output missing dot: %q", out)
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 4); got != "────" {
		t.Errorf("empty = %q", got)
	}
	out := SparklineChart([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 4)
	if n := strings.Count(out, "█"); n != 1 {
		t.Errorf("want one full bar for the maximum, got %d in %q", n, out)
	}
	if strings.Contains(out, "▂") || !strings.Contains(out, "▃") {
		t.Errorf("last four values should be shown, got %q", out)
	}
}

func TestGradientText(t *testing.T) {
	if GradientText("", "#000000", "#ffffff") != "" {
		t.Error("empty text should render empty")
	}
	if out := GradientText("abc", "#00ffff", "not-a-color"); !strings.Contains(out, "c") {
		t.Errorf("text lost: %q", out)
	}
}
