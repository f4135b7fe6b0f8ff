package fractal

import "math"

type Vec2 struct{ X, Y float64 }

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Rect is an axis-aligned rectangle. Screen rectangles have y pointing down.
type Rect struct{ Min, Max Vec2 }

func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{Min: Vec2{x0, y0}, Max: Vec2{x1, y1}}
}

// RectFromPoints returns the bounding box of a and b.
func RectFromPoints(a, b Vec2) Rect {
	return Rect{
		Min: Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Max: Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
}

func RectFromCenterSize(center, size Vec2) Rect {
	return Rect{
		Min: Vec2{center.X - size.X/2, center.Y - size.Y/2},
		Max: Vec2{center.X + size.X/2, center.Y + size.Y/2},
	}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Intersects reports whether the rectangles overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X &&
		r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// SquareProportions scales the rectangle so its shorter side is 1.
func (r Rect) SquareProportions() Vec2 {
	w, h := r.Width(), r.Height()
	if !(w > 0) || !(h > 0) {
		return Vec2{1, 1}
	}
	if w > h {
		return Vec2{w / h, 1}
	}
	return Vec2{1, h / w}
}

// Transform maps From onto To affinely, axis by axis.
type Transform struct {
	From, To Rect
}

func (t Transform) Apply(p Vec2) Vec2 {
	return Vec2{
		X: remap(p.X, t.From.Min.X, t.From.Max.X, t.To.Min.X, t.To.Max.X),
		Y: remap(p.Y, t.From.Min.Y, t.From.Max.Y, t.To.Min.Y, t.To.Max.Y),
	}
}

// Scale returns how many screen units one logical unit spans along x.
func (t Transform) Scale() float64 {
	w := t.From.Width()
	if w == 0 {
		return 0
	}
	return t.To.Width() / w
}

func remap(v, fromMin, fromMax, toMin, toMax float64) float64 {
	if fromMin == toMin && fromMax == toMax {
		return v
	}
	span := fromMax - fromMin
	if span == 0 {
		return toMin
	}
	return toMin + (v-fromMin)/span*(toMax-toMin)
}

// ViewTransform maps simulation space onto viewport. The logical view is
// centered at the origin, keeps the viewport's aspect ratio and spans 1/zoom
// units along its shorter side.
func ViewTransform(viewport Rect, zoom float64) Transform {
	if !(zoom > 0) || math.IsInf(zoom, 0) {
		zoom = 1
	}
	p := viewport.SquareProportions()
	from := RectFromCenterSize(Vec2{}, Vec2{p.X / zoom, p.Y / zoom})
	return Transform{From: from, To: viewport}
}
