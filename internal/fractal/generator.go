package fractal

import (
	"image/color"
	"math"
	"math/cmplx"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/palette"
	"github.com/LemoMew/FractalPendulum/internal/physics"
)

type Kind int

const (
	Segment Kind = iota
	Ball
)

// Primitive is a drawable shape in screen space. Segments span A to B with
// stroke Width; balls are centered at A with Radius.
type Primitive struct {
	Kind   Kind
	A, B   Vec2
	Width  float64
	Radius float64
	Color  color.RGBA
	Level  int // recursion level; balls use the mass index
}

// Output holds one frame of geometry. Primitives are in draw order: deepest
// level first, the root level after, ball markers last.
type Output struct {
	Primitives []Primitive
	Segments   int // generated segments, independent of clipping
	Visible    int // segments that passed the viewport test
}

// node is a segment in simulation space: it starts at start and spans vec.
type node struct {
	start, vec complex128
}

// apply returns the child anchored at this node's end, scaled and rotated by tr.
func (n node) apply(tr complex128) node {
	return node{start: n.start + n.vec, vec: n.vec * tr}
}

func (n node) end() complex128 { return n.start + n.vec }

// Generate expands the pendulum state into the fractal for one frame. Every
// node spawns two children per level, scaled by l2/l1 and l3/l1 and rotated
// by θ2 and θ3. Nodes are processed level by level, so only two level
// buffers are alive at any time.
func Generate(x dynamo.State, c physics.Constants, cfg Config, viewport Rect, toScreen Transform) Output {
	depth := clampDepth(cfg.Depth)
	out := Output{Segments: SegmentCount(depth)}
	if len(x) < physics.StateDim {
		return out
	}

	l1 := finiteOrZero(c.Lengths[0])
	r2, r3 := c.LengthRatios()
	transforms := [2]complex128{
		cmplx.Rect(finiteOrZero(r2), x[2]),
		cmplx.Rect(finiteOrZero(r3), x[4]),
	}
	root := node{
		start: complex(cfg.XOffset, cfg.YOffset),
		vec:   cmplx.Rect(l1, x[0]+math.Pi/2),
	}
	hueLo, hueHi := palette.ResolveHuePair(cfg.Palette, x)

	capacity := out.Segments
	if capacity > 1<<16 {
		capacity = 1 << 16
	}
	prims := make([]Primitive, 0, capacity+3)

	if cfg.ShowBalls {
		prims = appendBalls(prims, root, transforms, c, cfg, hueLo, hueHi, toScreen)
	}

	current := []node{root}
	var next []node
	width, lum, sat := cfg.LineWidth, cfg.Luminance, cfg.Saturation

	for level := 0; level <= depth; level++ {
		n := float64(len(current))
		for i, nd := range current {
			a := toScreen.Apply(toVec(nd.start))
			b := toScreen.Apply(toVec(nd.end()))
			if !a.IsFinite() || !b.IsFinite() || !viewport.Intersects(RectFromPoints(a, b)) {
				continue
			}
			hue := palette.Lerp(hueLo, hueHi, (float64(i)+0.5)/n)
			prims = append(prims, Primitive{
				Kind:  Segment,
				A:     a,
				B:     b,
				Width: width,
				Color: palette.HSLToRGB(hue, sat, lum),
				Level: level,
			})
			out.Visible++
		}
		if level == depth {
			break
		}

		if cap(next) < 2*len(current) {
			next = make([]node, 0, 2*len(current))
		}
		next = next[:0]
		for _, nd := range current {
			next = append(next, nd.apply(transforms[0]), nd.apply(transforms[1]))
		}
		current, next = next, current

		width *= cfg.WidthDecay
		lum *= cfg.LuminanceDecay
		sat *= cfg.SaturationDecay
	}

	for i, j := 0, len(prims)-1; i < j; i, j = i+1, j-1 {
		prims[i], prims[j] = prims[j], prims[i]
	}
	out.Primitives = prims
	return out
}

// appendBalls adds markers at the three mass positions: the tip of link 1 and
// the tips of links 2 and 3 hanging from it.
func appendBalls(prims []Primitive, root node, transforms [2]complex128, c physics.Constants, cfg Config, hueLo, hueHi float64, toScreen Transform) []Primitive {
	balls := [3]node{root, root.apply(transforms[0]), root.apply(transforms[1])}
	hue := palette.Lerp(hueLo, hueHi, 0.5)

	for i, b := range balls {
		p := toScreen.Apply(toVec(b.end()))
		if !p.IsFinite() {
			continue
		}
		decay := float64(i + 1)
		sat := cfg.Saturation * math.Pow(cfg.SaturationDecay, decay)
		lum := cfg.Luminance * math.Pow(cfg.LuminanceDecay, decay)
		prims = append(prims, Primitive{
			Kind:   Ball,
			A:      p,
			B:      p,
			Radius: math.Sqrt(math.Max(0, c.Masses[i])) * cfg.BallRadius,
			Color:  palette.HSLToRGB(hue, sat, lum),
			Level:  i,
		})
	}
	return prims
}

func toVec(z complex128) Vec2 {
	return Vec2{X: real(z), Y: imag(z)}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
