package fractal_test

import (
	"image/color"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/fractal"
	"github.com/LemoMew/FractalPendulum/internal/palette"
	"github.com/LemoMew/FractalPendulum/internal/physics"
)

var _ = Describe("Generate", func() {
	var (
		cfg      fractal.Config
		consts   physics.Constants
		state    dynamo.State
		world    fractal.Rect
		identity fractal.Transform
	)

	BeforeEach(func() {
		cfg = fractal.DefaultConfig()
		consts = physics.DefaultConstants()
		state = dynamo.State{-3, 0.5, -0.3, -1, 0.5, 1}
		world = fractal.NewRect(-1e3, -1e3, 1e3, 1e3)
		identity = fractal.Transform{From: world, To: world}
	})

	Context("segment count", func() {
		DescribeTable("is 2^(d+1)-1 plus three balls",
			func(depth int) {
				cfg.Depth = depth
				out := fractal.Generate(state, consts, cfg, world, identity)
				want := 1<<(depth+1) - 1
				Expect(out.Segments).To(Equal(want))
				Expect(out.Visible).To(Equal(want))
				Expect(out.Primitives).To(HaveLen(want + 3))
			},
			Entry("depth 0", 0),
			Entry("depth 1", 1),
			Entry("depth 4", 4),
			Entry("depth 10", 10),
		)

		It("omits balls when disabled", func() {
			cfg.Depth = 3
			cfg.ShowBalls = false
			out := fractal.Generate(state, consts, cfg, world, identity)
			Expect(out.Primitives).To(HaveLen(15))
			for _, p := range out.Primitives {
				Expect(p.Kind).To(Equal(fractal.Segment))
			}
		})

		It("clamps depth", func() {
			cfg.Depth = -4
			out := fractal.Generate(state, consts, cfg, world, identity)
			Expect(out.Segments).To(Equal(1))
			Expect(fractal.SegmentCount(fractal.MaxDepth + 10)).To(Equal(fractal.SegmentCount(fractal.MaxDepth)))
		})
	})

	It("orders deepest level first and balls last", func() {
		cfg.Depth = 5
		out := fractal.Generate(state, consts, cfg, world, identity)
		prims := out.Primitives

		for _, p := range prims[len(prims)-3:] {
			Expect(p.Kind).To(Equal(fractal.Ball))
		}
		segs := prims[:len(prims)-3]
		Expect(segs[0].Level).To(Equal(5))
		Expect(segs[len(segs)-1].Level).To(Equal(0))
		for i := 1; i < len(segs); i++ {
			Expect(segs[i].Level).To(BeNumerically("<=", segs[i-1].Level))
		}
	})

	It("places the root link and the first ball from the state", func() {
		cfg.Depth = 0
		state = dynamo.State{0, 0, 0, 0, 0, 0}
		viewport := fractal.NewRect(0, 0, 800, 600)
		toScreen := fractal.ViewTransform(viewport, 0.1)

		out := fractal.Generate(state, consts, cfg, viewport, toScreen)
		Expect(out.Primitives).To(HaveLen(4))

		root := out.Primitives[0]
		Expect(root.Kind).To(Equal(fractal.Segment))
		Expect(root.A.X).To(BeNumerically("~", 400, 1e-9))
		Expect(root.A.Y).To(BeNumerically("~", 300, 1e-9))
		Expect(root.B.X).To(BeNumerically("~", 400, 1e-9))
		Expect(root.B.Y).To(BeNumerically("~", 360, 1e-9))
		Expect(root.Width).To(Equal(cfg.LineWidth))

		// balls are reversed: mass 3, mass 2, mass 1
		first := out.Primitives[3]
		Expect(first.Level).To(Equal(0))
		Expect(first.A).To(Equal(root.B))
		Expect(first.Radius).To(BeNumerically("~", 10, 1e-12))
		Expect(out.Primitives[1].Radius).To(BeNumerically("~", math.Sqrt(0.3)*10, 1e-12))
	})

	Context("clipping", func() {
		It("never changes the generated count", func() {
			cfg.Depth = 6
			far := fractal.NewRect(5e3, 5e3, 6e3, 6e3)
			out := fractal.Generate(state, consts, cfg, far, identity)
			Expect(out.Segments).To(Equal(127))
			Expect(out.Visible).To(Equal(0))
			Expect(out.Primitives).To(HaveLen(3))
		})

		It("keeps segments that touch the viewport edge", func() {
			cfg.Depth = 0
			state = dynamo.State{0, 0, 0, 0, 0, 0}
			edge := fractal.NewRect(-1, 1, 1, 2)
			out := fractal.Generate(state, consts, cfg, edge, identity)
			Expect(out.Visible).To(Equal(1))
		})
	})

	Context("visual attributes", func() {
		It("decays width per level", func() {
			cfg.Depth = 3
			cfg.ShowBalls = false
			cfg.WidthDecay = 0
			out := fractal.Generate(state, consts, cfg, world, identity)
			for _, p := range out.Primitives {
				if p.Level == 0 {
					Expect(p.Width).To(Equal(cfg.LineWidth))
				} else {
					Expect(p.Width).To(BeZero())
				}
			}
		})

		It("paints every segment with the fixed hue", func() {
			cfg.Depth = 4
			cfg.Palette = palette.Settings{Mode: palette.Fixed, Hue1: 0, Hue2: 0}
			cfg.Luminance = 0.5
			cfg.LuminanceDecay = 1
			cfg.SaturationDecay = 1
			out := fractal.Generate(state, consts, cfg, world, identity)
			for _, p := range out.Primitives {
				Expect(p.Color).To(Equal(color.RGBA{R: 255, A: 255}))
			}
		})
	})

	Context("degenerate input", func() {
		It("stays finite with vanishing length ratios", func() {
			cfg.Depth = 8
			consts.Lengths = [3]float64{1, 1e-12, 1e-12}
			out := fractal.Generate(state, consts, cfg, world, identity)
			Expect(out.Visible).To(Equal(out.Segments))
			for _, p := range out.Primitives {
				Expect(p.A.IsFinite()).To(BeTrue())
				Expect(p.B.IsFinite()).To(BeTrue())
			}
		})

		It("drops non-finite coordinates", func() {
			cfg.Depth = 4
			state[0] = math.NaN()
			out := fractal.Generate(state, consts, cfg, world, identity)
			Expect(out.Segments).To(Equal(31))
			Expect(out.Visible).To(Equal(0))
			Expect(out.Primitives).To(BeEmpty())
		})

		It("collapses non-finite ratios", func() {
			cfg.Depth = 2
			consts.Lengths[0] = 0
			out := fractal.Generate(state, consts, cfg, world, identity)
			for _, p := range out.Primitives {
				Expect(p.A.IsFinite()).To(BeTrue())
			}
		})

		It("returns no primitives for a short state", func() {
			out := fractal.Generate(dynamo.State{1, 2}, consts, cfg, world, identity)
			Expect(out.Primitives).To(BeEmpty())
			Expect(out.Segments).To(Equal(fractal.SegmentCount(cfg.Depth)))
		})
	})
})

var _ = Describe("ViewTransform", func() {
	viewport := fractal.NewRect(0, 0, 800, 600)

	It("maps the origin to the viewport center", func() {
		p := fractal.ViewTransform(viewport, 0.1).Apply(fractal.Vec2{})
		Expect(p.X).To(BeNumerically("~", 400, 1e-9))
		Expect(p.Y).To(BeNumerically("~", 300, 1e-9))
	})

	It("scales with zoom", func() {
		a := fractal.ViewTransform(viewport, 0.1).Scale()
		b := fractal.ViewTransform(viewport, 0.2).Scale()
		Expect(b).To(BeNumerically("~", 2*a, 1e-9))
		Expect(a).To(BeNumerically("~", 60, 1e-9))
	})

	It("leaves points unchanged when mapping a rect onto itself", func() {
		world := fractal.NewRect(-1e3, -1e3, 1e3, 1e3)
		tr := fractal.Transform{From: world, To: world}
		for _, p := range []fractal.Vec2{{X: 6e-17, Y: 1}, {X: -0.3, Y: 0.7}, {X: 999.5, Y: -1e3}} {
			Expect(tr.Apply(p)).To(Equal(p))
		}
	})

	It("falls back to unit zoom", func() {
		Expect(fractal.ViewTransform(viewport, 0).Scale()).To(BeNumerically("~", 600, 1e-9))
	})
})
