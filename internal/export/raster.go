package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/LemoMew/FractalPendulum/internal/fractal"
)

const ballSides = 32

type Options struct {
	Width       int
	Height      int
	Background  color.RGBA
	Supersample int // render at this multiple and scale down; <= 1 disables
}

func DefaultOptions() Options {
	return Options{
		Width:       1280,
		Height:      720,
		Background:  color.RGBA{A: 0xff},
		Supersample: 2,
	}
}

// Viewport is the screen rectangle primitives should be generated for.
func (o Options) Viewport() fractal.Rect {
	return fractal.NewRect(0, 0, float64(o.Width), float64(o.Height))
}

// Rasterize paints primitives in order with antialiased coverage.
func Rasterize(prims []fractal.Primitive, opts Options) *image.RGBA {
	scale := 1
	if opts.Supersample > 1 {
		scale = opts.Supersample
	}

	w, h := opts.Width*scale, opts.Height*scale
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	p := painter{dst: img, scale: float64(scale), z: vector.NewRasterizer(0, 0)}
	for _, prim := range prims {
		switch prim.Kind {
		case fractal.Segment:
			p.segment(prim)
		case fractal.Ball:
			p.ball(prim)
		}
	}

	if scale == 1 {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out
}

type painter struct {
	dst   *image.RGBA
	scale float64
	z     *vector.Rasterizer
}

func (p *painter) segment(prim fractal.Primitive) {
	if prim.Width <= 0 {
		return
	}
	ax, ay := prim.A.X*p.scale, prim.A.Y*p.scale
	bx, by := prim.B.X*p.scale, prim.B.Y*p.scale
	half := prim.Width * p.scale / 2

	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*half, dx/length*half

	p.fill(prim.Color, [][2]float64{
		{ax + nx, ay + ny},
		{bx + nx, by + ny},
		{bx - nx, by - ny},
		{ax - nx, ay - ny},
	})
}

func (p *painter) ball(prim fractal.Primitive) {
	r := prim.Radius * p.scale
	if r <= 0 {
		return
	}
	cx, cy := prim.A.X*p.scale, prim.A.Y*p.scale

	pts := make([][2]float64, ballSides)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / ballSides
		pts[i] = [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	p.fill(prim.Color, pts)
}

// fill rasterizes the polygon inside its own bounding box so each shape only
// touches the pixels it covers.
func (p *painter) fill(c color.RGBA, pts [][2]float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range pts {
		minX, maxX = math.Min(minX, pt[0]), math.Max(maxX, pt[0])
		minY, maxY = math.Min(minY, pt[1]), math.Max(maxY, pt[1])
	}
	if math.IsNaN(minX) || math.IsNaN(minY) || math.IsInf(maxX-minX, 0) || math.IsInf(maxY-minY, 0) {
		return
	}

	r := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
	r = r.Intersect(p.dst.Bounds())
	if r.Empty() {
		return
	}

	p.z.Reset(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	p.z.MoveTo(float32(pts[0][0]-ox), float32(pts[0][1]-oy))
	for _, pt := range pts[1:] {
		p.z.LineTo(float32(pt[0]-ox), float32(pt[1]-oy))
	}
	p.z.ClosePath()
	p.z.Draw(p.dst, r, image.NewUniform(c), image.Point{})
}

// Format is an output file format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", ext)
	}
}

// Encode writes primitives in the given format.
func Encode(w io.Writer, format Format, prims []fractal.Primitive, opts Options) error {
	switch format {
	case FormatSVG:
		_, err := io.WriteString(w, FrameToSVG(prims, opts.Width, opts.Height, opts.Background))
		return err
	case FormatPNG:
		return png.Encode(w, Rasterize(prims, opts))
	case FormatWebP:
		return nativewebp.Encode(w, Rasterize(prims, opts), nil)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteFile encodes primitives into path, choosing the format by extension.
func WriteFile(path string, prims []fractal.Primitive, opts Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, format, prims, opts); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
