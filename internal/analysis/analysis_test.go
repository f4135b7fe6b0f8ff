package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/physics"
	"github.com/LemoMew/FractalPendulum/internal/sim"
)

func coarseStep() sim.StepConfig {
	cfg := sim.DefaultStepConfig()
	cfg.Dt = 0.01
	cfg.H = 0.01
	return cfg
}

func TestLyapunovExponent(t *testing.T) {
	c := physics.DefaultConstants()
	ctx := context.Background()

	chaotic, err := LyapunovExponent(ctx, c, sim.DefaultInitialState(), coarseStep(), 1000, 1e-8)
	if err != nil {
		t.Fatal(err)
	}
	calm, err := LyapunovExponent(ctx, c, dynamo.State{0.05, 0, 0.02, 0, -0.02, 0}, coarseStep(), 1000, 1e-8)
	if err != nil {
		t.Fatal(err)
	}

	if chaotic < 0.5 {
		t.Errorf("chaotic start: λ = %v, expected clearly positive", chaotic)
	}
	if calm > 0.5 || calm >= chaotic {
		t.Errorf("small oscillation: λ = %v (chaotic %v)", calm, chaotic)
	}
}

func TestLyapunovExponentErrors(t *testing.T) {
	c := physics.DefaultConstants()
	ctx := context.Background()

	if _, err := LyapunovExponent(ctx, c, sim.DefaultInitialState(), coarseStep(), 0, 1e-8); err == nil {
		t.Error("expected error for zero frames")
	}
	if _, err := LyapunovExponent(ctx, c, dynamo.State{1}, coarseStep(), 10, 1e-8); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	bad := c
	bad.Masses[0] = -1
	if _, err := LyapunovExponent(ctx, bad, sim.DefaultInitialState(), coarseStep(), 10, 1e-8); !errors.Is(err, dynamo.ErrDivergence) {
		t.Errorf("expected divergence, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := LyapunovExponent(cancelled, c, sim.DefaultInitialState(), coarseStep(), 10, 1e-8); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 0.01
	data := make([]float64, 500)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*5*float64(i)*dt)
	}

	freq, power := DominantFrequency(data, dt)
	if math.Abs(freq-5) > 0.2 {
		t.Errorf("dominant frequency = %v, want ~5", freq)
	}
	if power <= 0 {
		t.Errorf("power = %v", power)
	}
}

func TestPowerSpectrumPadding(t *testing.T) {
	if got := len(PowerSpectrum(make([]float64, 300))); got != 256 {
		t.Errorf("spectrum length = %d, want 256", got)
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty input")
	}
}

func TestFFTImpulse(t *testing.T) {
	out := FFT([]float64{1, 0, 0, 0, 0, 0, 0, 0})
	for i, v := range out {
		if math.Abs(real(v)-1) > 1e-12 || math.Abs(imag(v)) > 1e-12 {
			t.Errorf("bin %d = %v, want 1", i, v)
		}
	}
}

func runPendulum(t *testing.T, x0 dynamo.State, frames int) *sim.Result {
	t.Helper()
	s, err := sim.New(physics.DefaultConstants(), x0, sim.WithStepConfig(coarseStep()))
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background(), frames)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestPhasePortrait(t *testing.T) {
	res := runPendulum(t, dynamo.State{0.3, 0, 0, 0, 0, 0}, 300)

	portrait := PhasePortrait(res, 0, 1)
	if portrait == nil || len(portrait.Points) != 301 {
		t.Fatalf("unexpected portrait: %+v", portrait)
	}
	if PhasePortrait(res, 0, 9) != nil {
		t.Error("expected nil for out-of-range index")
	}

	ascii := PhasePortraitToASCII(portrait, 40, 12)
	if lines := strings.Split(strings.TrimRight(ascii, "\n"), "\n"); len(lines) != 12 {
		t.Errorf("expected 12 rows, got %d", len(lines))
	}
	if !strings.Contains(ascii, "•") {
		t.Error("no points plotted")
	}
}

func TestPoincareSection(t *testing.T) {
	res := &sim.Result{States: []dynamo.State{
		{-0.2, 1, 0, 0, 0, 0},
		{0.2, 3, 0, 0, 0, 0},
		{0.1, -1, 0, 0, 0, 0},
		{-0.1, -1, 0, 0, 0, 0},
		// angle wrap, not a crossing
		{3.1, 0, 0, 0, 0, 0},
		{-3.1, 0, 0, 0, 0, 0},
		{3.1, 0, 0, 0, 0, 0},
	}}

	section := PoincareSectionFromResult(res, 0, 0, 1, 1)
	if len(section.Points) != 1 {
		t.Fatalf("expected 1 crossing, got %d", len(section.Points))
	}
	if math.Abs(section.Points[0].X-2) > 1e-12 {
		t.Errorf("interpolated ω1 = %v, want 2", section.Points[0].X)
	}
	if PoincareSectionToASCII(&PoincareSection{}, 10, 5) != "No crossings detected" {
		t.Error("expected empty-section message")
	}
}

func TestBifurcationDiagram(t *testing.T) {
	ctx := context.Background()
	x0 := dynamo.State{0.2, 0, 0, 0, 0, 0}

	points, err := BifurcationDiagram(ctx, physics.DefaultConstants(), "g", 5, 10, 3, x0, coarseStep(), 50, 400)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 || points[0].Param != 5 || points[2].Param != 10 {
		t.Fatalf("unexpected sweep: %+v", points)
	}
	for _, p := range points {
		if p.Diverged || len(p.Values) == 0 {
			t.Errorf("g=%v: diverged=%v values=%d", p.Param, p.Diverged, len(p.Values))
		}
	}
	if BifurcationToASCII(points, 30, 10) == "" {
		t.Error("empty plot")
	}

	if _, err := BifurcationDiagram(ctx, physics.DefaultConstants(), "damping", 0, 1, 2, x0, coarseStep(), 1, 1); err == nil {
		t.Error("expected error for unknown param")
	}
}
