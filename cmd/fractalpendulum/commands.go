package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LemoMew/FractalPendulum/internal/analysis"
	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/export"
	"github.com/LemoMew/FractalPendulum/internal/fractal"
	"github.com/LemoMew/FractalPendulum/internal/observability"
	"github.com/LemoMew/FractalPendulum/internal/sim"
	"github.com/LemoMew/FractalPendulum/internal/storage"
)

var stateLabels = [...]string{"theta1", "omega1", "theta2", "omega2", "theta3", "omega3"}

// frameCount reads the per-command --frames flag.
func frameCount(cmd *cobra.Command) int {
	n, err := cmd.Flags().GetInt("frames")
	if err != nil {
		return 0
	}
	return n
}

func newSimOptions(logger *zap.Logger) []sim.Option {
	return []sim.Option{sim.WithLogger(logger)}
}

// runFrames builds a simulator from cfg and steps it. A divergence is not a
// command failure: the partial result is returned with the error.
func runFrames(cmd *cobra.Command, n int) (*sim.Simulator, *sim.Result, error) {
	s, err := cfg.Simulator(newSimOptions(observability.GetLogger())...)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.Run(cmd.Context(), n)
	if err != nil && !errors.Is(err, dynamo.ErrDivergence) {
		return nil, nil, err
	}
	return s, result, err
}

func energyTotals(result *sim.Result) []float64 {
	totals := make([]float64, len(result.Energies))
	for i, e := range result.Energies {
		totals[i] = e.Total
	}
	return totals
}

func runHeadless(cmd *cobra.Command, args []string) error {
	frames := frameCount(cmd)
	fmt.Printf("running %d frames (dt=%g)...\n", frames, cfg.Integration.Dt)
	start := time.Now()
	s, result, runErr := runFrames(cmd, frames)
	if s == nil {
		return runErr
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d\n", result.StepsTaken)
	fmt.Printf("time: %.4fs\n", s.Time())
	if runErr != nil {
		fmt.Printf("stopped early: %v\n", runErr)
	}

	fmt.Println("\nfinal state:")
	for i, v := range s.State() {
		fmt.Printf("  %-7s %12.6f\n", stateLabels[i], v)
	}
	e := s.Energy()
	fmt.Printf("\nenergy: %.9f (kinetic %.6f, potential %.6f)\n", e.Total, e.Kinetic, e.Potential)
	fmt.Printf("max energy drift: %.3e\n", s.MaxEnergyDrift())
	stats := s.SolverStats()
	fmt.Printf("last frame: %d accepted, %d rejected sub-steps, %d evaluations\n", stats.Accepted, stats.Rejected, stats.Evals)

	if totals := energyTotals(result); len(totals) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(totals,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("total energy"),
		))
	}

	if ensemble > 0 {
		ens := sim.NewEnsemble(cfg.Pendulum.Constants, cfg.Integration, ensemble+1, cfg.Seed)
		results, err := ens.Run(cmd.Context(), cfg.InitialState(), frames)
		if err != nil && !errors.Is(err, dynamo.ErrDivergence) {
			return err
		}
		if spread := sim.Spread(results); len(spread) > 1 {
			fmt.Println()
			fmt.Println(asciigraph.Plot(spread,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("ensemble spread (%d members, perturbation %g)", ensemble, ens.Perturbation)),
			))
			fmt.Printf("final spread: %.3e\n", spread[len(spread)-1])
		}
	}
	return nil
}

func renderFrame(cmd *cobra.Command, args []string) error {
	frames := frameCount(cmd)
	format, err := export.FormatFromPath(outPath)
	if err != nil {
		return err
	}
	s, _, runErr := runFrames(cmd, frames)
	if s == nil {
		return runErr
	}
	if runErr != nil {
		fmt.Printf("stopped early: %v\n", runErr)
	}

	opts := export.DefaultOptions()
	opts.Width, opts.Height, opts.Supersample = imgWidth, imgHeight, supersample

	// Render the state reached above without stepping again.
	s.SetPaused(true)
	frame := s.Frame(opts.Viewport())
	if err := export.WriteFile(outPath, frame.Primitives, opts); err != nil {
		return err
	}

	observability.GetLogger().Info("frame exported",
		zap.String("path", outPath),
		zap.String("format", string(format)),
		zap.Int("segments", frame.Segments),
		zap.Int("visible", frame.Visible),
	)
	fmt.Printf("wrote %s (%d of %d segments visible, t=%.3fs)\n", outPath, frame.Visible, frame.Segments, frame.Time)
	return nil
}

func recordRun(cmd *cobra.Command, args []string) error {
	frames := frameCount(cmd)
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("recording %d frames...\n", frames)
	start := time.Now()
	_, result, runErr := runFrames(cmd, frames)
	if result == nil {
		return runErr
	}

	info := storage.RunInfo{
		Name:      runName,
		Seed:      cfg.Seed,
		Constants: cfg.Pendulum.Constants,
		Step:      cfg.Integration,
	}
	runID, err := st.Save(info, result, runErr)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.StepsTaken)
	if runErr != nil {
		fmt.Printf("diverged: %v\n", runErr)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6e\n", name, val)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(cfg.DataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tFRAMES\tDURATION\tDT\tDRIFT\tSTATUS")
	for _, run := range runs {
		status := "ok"
		if run.Diverged != "" {
			status = "diverged"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3fs\t%gs\t%.2e\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Duration,
			run.Dt,
			run.Metrics["energy_drift"],
			status,
		)
	}
	return w.Flush()
}

// loadRun reads the named run, or the latest one when no id is given.
func loadRun(args []string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(cfg.DataDir)
	var (
		meta *storage.RunMetadata
		err  error
	)
	if len(args) > 0 {
		meta, err = st.Load(args[0])
	} else {
		meta, err = st.Latest()
	}
	if err != nil {
		return nil, nil, err
	}
	result, err := st.LoadResult(meta.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(result.States) == 0 {
		return nil, nil, fmt.Errorf("run %s: no data", meta.ID)
	}
	return meta, result, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args)
	if err != nil {
		return err
	}
	if xAxis < 0 || yAxis < 0 || xAxis >= len(stateLabels) || yAxis >= len(stateLabels) {
		return fmt.Errorf("axes must be state indices in [0, %d]", len(stateLabels)-1)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(result.States))

	for idx, label := range stateLabels {
		data := make([]float64, len(result.States))
		for i, x := range result.States {
			data[i] = x[idx]
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(label+" vs time"),
		))
		fmt.Println()
	}

	portrait := analysis.PhasePortrait(result, xAxis, yAxis)
	fmt.Printf("phase space: %s vs %s\n\n", stateLabels[yAxis], stateLabels[xAxis])
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 20))

	if svgPath != "" {
		svg := export.TrajectoryToSVG(portrait.Points, 800, 600, "#00ccff")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	theta1 := make([]float64, len(result.States))
	for i, x := range result.States {
		theta1[i] = x[0]
	}

	if ps := analysis.PowerSpectrum(theta1); len(ps) >= 8 {
		fmt.Println(asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (theta1)"),
		))
		fmt.Println()
	}

	freq, power := analysis.DominantFrequency(theta1, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz (magnitude %.3g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	fmt.Println("\npoincaré section (omega1 vs omega2 when theta1 rises through 0):")
	fmt.Println(analysis.PoincareSectionToASCII(analysis.PoincareSectionFromResult(result, 0, 0, 1, 3), 60, 18))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args)
	if err != nil {
		return err
	}
	info := storage.RunInfo{Name: meta.Name, Seed: meta.Seed, Constants: meta.Constants()}
	info.Step.Dt = meta.Dt
	return storage.ExportJSON(os.Stdout, info, result)
}

func chaos(cmd *cobra.Command, args []string) error {
	frames := frameCount(cmd)
	ctx := cmd.Context()
	if sweep != "" {
		fmt.Printf("bifurcation sweep of %s in [%g, %g] (%d points)...\n", sweep, sweepMin, sweepMax, sweepSteps)
		points, err := analysis.BifurcationDiagram(ctx, cfg.Pendulum.Constants, sweep, sweepMin, sweepMax, sweepSteps,
			cfg.InitialState(), cfg.Integration, transient, frames)
		if err != nil {
			return err
		}
		diverged := 0
		for _, p := range points {
			if p.Diverged {
				diverged++
			}
		}
		fmt.Println(analysis.BifurcationToASCII(points, 70, 20))
		fmt.Printf("omega1 at theta1 zero crossings; %d of %d runs diverged\n", diverged, len(points))
		return nil
	}

	fmt.Printf("estimating lyapunov exponent over %d frames...\n", frames)
	start := time.Now()
	lambda, err := analysis.LyapunovExponent(ctx, cfg.Pendulum.Constants, cfg.InitialState(), cfg.Integration, frames, d0)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("largest lyapunov exponent: %.4f 1/s\n", lambda)
	if lambda > 0.1 {
		fmt.Println("the motion is chaotic")
	} else {
		fmt.Println("no clear sign of chaos")
	}
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	const n = 200

	fmt.Printf("benchmarking (%d frames each)\n\n", n)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSOLVER/FRAME\tSUBSTEPS")
	for _, d := range []float64{0.001, 0.01, 0.1} {
		step := cfg.Integration
		step.Dt = d
		solver := sim.NewSolver()
		x := cfg.InitialState()
		substeps := 0

		start := time.Now()
		for i := 0; i < n; i++ {
			next, err := solver.Step(cfg.Pendulum.Constants, x, step)
			if err != nil {
				return err
			}
			x = next
			st := solver.Stats()
			substeps += st.Accepted + st.Rejected
		}
		fmt.Fprintf(w, "%g\t%v\t%.1f\n", d, time.Since(start)/n, float64(substeps)/n)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	viewport := export.DefaultOptions().Viewport()
	x := cfg.InitialState()
	fmt.Fprintln(w, "DEPTH\tSEGMENTS\tGENERATE")
	for _, d := range []int{8, 12, 16} {
		render := cfg.Render
		render.Depth = d
		toScreen := fractal.ViewTransform(viewport, render.Zoom)

		start := time.Now()
		var out fractal.Output
		for i := 0; i < 10; i++ {
			out = fractal.Generate(x, cfg.Pendulum.Constants, render, viewport, toScreen)
		}
		fmt.Fprintf(w, "%d\t%d\t%v\n", d, out.Segments, time.Since(start)/10)
	}
	return w.Flush()
}
