package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LemoMew/FractalPendulum/internal/config"
	"github.com/LemoMew/FractalPendulum/internal/observability"
	"github.com/LemoMew/FractalPendulum/internal/viz"
)

var (
	configFile string
	preset     string
	dataDir    string
	logLevel   string
	logFormat  string
	logFile    string
	seed       int64

	// Simulation overrides
	dt    float64
	depth int
	zoom  float64

	// Output
	outPath     string
	imgWidth    int
	imgHeight   int
	supersample int
	runName     string
	force       bool

	// Analysis
	xAxis      int
	yAxis      int
	svgPath    string
	ensemble   int
	d0         float64
	sweep      string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	transient  int

	// cfg is the resolved configuration, set before any command runs.
	cfg *config.Config
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fractalpendulum",
		Short: "triple pendulum fractal explorer",
		Long: "fractalpendulum simulates a Y-shaped triple pendulum and draws it as a\n" +
			"self-similar fractal whose shape follows the pendulum's angles.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) { observability.Sync() },
		RunE: func(cmd *cobra.Command, args []string) error {
			if preset != "" || configFile != "" {
				return runLive(cmd, args)
			}
			return viz.RunInteractive(observability.GetLogger())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a preset (see 'presets')")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format (console, json)")
	pf.StringVar(&logFile, "log-file", "", "also write JSON logs to this rotating file")
	pf.Int64Var(&seed, "seed", 0, "random seed for randomize actions (0 uses the clock)")
	pf.Float64Var(&dt, "dt", 0, "frame interval in seconds")
	pf.IntVar(&depth, "depth", 0, "fractal recursion depth")
	pf.Float64Var(&zoom, "zoom", 0, "view zoom")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the interactive terminal view",
		RunE:  runLive,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and print a summary",
		RunE:  runHeadless,
	}
	runCmd.Flags().Int("frames", 1000, "number of frames")
	runCmd.Flags().IntVar(&ensemble, "ensemble", 0, "also run this many perturbed copies and plot their spread")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "advance the pendulum and export one frame (.svg, .png, .webp)",
		RunE:  renderFrame,
	}
	renderCmd.Flags().Int("frames", 0, "frames to advance before rendering")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "fractal.png", "output file")
	renderCmd.Flags().IntVar(&imgWidth, "width", 1280, "image width")
	renderCmd.Flags().IntVar(&imgHeight, "height", 720, "image height")
	renderCmd.Flags().IntVar(&supersample, "supersample", 2, "raster supersampling factor")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "run headless and save the trajectory",
		RunE:  recordRun,
	}
	recordCmd.Flags().Int("frames", 1000, "number of frames")
	recordCmd.Flags().StringVar(&runName, "name", "", "run name")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for the phase plot x-axis")
	plotCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for the phase plot y-axis")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the phase trajectory as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis and Poincaré section of a recorded run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a recorded run as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}

	chaosCmd := &cobra.Command{
		Use:   "chaos",
		Short: "estimate the largest Lyapunov exponent or sweep a parameter",
		RunE:  chaos,
	}
	chaosCmd.Flags().Int("frames", 2000, "frames per estimate")
	chaosCmd.Flags().Float64Var(&d0, "d0", 1e-8, "initial separation")
	chaosCmd.Flags().StringVar(&sweep, "sweep", "", "parameter to sweep for a bifurcation diagram (m1..m3, l1..l3, g)")
	chaosCmd.Flags().Float64Var(&sweepMin, "min", 5, "sweep start")
	chaosCmd.Flags().Float64Var(&sweepMax, "max", 15, "sweep end")
	chaosCmd.Flags().IntVar(&sweepSteps, "steps", 40, "sweep points")
	chaosCmd.Flags().IntVar(&transient, "transient", 200, "frames discarded before recording")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the solver and the fractal generator",
		RunE:  bench,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", name, config.Presets[name].Description)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the resolved configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(liveCmd, runCmd, renderCmd, recordCmd, listCmd, plotCmd, analyzeCmd, exportCmd, chaosCmd, benchCmd, presetsCmd, initCmd)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("command failed", zap.Error(err))
		observability.Sync()
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// setup resolves the configuration and starts logging. Precedence is
// defaults, then preset, then config file, then explicit flags.
func setup(cmd *cobra.Command, _ []string) error {
	resolved, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg = resolved
	observability.InitializeLogger(cfg.Logger)
	observability.GetLogger().Debug("configuration resolved",
		zap.String("command", cmd.Name()),
		zap.String("preset", preset),
		zap.String("config", configFile),
	)
	return nil
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.DefaultConfig()
	if preset != "" {
		c = config.GetPreset(preset)
		if c == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		c = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || c.DataDir == "" {
		c.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		c.Logger.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Logger.Format = logFormat
	}
	if flags.Changed("log-file") {
		c.Logger.LogFile = logFile
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("dt") {
		c.Integration.Dt = dt
	}
	if flags.Changed("depth") {
		c.Render.Depth = depth
	}
	if flags.Changed("zoom") {
		c.Render.Zoom = zoom
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	logger := observability.GetLogger()
	s, err := cfg.Simulator(newSimOptions(logger)...)
	if err != nil {
		return err
	}
	start := time.Now()
	err = viz.Run(s, logger)
	logger.Info("live view closed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Float64("sim_time", s.Time()),
		zap.Float64("max_energy_drift", s.MaxEnergyDrift()),
	)
	return err
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "fractalpendulum.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
