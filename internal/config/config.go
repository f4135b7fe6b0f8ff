package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/fractal"
	"github.com/LemoMew/FractalPendulum/internal/physics"
	"github.com/LemoMew/FractalPendulum/internal/sim"
)

const (
	DefaultServiceName = "fractalpendulum"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultDataDir     = ".fractalpendulum"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Pendulum    PendulumConfig `yaml:"pendulum"`
	Integration sim.StepConfig `yaml:"integration"`
	Render      fractal.Config `yaml:"render"`
	Logger      LoggerConfig   `yaml:"logger"`
	DataDir     string         `yaml:"data_dir"`
	Seed        int64          `yaml:"seed"`
}

type PendulumConfig struct {
	physics.Constants `yaml:",inline"`
	InitialState      [physics.StateDim]float64 `yaml:"initial_state"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string      `yaml:"level"`
	Format      string      `yaml:"format"` // console or json
	AddSource   bool        `yaml:"add_source"`
	ServiceName string      `yaml:"service_name"`
	LogFile     string      `yaml:"log_file"`
	MaxSize     int         `yaml:"max_size"` // megabytes
	MaxBackups  int         `yaml:"max_backups"`
	MaxAge      int         `yaml:"max_age"` // days
	Compress    bool        `yaml:"compress"`
	Colors      ColorConfig `yaml:"colors"`
}

// ColorConfig names the console color of each level.
type ColorConfig struct {
	Debug string `yaml:"debug"`
	Info  string `yaml:"info"`
	Warn  string `yaml:"warn"`
	Error string `yaml:"error"`
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:       DefaultLogLevel,
		Format:      DefaultLogFormat,
		ServiceName: DefaultServiceName,
		MaxSize:     10,
		MaxBackups:  3,
		MaxAge:      28,
		Colors: ColorConfig{
			Debug: "cyan",
			Info:  "green",
			Warn:  "yellow",
			Error: "red",
		},
	}
}

func DefaultConfig() *Config {
	var initial [physics.StateDim]float64
	copy(initial[:], sim.DefaultInitialState())

	return &Config{
		Pendulum: PendulumConfig{
			Constants:    physics.DefaultConstants(),
			InitialState: initial,
		},
		Integration: sim.DefaultStepConfig(),
		Render:      fractal.DefaultConfig(),
		Logger:      DefaultLoggerConfig(),
		DataDir:     DefaultDataDir,
	}
}

// Load reads a YAML file on top of the defaults, so missing fields keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) InitialState() dynamo.State {
	x := make(dynamo.State, physics.StateDim)
	copy(x, c.Pendulum.InitialState[:])
	return x
}

func (c *Config) Validate() error {
	if err := c.Pendulum.Constants.Validate(); err != nil {
		return fmt.Errorf("%w: pendulum: %v", ErrInvalidConfig, err)
	}
	if !c.InitialState().IsValid() {
		return fmt.Errorf("%w: pendulum: initial state is not finite", ErrInvalidConfig)
	}
	if err := c.Integration.Validate(); err != nil {
		return fmt.Errorf("%w: integration: %v", ErrInvalidConfig, err)
	}
	if c.Render.Depth < 0 || c.Render.Depth > fractal.MaxDepth {
		return fmt.Errorf("%w: render: depth must be in [0, %d], got %d", ErrInvalidConfig, fractal.MaxDepth, c.Render.Depth)
	}
	if !(c.Render.Zoom > 0) {
		return fmt.Errorf("%w: render: zoom must be positive, got %g", ErrInvalidConfig, c.Render.Zoom)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logger: unknown format %q", ErrInvalidConfig, c.Logger.Format)
	}
	return nil
}

// Simulator builds a simulator from the configuration.
func (c *Config) Simulator(opts ...sim.Option) (*sim.Simulator, error) {
	opts = append([]sim.Option{
		sim.WithStepConfig(c.Integration),
		sim.WithRenderConfig(c.Render),
	}, opts...)
	if c.Seed != 0 {
		opts = append(opts, sim.WithSeed(c.Seed))
	}
	return sim.New(c.Pendulum.Constants, c.InitialState(), opts...)
}
