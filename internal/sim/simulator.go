package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/fractal"
	"github.com/LemoMew/FractalPendulum/internal/integrators"
	"github.com/LemoMew/FractalPendulum/internal/metrics"
	"github.com/LemoMew/FractalPendulum/internal/physics"
)

// ErrHalted is returned by Step after a divergence until Reset or SetState.
var ErrHalted = errors.New("sim: simulation halted")

// haltMessage is shown to users while the simulation is halted.
const haltMessage = "numerical error, paused"

// DefaultInitialState is the state the pendulum starts from unless configured.
func DefaultInitialState() dynamo.State {
	return dynamo.State{-3.0, 0.5, -0.3, -1.0, 0.5, 1.0}
}

// Observer is notified after every committed step.
type Observer interface {
	OnStep(x dynamo.State, t float64)
}

// Frame is everything the front-end needs to draw one frame.
type Frame struct {
	Primitives []fractal.Primitive
	Segments   int
	Visible    int
	Energy     metrics.EnergySample
	Drift      float64 // total energy minus the energy at the last reset
	Time       float64
	State      dynamo.State
	Paused     bool
	Halted     bool
	Message    string
}

type Result struct {
	Times      []float64
	States     []dynamo.State
	Energies   []metrics.EnergySample
	Metrics    map[string]float64
	StepsTaken int
}

// Simulator owns the pendulum and produces one frame per call. It is not safe
// for concurrent use.
type Simulator struct {
	constants physics.Constants
	initial   dynamo.State
	state     dynamo.State
	step      StepConfig
	render    fractal.Config

	solver    *Solver
	drift     *metrics.EnergyDrift
	metrics   []dynamo.Metric
	observers []Observer

	logger *zap.Logger
	rng    *rand.Rand

	time    float64
	paused  bool
	halted  bool
	message string
}

type Option func(*Simulator)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.rng = rand.New(rand.NewSource(seed)) }
}

func WithStepConfig(cfg StepConfig) Option {
	return func(s *Simulator) { s.step = cfg }
}

func WithRenderConfig(cfg fractal.Config) Option {
	return func(s *Simulator) { s.render = cfg }
}

// New creates a simulator starting at x0, which is also the reset target.
func New(c physics.Constants, x0 dynamo.State, opts ...Option) (*Simulator, error) {
	if len(x0) != physics.StateDim {
		return nil, fmt.Errorf("%w: initial state has %d values, want %d", dynamo.ErrDimensionMismatch, len(x0), physics.StateDim)
	}

	s := &Simulator{
		constants: c,
		initial:   x0.Clone(),
		state:     x0.Clone(),
		step:      DefaultStepConfig(),
		render:    fractal.DefaultConfig(),
		solver:    NewSolver(),
		drift:     metrics.NewEnergyDrift(c),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if err := s.step.Validate(); err != nil {
		return nil, err
	}

	s.metrics = append(s.metrics, s.drift)
	s.observe()
	return s, nil
}

func (s *Simulator) AddMetric(m dynamo.Metric) {
	m.Reset()
	m.Observe(s.state, s.time)
	s.metrics = append(s.metrics, m)
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Frame advances one step unless paused or halted, then measures energy and
// rebuilds the fractal for viewport.
func (s *Simulator) Frame(viewport fractal.Rect) *Frame {
	if !s.paused && !s.halted {
		_ = s.Step()
	}

	out := fractal.Generate(s.state, s.constants, s.render, viewport, fractal.ViewTransform(viewport, s.render.Zoom))
	return &Frame{
		Primitives: out.Primitives,
		Segments:   out.Segments,
		Visible:    out.Visible,
		Energy:     metrics.Measure(s.constants, s.state),
		Drift:      s.drift.Current(),
		Time:       s.time,
		State:      s.state.Clone(),
		Paused:     s.paused,
		Halted:     s.halted,
		Message:    s.message,
	}
}

// Step advances the pendulum by one frame interval. On divergence the
// previous state is kept and the simulator halts.
func (s *Simulator) Step() error {
	if s.halted {
		return ErrHalted
	}

	next, err := s.solver.Step(s.constants, s.state, s.step)
	if err != nil {
		s.halted = true
		s.message = haltMessage
		s.logger.Warn("simulation halted",
			zap.Error(err),
			zap.Float64("time", s.time),
			zap.Float64s("state", s.state),
		)
		return err
	}

	s.state = next
	s.time += s.step.Dt
	s.observe()
	for _, o := range s.observers {
		o.OnStep(s.state, s.time)
	}
	return nil
}

// Run steps the simulator headlessly. It stops at the first divergence,
// returning the partial result alongside the error.
func (s *Simulator) Run(ctx context.Context, frames int) (*Result, error) {
	if frames < 0 {
		return nil, fmt.Errorf("frames must be non-negative, got %d", frames)
	}

	result := &Result{
		Times:    make([]float64, 0, frames+1),
		States:   make([]dynamo.State, 0, frames+1),
		Energies: make([]metrics.EnergySample, 0, frames+1),
		Metrics:  make(map[string]float64),
	}
	record := func() {
		result.Times = append(result.Times, s.time)
		result.States = append(result.States, s.state.Clone())
		result.Energies = append(result.Energies, metrics.Measure(s.constants, s.state))
	}
	collect := func() {
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}

	record()
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			collect()
			return result, ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			collect()
			return result, err
		}
		result.StepsTaken++
		record()
	}

	collect()
	s.logger.Debug("run finished",
		zap.Int("steps", result.StepsTaken),
		zap.Float64("time", s.time),
		zap.Float64("energy_drift", s.drift.Value()),
	)
	return result, nil
}

// Reset restores the initial state and clears the halt.
func (s *Simulator) Reset() {
	s.state = s.initial.Clone()
	s.time = 0
	s.halted = false
	s.message = ""
	s.resetMetrics()
}

// SetState replaces the current state and clears the halt. The reset target
// is unchanged.
func (s *Simulator) SetState(x dynamo.State) error {
	if len(x) != physics.StateDim {
		return fmt.Errorf("%w: got %d values, want %d", dynamo.ErrDimensionMismatch, len(x), physics.StateDim)
	}
	s.state = x.Clone()
	s.halted = false
	s.message = ""
	s.resetMetrics()
	return nil
}

// SetInitialState changes the reset target without touching the current state.
func (s *Simulator) SetInitialState(x dynamo.State) error {
	if len(x) != physics.StateDim {
		return fmt.Errorf("%w: got %d values, want %d", dynamo.ErrDimensionMismatch, len(x), physics.StateDim)
	}
	s.initial = x.Clone()
	return nil
}

func (s *Simulator) SetConstants(c physics.Constants) {
	s.constants = c
	s.drift.SetConstants(c)
	s.drift.Observe(s.state, s.time)
}

func (s *Simulator) SetStepConfig(cfg StepConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.step = cfg
	return nil
}

func (s *Simulator) SetRenderConfig(cfg fractal.Config) { s.render = cfg }
func (s *Simulator) SetPaused(p bool)                   { s.paused = p }

// RandomizeState draws every angle and angular velocity uniformly from [-π, π].
func (s *Simulator) RandomizeState() {
	x := make(dynamo.State, physics.StateDim)
	for i := range x {
		x[i] = (s.rng.Float64()*2 - 1) * math.Pi
	}
	_ = s.SetState(x)
}

// RandomizeConstants draws masses from [0.1, 10) and lengths from [0.5, 3].
func (s *Simulator) RandomizeConstants() {
	c := s.constants
	for i := range c.Masses {
		c.Masses[i] = 0.1 + s.rng.Float64()*9.9
		c.Lengths[i] = 0.5 + s.rng.Float64()*2.5
	}
	s.SetConstants(c)
}

func (s *Simulator) Constants() physics.Constants   { return s.constants }
func (s *Simulator) State() dynamo.State            { return s.state.Clone() }
func (s *Simulator) StepConfig() StepConfig         { return s.step }
func (s *Simulator) RenderConfig() fractal.Config   { return s.render }
func (s *Simulator) Time() float64                  { return s.time }
func (s *Simulator) Paused() bool                   { return s.paused }
func (s *Simulator) Halted() bool                   { return s.halted }
func (s *Simulator) Message() string                { return s.message }
func (s *Simulator) MaxEnergyDrift() float64        { return s.drift.Value() }
func (s *Simulator) Energy() metrics.EnergySample   { return metrics.Measure(s.constants, s.state) }
func (s *Simulator) SolverStats() integrators.Stats { return s.solver.Stats() }

func (s *Simulator) observe() {
	for _, m := range s.metrics {
		m.Observe(s.state, s.time)
	}
}

func (s *Simulator) resetMetrics() {
	for _, m := range s.metrics {
		m.Reset()
	}
	s.observe()
}
