package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/LemoMew/FractalPendulum/internal/fractal"
	"github.com/LemoMew/FractalPendulum/internal/palette"
	"github.com/LemoMew/FractalPendulum/internal/physics"
	"github.com/LemoMew/FractalPendulum/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameInterval   = time.Second / 60

	// statsWidth is the stats panel plus its border and padding.
	statsWidth = 52
	zoomFactor = 1.25
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// param is one live-tunable value.
type param struct {
	name string
	get  func(*sim.Simulator) float64
	set  func(*sim.Simulator, float64) error
}

func constantParam(name string) param {
	return param{
		name: name,
		get: func(s *sim.Simulator) float64 {
			return physics.NewTriplePendulum(s.Constants()).GetParams()[name]
		},
		set: func(s *sim.Simulator, v float64) error {
			p := physics.NewTriplePendulum(s.Constants())
			if err := p.SetParam(name, v); err != nil {
				return err
			}
			s.SetConstants(p.Constants)
			return nil
		},
	}
}

func renderParam(name string, field func(*fractal.Config) *float64) param {
	return param{
		name: name,
		get: func(s *sim.Simulator) float64 {
			cfg := s.RenderConfig()
			return *field(&cfg)
		},
		set: func(s *sim.Simulator, v float64) error {
			cfg := s.RenderConfig()
			*field(&cfg) = v
			s.SetRenderConfig(cfg)
			return nil
		},
	}
}

func defaultParams() []param {
	return []param{
		constantParam("m1"),
		constantParam("m2"),
		constantParam("m3"),
		constantParam("l1"),
		constantParam("l2"),
		constantParam("l3"),
		constantParam("g"),
		{
			name: "dt",
			get:  func(s *sim.Simulator) float64 { return s.StepConfig().Dt },
			set: func(s *sim.Simulator, v float64) error {
				cfg := s.StepConfig()
				cfg.Dt = v
				return s.SetStepConfig(cfg)
			},
		},
		renderParam("zoom", func(c *fractal.Config) *float64 { return &c.Zoom }),
		renderParam("width_decay", func(c *fractal.Config) *float64 { return &c.WidthDecay }),
		renderParam("lum_decay", func(c *fractal.Config) *float64 { return &c.LuminanceDecay }),
		renderParam("sat_decay", func(c *fractal.Config) *float64 { return &c.SaturationDecay }),
	}
}

// Model drives a simulator from a 60 Hz tick and draws each frame into a
// Braille canvas.
type Model struct {
	sim           *sim.Simulator
	logger        *zap.Logger
	width, height int
	canvas        *Canvas
	frame         *sim.Frame
	frameTime     time.Duration
	params        []param
	initialParams []float64
	selected      int
	energyHistory []float64
	frameTimes    []float64
	showHelp      bool
	title         string
}

// NewModel wraps s. A nil logger discards output.
func NewModel(s *sim.Simulator, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	params := defaultParams()
	initial := make([]float64, len(params))
	for i, p := range params {
		initial[i] = p.get(s)
	}
	return Model{
		sim:           s,
		logger:        logger,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		params:        params,
		initialParams: initial,
		energyHistory: make([]float64, 0, historyCapacity),
		frameTimes:    make([]float64, 0, historyCapacity),
		title:         "triple pendulum fractal",
	}
}

// WithTitle sets the header text.
func (m Model) WithTitle(title string) Model {
	m.title = title
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and advances the simulation on each tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.sim.SetPaused(!m.sim.Paused())
		case "r":
			m.sim.Reset()
			m.energyHistory = m.energyHistory[:0]
		case "tab":
			m.cycleParam(1)
		case "shift+tab":
			m.cycleParam(-1)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "[":
			m.adjustDepth(-1)
		case "]":
			m.adjustDepth(1)
		case "+", "=":
			m.adjustZoom(zoomFactor)
		case "-", "_":
			m.adjustZoom(1 / zoomFactor)
		case "c":
			cfg := m.sim.RenderConfig()
			if cfg.Palette.Mode == palette.Dynamic {
				cfg.Palette.Mode = palette.Fixed
			} else {
				cfg.Palette.Mode = palette.Dynamic
			}
			m.sim.SetRenderConfig(cfg)
		case "b":
			cfg := m.sim.RenderConfig()
			cfg.ShowBalls = !cfg.ShowBalls
			m.sim.SetRenderConfig(cfg)
		case "x":
			m.sim.RandomizeState()
			m.energyHistory = m.energyHistory[:0]
		case "X":
			m.sim.RandomizeConstants()
			m.energyHistory = m.energyHistory[:0]
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width-statsWidth-4, msg.Height-4)
	case TickMsg:
		m.advance()
		return m, tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	if w < 20 {
		w = 20
	}
	if h < 8 {
		h = 8
	}
	if w == m.width && h == m.height {
		return
	}
	m.width, m.height = w, h
	m.canvas = NewCanvas(w, h)
}

// advance runs one simulator frame and redraws the canvas.
func (m *Model) advance() {
	start := time.Now()
	halted := m.sim.Halted()
	m.frame = m.sim.Frame(m.canvas.Bounds())
	m.frameTime = time.Since(start)

	if m.frame.Halted && !halted {
		m.logger.Info("live view paused", zap.String("reason", m.frame.Message))
	}
	if !m.frame.Paused && !m.frame.Halted {
		m.energyHistory = appendCapped(m.energyHistory, m.frame.Energy.Total)
	}
	m.frameTimes = appendCapped(m.frameTimes, float64(m.frameTime.Microseconds())/1000)

	m.canvas.Clear()
	m.canvas.DrawPrimitives(m.frame.Primitives)
}

func appendCapped(values []float64, v float64) []float64 {
	values = append(values, v)
	if len(values) > historyCapacity {
		values = values[1:]
	}
	return values
}

func (m *Model) cycleParam(dir int) {
	if len(m.params) == 0 {
		return
	}
	m.selected = (m.selected + dir + len(m.params)) % len(m.params)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.params) == 0 {
		return
	}
	p := m.params[m.selected]
	val := p.get(m.sim)
	newVal := val * factor
	if val == 0 {
		newVal = factor - 1
	}
	if err := p.set(m.sim, newVal); err != nil {
		m.logger.Warn("parameter rejected", zap.String("param", p.name), zap.Float64("value", newVal), zap.Error(err))
		return
	}
	m.logger.Debug("parameter changed", zap.String("param", p.name), zap.Float64("value", newVal))
}

func (m *Model) adjustDepth(delta int) {
	cfg := m.sim.RenderConfig()
	cfg.Depth += delta
	if cfg.Depth < 0 {
		cfg.Depth = 0
	}
	if cfg.Depth > fractal.MaxDepth {
		cfg.Depth = fractal.MaxDepth
	}
	m.sim.SetRenderConfig(cfg)
}

func (m *Model) adjustZoom(factor float64) {
	cfg := m.sim.RenderConfig()
	cfg.Zoom *= factor
	m.sim.SetRenderConfig(cfg)
}

// View renders the canvas next to the stats panel.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), "#00ffff", "#ff00ff") + "\n\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	if f := m.frame; f != nil {
		cfg := m.sim.RenderConfig()
		stats := m.sim.SolverStats()
		s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", f.Time)) + "\n")
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.6f", f.Energy.Total)) + "\n")
		s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%+.2e", f.Drift)) + "\n")
		s.WriteString(labelStyle.Render("Lines") + valueStyle.Render(fmt.Sprintf("%d / %d", f.Visible, f.Segments)) + "\n")
		s.WriteString(labelStyle.Render("Depth") + valueStyle.Render(fmt.Sprintf("%d", cfg.Depth)) + "\n")
		s.WriteString(labelStyle.Render("Hue") + valueStyle.Render(cfg.Palette.Mode.String()) + "\n")
		s.WriteString(labelStyle.Render("Substeps") + valueStyle.Render(fmt.Sprintf("%d ok, %d rejected", stats.Accepted, stats.Rejected)) + "\n")
		s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%.2fms", float64(m.frameTime.Microseconds())/1000)) + " " + SparklineChart(m.frameTimes, 16) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	for i, p := range m.params {
		val, initial := p.get(m.sim), m.initialParams[i]
		ratio := 0.5
		if initial != 0 {
			ratio = val / (2 * initial)
		}
		line := fmt.Sprintf("%-11s %s %.4g", p.name, ProgressBar(ratio, 10), val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Reset Q:Quit ?:Help\nTab/↑↓:Tune [ ]:Depth +/-:Zoom"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

func (m Model) status() string {
	switch {
	case m.sim.Halted():
		return StatusHalted.Render("HALTED: " + m.sim.Message())
	case m.sim.Paused():
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [ ]      - Fractal depth            ║
║  + -      - Zoom in/out              ║
║  C        - Fixed/dynamic hues       ║
║  B        - Toggle balls             ║
║  X        - Randomize state          ║
║  Shift+X  - Randomize constants      ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts the live view on the alternate screen and blocks until quit.
func Run(s *sim.Simulator, logger *zap.Logger) error {
	_, err := tea.NewProgram(NewModel(s, logger), tea.WithAltScreen()).Run()
	return err
}
