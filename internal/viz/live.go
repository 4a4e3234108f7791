package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/flightsim/internal/metrics"
	"github.com/san-kum/flightsim/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 16
	historyCapacity = 600
	commandStep     = 0.05
	stepsPerUnit    = 20
	commandLimit    = 1.5
	minTick         = time.Second / 60
	metersPerDegree = 111_000.0
)

type TickMsg time.Time

// LiveConfig describes the flight the cockpit starts, and restarts, from.
type LiveConfig struct {
	Seed      int64
	StepDt    float64
	Command   sim.Command
	Options   []sim.Option
	Observers []metrics.Observer
	Theme     string
}

// Model is the live cockpit. Every tick advances the engine by one step
// under the current stick command.
type Model struct {
	cfg       LiveConfig
	eng       *sim.Engine
	cmd       sim.Command
	last      sim.StepResult
	stepped   bool
	err       error
	running   bool
	showHelp  bool
	theme     Theme
	canvas    *Canvas
	origin    sim.State
	track     []Point
	altitudes []float64
	airspeeds []float64
}

func NewModel(cfg LiveConfig) (Model, error) {
	if !(cfg.StepDt > 0) {
		cfg.StepDt = sim.DefaultStepDt
	}
	m := Model{
		cfg:    cfg,
		theme:  GetTheme(cfg.Theme),
		canvas: NewCanvas(canvasWidth, canvasHeight),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) tick() tea.Cmd {
	d := time.Duration(m.cfg.StepDt * float64(time.Second))
	if d < minTick {
		d = minTick
	}
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles stick input and steps the engine on each tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "w":
			m.cmd.Throttle = nudge(m.cmd.Throttle, commandStep)
		case "s":
			m.cmd.Throttle = nudge(m.cmd.Throttle, -commandStep)
		case "up", "k":
			m.cmd.Pitch = nudge(m.cmd.Pitch, commandStep)
		case "down", "j":
			m.cmd.Pitch = nudge(m.cmd.Pitch, -commandStep)
		case "right", "l":
			m.cmd.Roll = nudge(m.cmd.Roll, commandStep)
		case "left", "h":
			m.cmd.Roll = nudge(m.cmd.Roll, -commandStep)
		case "d":
			m.cmd.Yaw = nudge(m.cmd.Yaw, commandStep)
		case "a":
			m.cmd.Yaw = nudge(m.cmd.Yaw, -commandStep)
		case "c":
			m.cmd.Pitch, m.cmd.Roll, m.cmd.Yaw = 0, 0, 0
		case "t":
			m.theme = m.theme.Next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// nudge moves a stick channel by delta, allowing it past the accepted
// range so the clamp warnings can be seen.
func nudge(v, delta float64) float64 {
	v = math.Round((v+delta)*stepsPerUnit) / stepsPerUnit
	return math.Max(-commandLimit, math.Min(commandLimit, v))
}

func (m *Model) step() {
	res, err := m.eng.Step(m.cfg.StepDt, m.cmd)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	for _, o := range m.cfg.Observers {
		o.Observe(m.cmd, res, m.cfg.StepDt)
	}
	m.last = res
	m.stepped = true

	m.track = appendCapped(m.track, m.project(res.State))
	m.altitudes = appendCapped(m.altitudes, res.State.Altitude)
	m.airspeeds = appendCapped(m.airspeeds, res.State.Airspeed)
}

func appendCapped[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// project maps a position to metres east and north of the start.
func (m *Model) project(s sim.State) Point {
	return Point{
		X: (s.Lon - m.origin.Lon) * metersPerDegree * math.Cos(m.origin.Lat*math.Pi/180),
		Y: (s.Lat - m.origin.Lat) * metersPerDegree,
	}
}

// reset rebuilds the engine from the starting configuration.
func (m *Model) reset() error {
	eng, err := sim.New(m.cfg.Seed, m.cfg.Options...)
	if err != nil {
		return err
	}
	m.eng = eng
	m.cmd = m.cfg.Command
	m.origin = eng.State()
	m.last = sim.StepResult{}
	m.stepped = false
	m.err = nil
	m.running = true
	m.track = []Point{{}}
	m.altitudes = m.altitudes[:0]
	m.airspeeds = m.airspeeds[:0]
	return nil
}

func (m Model) Engine() *sim.Engine   { return m.eng }
func (m Model) Command() sim.Command  { return m.cmd }
func (m Model) Last() sim.StepResult  { return m.last }
func (m Model) Running() bool         { return m.running }
func (m Model) Err() error            { return m.err }
func (m Model) Theme() Theme          { return m.theme }
func (m Model) Track() []Point        { return m.track }

// View renders the cockpit.
func (m Model) View() string {
	st := m.theme.Styles()

	status := st.Good.Render("FLYING")
	if m.err != nil {
		status = st.Alert.Render("ERROR: " + m.err.Error())
	} else if !m.running {
		status = st.Caution.Render("PAUSED")
	}

	var left strings.Builder
	left.WriteString(st.Header.Render("GROUND TRACK") + "\n")
	m.canvas.Clear()
	m.canvas.DrawPath(m.track)
	left.WriteString(m.canvas.String())
	if len(m.altitudes) > 1 {
		chart := asciigraph.Plot(m.altitudes,
			asciigraph.Height(5),
			asciigraph.Width(canvasWidth-8),
			asciigraph.Caption("altitude (m)"))
		left.WriteString("\n" + chart)
	}

	var right strings.Builder
	right.WriteString(st.Header.Render("FLIGHTSIM") + "  " + status + "\n")
	right.WriteString(st.Label.Render("Time") + st.Value.Render(fmt.Sprintf("%.1fs  step %d", m.eng.Elapsed(), m.eng.Steps())) + "\n\n")

	right.WriteString(st.Header.Render("STICK") + "\n")
	right.WriteString(st.Label.Render("Throttle") + st.ProgressBar(m.cmd.Throttle, 10) + st.Value.Render(fmt.Sprintf(" %+.2f", m.cmd.Throttle)) + "\n")
	right.WriteString(st.Label.Render("Pitch") + st.Value.Render(fmt.Sprintf("%+.2f", m.cmd.Pitch)) + "\n")
	right.WriteString(st.Label.Render("Roll") + st.Value.Render(fmt.Sprintf("%+.2f", m.cmd.Roll)) + "\n")
	right.WriteString(st.Label.Render("Yaw") + st.Value.Render(fmt.Sprintf("%+.2f", m.cmd.Yaw)) + "\n\n")

	state := m.eng.State()
	sensors := sim.Sensors(state)
	if m.stepped {
		sensors = m.last.Sensors
	}
	right.WriteString(st.Header.Render(fmt.Sprintf("%-10s%10s%10s", "", "TRUTH", "SENSOR")) + "\n")
	row := func(label, format string, truth, sensed float64) {
		right.WriteString(st.Label.Render(label) +
			st.Value.Render(fmt.Sprintf("%10s%10s", fmt.Sprintf(format, truth), fmt.Sprintf(format, sensed))) + "\n")
	}
	row("Pitch", "%.1f°", state.Pitch, sensors.Pitch)
	row("Roll", "%.1f°", state.Roll, sensors.Roll)
	row("Heading", "%.1f°", state.Yaw, sensors.Yaw)
	row("Airspeed", "%.1f", state.Airspeed, sensors.Airspeed)
	row("Altitude", "%.1f", state.Altitude, sensors.Altitude)
	row("Lat", "%.5f", state.Lat, sensors.Lat)
	row("Lon", "%.5f", state.Lon, sensors.Lon)
	right.WriteString(st.Label.Render("Battery") + st.ProgressBar(state.Battery/100, 10) + st.Value.Render(fmt.Sprintf(" %.1f%%", state.Battery)) + "\n")
	right.WriteString(st.Label.Render("Speed") + st.Value.Render(Sparkline(m.airspeeds, 20)) + "\n\n")

	right.WriteString(st.Header.Render("WARNINGS") + "\n")
	if len(m.last.Warnings) == 0 {
		right.WriteString(st.Good.Render("none") + "\n")
	}
	for _, w := range m.last.Warnings {
		right.WriteString(st.Warning(w).Render("▲ "+string(w)) + "\n")
	}

	right.WriteString(st.Help.Render("\nW/S:Throttle ↑↓:Pitch ←→:Roll A/D:Yaw\nC:Centre SP:Pause R:Reset T:Theme ?:Help Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top,
		st.Panel.Render(left.String()),
		st.Panel.Render(right.String()))

	if m.showHelp {
		return st.Panel.Render(helpText) + "\n" + view
	}
	return view
}

const helpText = `KEYBOARD SHORTCUTS
  W / S        throttle up / down
  Up / Down    pitch command
  Left / Right roll command
  A / D        yaw command
  C            centre pitch, roll and yaw
  Space        pause / resume
  R            reset flight
  T            cycle themes
  ?            toggle this help
  Q            quit`
