package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/flightsim/internal/scenario"
	"github.com/san-kum/flightsim/internal/sim"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func newModel(t *testing.T) Model {
	t.Helper()
	m, err := NewModel(LiveConfig{Seed: 1, StepDt: 0.1, Command: sim.Command{Throttle: 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.String() != "\u2800\u2800\n" {
		t.Errorf("clear left %q", c.String())
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal pixel %d not set", i)
		}
	}
}

func TestCanvasDrawPath(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawPath([]Point{{0, 0}, {0, 100}})

	// North is up: the start is at the bottom of the column, the end at the top.
	cx := 10
	if !c.IsSet(cx, 19) || !c.IsSet(cx, 0) {
		t.Errorf("expected vertical line at x=%d:\n%s", cx, c.String())
	}

	c.Clear()
	c.DrawPath(nil)
	c.DrawPath([]Point{{5, 5}})
	if !c.IsSet(10, 10) {
		t.Errorf("single point not centred:\n%s", c.String())
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("missing").Name != ThemeCockpit.Name {
		t.Error("unknown theme should fall back to cockpit")
	}
	th := ThemeCockpit
	for range Themes {
		th = th.Next()
	}
	if th.Name != ThemeCockpit.Name {
		t.Error("Next should cycle through every theme")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := Sparkline([]float64{0, 1, 2, 3}, 2); got != "▁█" {
		t.Errorf("sparkline = %q", got)
	}
}

func TestModelStepsOnTick(t *testing.T) {
	m := newModel(t)
	m = send(t, m, TickMsg(time.Now()), TickMsg(time.Now()))

	if m.Engine().Steps() != 2 {
		t.Errorf("expected 2 steps, got %d", m.Engine().Steps())
	}
	if len(m.Track()) != 3 {
		t.Errorf("expected origin plus 2 track points, got %d", len(m.Track()))
	}
	if m.Last().State != m.Engine().State() {
		t.Error("last result does not match engine state")
	}
}

func TestModelPause(t *testing.T) {
	m := newModel(t)
	m = send(t, m, key(" "), TickMsg(time.Now()))
	if m.Running() {
		t.Error("space should pause")
	}
	if m.Engine().Steps() != 0 {
		t.Error("paused model should not step")
	}
}

func TestModelStick(t *testing.T) {
	m := newModel(t)
	m = send(t, m, key("w"), key("w"), key("up"), key("left"), key("d"))

	cmd := m.Command()
	if cmd.Throttle != 0.6 {
		t.Errorf("throttle = %v, want 0.6", cmd.Throttle)
	}
	if cmd.Pitch != 0.05 || cmd.Roll != -0.05 || cmd.Yaw != 0.05 {
		t.Errorf("unexpected stick %+v", cmd)
	}

	m = send(t, m, key("c"))
	if c := m.Command(); c.Pitch != 0 || c.Roll != 0 || c.Yaw != 0 || c.Throttle != 0.6 {
		t.Errorf("centre should zero attitude only, got %+v", c)
	}
}

func TestModelStickLimit(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 40; i++ {
		m = send(t, m, key("up"))
	}
	if m.Command().Pitch != commandLimit {
		t.Errorf("pitch = %v, want %v", m.Command().Pitch, commandLimit)
	}
	m = send(t, m, TickMsg(time.Now()))
	if !m.Last().Has(sim.WarnPitchClamped) {
		t.Error("over-range stick should raise pitch_command_clamped")
	}
	if !strings.Contains(m.View(), string(sim.WarnPitchClamped)) {
		t.Error("warning not shown in view")
	}
}

func TestModelReset(t *testing.T) {
	m := newModel(t)
	m = send(t, m, key("w"), TickMsg(time.Now()), TickMsg(time.Now()), key("r"))
	if m.Engine().Steps() != 0 {
		t.Error("reset should rebuild the engine")
	}
	if m.Command().Throttle != 0.5 {
		t.Errorf("reset should restore the starting command, got %v", m.Command().Throttle)
	}
	if len(m.Track()) != 1 {
		t.Error("reset should clear the track")
	}
}

func TestModelThemeAndHelp(t *testing.T) {
	m := newModel(t)
	m = send(t, m, key("t"))
	if m.Theme().Name != ThemeRetroGreen.Name {
		t.Errorf("theme = %s", m.Theme().Name)
	}
	m = send(t, m, key("?"))
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay missing")
	}
}

func TestModelQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestNewModelRejectsInvalidConfig(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.MinAirspeed = 500
	if _, err := NewModel(LiveConfig{Options: []sim.Option{sim.WithConfig(cfg)}}); err == nil {
		t.Error("expected error")
	}
}

func TestPlotChannel(t *testing.T) {
	sc := &scenario.Scenario{
		Name:     "plot",
		Seed:     7,
		StepDt:   0.1,
		Segments: []scenario.Segment{{Duration: 2, Command: sim.Command{Throttle: 0.7, Pitch: 0.6}}},
	}
	trace, err := scenario.Run(context.Background(), sc, scenario.Options{})
	if err != nil {
		t.Fatal(err)
	}

	out, err := PlotChannel(trace.Samples, "altitude", PlotOptions{Width: 40, Height: 6})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "altitude") {
		t.Error("caption missing")
	}

	if _, err := PlotChannel(trace.Samples, "altitude", PlotOptions{WithSensors: true}); err != nil {
		t.Error(err)
	}
	if _, err := PlotChannel(trace.Samples, "wingspan", PlotOptions{}); err == nil {
		t.Error("expected unknown channel error")
	}
	if _, err := PlotChannel(nil, "altitude", PlotOptions{}); err == nil {
		t.Error("expected error for no samples")
	}
}

func TestChannelSeriesBatteryIsExact(t *testing.T) {
	samples := []scenario.Sample{{Result: sim.StepResult{
		State:   sim.State{Battery: 80, Altitude: 10},
		Sensors: sim.Sensors{Battery: 80, Altitude: 10.5},
	}}}
	truth, sensed, err := ChannelSeries(samples, "battery")
	if err != nil {
		t.Fatal(err)
	}
	if truth[0] != sensed[0] {
		t.Error("battery truth and sensor should match")
	}
	if len(ChannelNames()) != 8 {
		t.Errorf("expected 8 channels, got %d", len(ChannelNames()))
	}
}
