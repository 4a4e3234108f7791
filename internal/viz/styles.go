package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/flightsim/internal/sim"
)

// Styles is the set of lipgloss styles derived from a theme.
type Styles struct {
	Panel   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Good    lipgloss.Style
	Caution lipgloss.Style
	Alert   lipgloss.Style
	Help    lipgloss.Style
}

func (t Theme) Styles() Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Label:   lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		Value:   lipgloss.NewStyle().Foreground(t.Text),
		Good:    lipgloss.NewStyle().Bold(true).Foreground(t.Good),
		Caution: lipgloss.NewStyle().Bold(true).Foreground(t.Caution),
		Alert:   lipgloss.NewStyle().Bold(true).Foreground(t.Alert),
		Help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
	}
}

// Warning picks the style for a warning: command clamps are cautions,
// flight envelope warnings are alerts.
func (s Styles) Warning(w sim.Warning) lipgloss.Style {
	switch w {
	case sim.WarnStallRisk, sim.WarnOverspeedRisk, sim.WarnBatteryLow:
		return s.Alert
	}
	return s.Caution
}

// ProgressBar renders fraction (0..1) as a bar of width cells, colored
// good, caution or alert from high to low.
func (s Styles) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case fraction > 0.5:
		return s.Good.Render(bar)
	case fraction > 0.2:
		return s.Caution.Render(bar)
	}
	return s.Alert.Render(bar)
}

// Sparkline renders the last width values as block characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}
