package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the cockpit
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Good    lipgloss.Color
	Caution lipgloss.Color
	Alert   lipgloss.Color
}

var (
	ThemeCockpit = Theme{
		Name:    "cockpit",
		Primary: lipgloss.Color("#00ffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Good:    lipgloss.Color("#00ff88"),
		Caution: lipgloss.Color("#ffcc00"),
		Alert:   lipgloss.Color("#ff4444"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"), // Green phosphor
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Good:    lipgloss.Color("#88ff88"),
		Caution: lipgloss.Color("#ffff00"),
		Alert:   lipgloss.Color("#ff0000"),
	}

	ThemeNight = Theme{
		Name:    "night",
		Primary: lipgloss.Color("#ff6b6b"),
		Text:    lipgloss.Color("#ffd0d0"),
		Muted:   lipgloss.Color("#8b4b4b"),
		Good:    lipgloss.Color("#ff9999"),
		Caution: lipgloss.Color("#ffc048"),
		Alert:   lipgloss.Color("#ff2020"),
	}

	Themes = []Theme{
		ThemeCockpit,
		ThemeRetroGreen,
		ThemeNight,
	}
)

// GetTheme returns a theme by name, falling back to the cockpit theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCockpit
}

// Next returns the theme after t in Themes, wrapping around.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
