package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeExhaust = Theme{
		Name:      "exhaust",
		Primary:   lipgloss.Color("#ff8c1a"),
		Secondary: lipgloss.Color("#ffd166"),
		Accent:    lipgloss.Color("#4cc9f0"),
		Text:      lipgloss.Color("#f2f2f2"),
		Muted:     lipgloss.Color("#7a7a85"),
		Border:    lipgloss.Color("#44445a"),
		Success:   lipgloss.Color("#52d273"),
		Warning:   lipgloss.Color("#ffb020"),
		Error:     lipgloss.Color("#ff4d4d"),
	}

	ThemeBlueprint = Theme{
		Name:      "blueprint",
		Primary:   lipgloss.Color("#5ab0ff"),
		Secondary: lipgloss.Color("#a8d8ff"),
		Accent:    lipgloss.Color("#ffffff"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4f7ea8"),
		Border:    lipgloss.Color("#1f4a78"),
		Success:   lipgloss.Color("#7fffd4"),
		Warning:   lipgloss.Color("#ffd700"),
		Error:     lipgloss.Color("#ff6b6b"),
	}

	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#999999"),
		Text:      lipgloss.Color("#dddddd"),
		Muted:     lipgloss.Color("#777777"),
		Border:    lipgloss.Color("#444444"),
		Success:   lipgloss.Color("#bbbbbb"),
		Warning:   lipgloss.Color("#eeeeee"),
		Error:     lipgloss.Color("#ffffff"),
	}

	Themes = []Theme{ThemeExhaust, ThemeBlueprint, ThemeMono}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
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
