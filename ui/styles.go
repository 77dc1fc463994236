package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hearthhq/datacache/cache"
)

// Theme defines the dashboard color scheme
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
}

// Styles contains the styled components used by the dashboard
type Styles struct {
	// Basic text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Layout styles
	TableHeader lipgloss.Style
	TableRow    lipgloss.Style
	Footer      lipgloss.Style
	Paused      lipgloss.Style
}

// DefaultTheme returns the default color theme
func DefaultTheme() Theme {
	return DarkTheme()
}

// DarkTheme returns a dark color theme
func DarkTheme() Theme {
	return Theme{
		Primary:    lipgloss.Color("#F59E0B"), // Amber
		Secondary:  lipgloss.Color("#38BDF8"), // Sky
		Success:    lipgloss.Color("#34D399"), // Emerald
		Warning:    lipgloss.Color("#FBBF24"), // Amber-400
		Error:      lipgloss.Color("#F87171"), // Red-400
		Info:       lipgloss.Color("#60A5FA"), // Blue-400
		Foreground: lipgloss.Color("#E5E7EB"), // Gray-200
		Muted:      lipgloss.Color("#6B7280"), // Gray-500
		Border:     lipgloss.Color("#374151"), // Gray-700
	}
}

// LightTheme returns a light color theme
func LightTheme() Theme {
	return Theme{
		Primary:    lipgloss.Color("#B45309"), // Amber-700
		Secondary:  lipgloss.Color("#0284C7"), // Sky-600
		Success:    lipgloss.Color("#059669"), // Emerald-600
		Warning:    lipgloss.Color("#D97706"), // Amber-600
		Error:      lipgloss.Color("#DC2626"), // Red-600
		Info:       lipgloss.Color("#2563EB"), // Blue-600
		Foreground: lipgloss.Color("#111827"), // Gray-900
		Muted:      lipgloss.Color("#6B7280"), // Gray-500
		Border:     lipgloss.Color("#D1D5DB"), // Gray-300
	}
}

// GetThemeByName returns a theme by its name. "auto" picks dark or light
// from the terminal background.
func GetThemeByName(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	case "auto":
		if lipgloss.HasDarkBackground() {
			return DarkTheme()
		}
		return LightTheme()
	default:
		return DefaultTheme()
	}
}

// GetAvailableThemes returns all available theme names
func GetAvailableThemes() []string {
	return []string{"dark", "light", "auto"}
}

// NewStyles creates styles based on a theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(theme.Info),

		TableHeader: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true),

		TableRow: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Border(lipgloss.Border{Top: "─"}).
			BorderForeground(theme.Border),

		Paused: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1F2937")).
			Background(theme.Warning).
			Bold(true).
			Padding(0, 1),
	}
}

// EventStyle returns the style for an event type in the feed
func (s Styles) EventStyle(t cache.EventType) lipgloss.Style {
	switch t {
	case cache.EventHit:
		return s.Success
	case cache.EventMiss:
		return s.Warning
	case cache.EventWrite:
		return s.Info
	case cache.EventRefresh:
		return s.Subtitle
	case cache.EventEviction:
		return s.Error
	default:
		return s.Normal
	}
}
