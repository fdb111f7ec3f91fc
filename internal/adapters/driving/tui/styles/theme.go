// Package styles provides colour themes and styling for the terminal views.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette of the progress view.
type Theme struct {
	// Accent marks the title and the running stage.
	Accent lipgloss.Color

	Text  lipgloss.Color
	Muted lipgloss.Color

	// Done, Degraded and Failed colour stage outcomes.
	Done     lipgloss.Color
	Degraded lipgloss.Color
	Failed   lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:   lipgloss.Color("#F59E0B"), // Amber
		Text:     lipgloss.Color("#E5E7EB"),
		Muted:    lipgloss.Color("#6B7280"),
		Done:     lipgloss.Color("#A6E3A1"),
		Degraded: lipgloss.Color("#F9E2AF"),
		Failed:   lipgloss.Color("#F38BA8"),
	}
}

// Styles contains the lipgloss styles the views render with.
type Styles struct {
	theme *Theme

	Title  lipgloss.Style
	Active lipgloss.Style
	Normal lipgloss.Style
	Muted  lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// StatusBar pads the bottom line.
	StatusBar lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		theme:     theme,
		Title:     fg(theme.Accent).Bold(true),
		Active:    fg(theme.Accent).Bold(true),
		Normal:    fg(theme.Text),
		Muted:     fg(theme.Muted),
		Success:   fg(theme.Done),
		Warning:   fg(theme.Degraded),
		Error:     fg(theme.Failed),
		StatusBar: fg(theme.Muted).Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
