package render

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles of the table renderer.
type Theme struct {
	Header   lipgloss.Style
	Group    lipgloss.Style
	Border   lipgloss.Style
	Expander lipgloss.Style
	Matched  lipgloss.Style
	Cursor   lipgloss.Style
	Footer   lipgloss.Style
}

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	colorSubtle  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	colorMatch   = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
)

// DefaultTheme returns the colored theme.
func DefaultTheme() Theme {
	return Theme{
		Header:   lipgloss.NewStyle().Bold(true),
		Group:    lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Border:   lipgloss.NewStyle().Foreground(colorMuted),
		Expander: lipgloss.NewStyle().Background(colorSubtle),
		Matched:  lipgloss.NewStyle().Foreground(colorMatch).Bold(true),
		Cursor:   lipgloss.NewStyle().Reverse(true),
		Footer:   lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
	}
}

// PlainTheme returns a theme without any styling, for --no-color and for
// non-terminal output.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()

	return Theme{
		Header:   plain,
		Group:    plain,
		Border:   plain,
		Expander: plain,
		Matched:  plain,
		Cursor:   plain,
		Footer:   plain,
	}
}
