package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style of the confirmation form.
type Theme struct {
	Title       lipgloss.Style
	Label       lipgloss.Style
	Focused     lipgloss.Style
	FieldError  lipgloss.Style
	Notice      lipgloss.Style
	Muted       lipgloss.Style
	BorderedBox lipgloss.Style
	Primary     lipgloss.Color
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#7c3aed"),
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")).
		Width(14),
	Focused: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a78bfa")).
		Bold(true).
		Width(14),
	FieldError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		PaddingLeft(14),
	Notice: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(1, 2),
}
