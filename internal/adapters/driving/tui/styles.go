package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the chat interface.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// User is the colour for user turns.
	User lipgloss.Color

	// Assistant is the colour for assistant turns.
	Assistant lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		User:      lipgloss.Color("#06B6D4"), // Cyan
		Assistant: lipgloss.Color("#A6E3A1"), // Green
		Error:     lipgloss.Color("#F38BA8"), // Red
		Border:    lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for the header.
	Title lipgloss.Style

	// Muted style for status text.
	Muted lipgloss.Style

	// UserLabel prefixes user turns in the transcript.
	UserLabel lipgloss.Style

	// AssistantLabel prefixes assistant turns in the transcript.
	AssistantLabel lipgloss.Style

	// Error style for failures.
	Error lipgloss.Style

	// ChatBox frames the transcript viewport.
	ChatBox lipgloss.Style

	// InputBox frames the message input.
	InputBox lipgloss.Style
}

// DefaultStyles returns styles built from the default theme.
func DefaultStyles() *Styles {
	theme := DefaultTheme()
	return &Styles{
		theme:          theme,
		Title:          lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Muted:          lipgloss.NewStyle().Foreground(theme.Muted),
		UserLabel:      lipgloss.NewStyle().Bold(true).Foreground(theme.User),
		AssistantLabel: lipgloss.NewStyle().Bold(true).Foreground(theme.Assistant),
		Error:          lipgloss.NewStyle().Foreground(theme.Error),
		ChatBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}
