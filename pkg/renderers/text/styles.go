package text

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles applied to terminal output.
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Button  lipgloss.Style
}

// DefaultStyles returns bold headings and colored errors and buttons.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Underline(true),
		Heading: lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Button:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// PlainStyles returns styles that leave text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Heading: plain,
		Muted:   plain,
		Error:   plain,
		Button:  plain,
	}
}
