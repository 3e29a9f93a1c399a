package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	primaryColor = lipgloss.Color("#E8C4A0")
	accentColor  = lipgloss.Color("#A8C9A4")
	successColor = lipgloss.Color("#B5D99C")
	mutedColor   = lipgloss.Color("#B8A890")
	errorColor   = lipgloss.Color("#E07B7B")

	player1Color = lipgloss.Color("#7EB6E0")
	player2Color = lipgloss.Color("#E0A07E")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2)

	tokensBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 2)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accentColor).
			Padding(0, 1).
			Width(20)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(14)

	highlightStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	instructionStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(errorColor).
			Foreground(errorColor).
			Bold(true).
			Padding(0, 2)
)

// playerStyle - colors a player token. Colors other than 1 and 2 are shown plain.
func playerStyle(color string) lipgloss.Style {
	switch color {
	case "1":
		return lipgloss.NewStyle().Foreground(player1Color).Bold(true)
	case "2":
		return lipgloss.NewStyle().Foreground(player2Color).Bold(true)
	default:
		return highlightStyle
	}
}
