package cli

import "github.com/charmbracelet/lipgloss"

// Monokai Pro palette
const (
	colorMagenta = "#FF6188"
	colorYellow  = "#FFD866"
	colorCyan    = "#78DCE8"
	colorBlue    = "#AB9DF2"
	colorComment = "#727072"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorMagenta))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorCyan)).Width(16)
	linkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBlue)).Underline(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorComment))

	headingStyles = []lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorMagenta)),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorYellow)),
		lipgloss.NewStyle().Foreground(lipgloss.Color(colorCyan)),
	}
)

// headingStyle styles a TOC entry; levels past the palette share the last style.
func headingStyle(level int) lipgloss.Style {
	i := min(max(level-1, 0), len(headingStyles)-1)
	return headingStyles[i]
}
