package styles

import "github.com/charmbracelet/lipgloss"

// Monokai Pro color palette
const (
	Red    = "#FF6188" // Errors
	Orange = "#FC9867" // Warnings
	Yellow = "#FFD866" // Highlights
	Green  = "#A9DC76" // Success
	Purple = "#AB9DF2" // Paths, links

	Comment = "#727072" // Dim text
)

// Styles for the build summary and CLI diagnostics.
var (
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
	WarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	DimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	PathStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Purple))
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Yellow)).Bold(true)
)
