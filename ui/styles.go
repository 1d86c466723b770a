package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rafeeqops/rafeeq/model"
)

var (
	// Colors
	colorGreen  = lipgloss.Color("#00C853")
	colorYellow = lipgloss.Color("#FBC02D")
	colorAmber  = lipgloss.Color("#FFA000")
	colorOrange = lipgloss.Color("#FF6D00")
	colorRed    = lipgloss.Color("#D50000")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorWhite  = lipgloss.Color("#F8F8F2")
	colorGray   = lipgloss.Color("#6272A4")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	labelStyle  = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	helpStyle   = lipgloss.NewStyle().Foreground(colorGray)
	dimStyle    = lipgloss.NewStyle().Foreground(colorGray)
	keyStyle    = lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
)

// emotionStyle maps a classification to its display style.
func emotionStyle(e model.Emotion) lipgloss.Style {
	switch e {
	case model.EmotionCriticalDistress:
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	case model.EmotionHighAnxiety:
		return lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
	case model.EmotionModerateStress:
		return lipgloss.NewStyle().Foreground(colorAmber).Bold(true)
	case model.EmotionMildDiscomfort:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return okStyle
	}
}

// hexStyle renders text in a core-supplied hex color hint.
func hexStyle(hex string) lipgloss.Style {
	if hex == "" {
		return valueStyle
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Bold(true)
}
