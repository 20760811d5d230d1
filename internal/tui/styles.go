package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan    = lipgloss.Color("#00D7FF")
	colorGreen   = lipgloss.Color("#00FF87")
	colorYellow  = lipgloss.Color("#FFD700")
	colorRed     = lipgloss.Color("#FF5F5F")
	colorPurple  = lipgloss.Color("#AF87FF")
	colorWhite   = lipgloss.Color("#FFFFFF")
	colorGray    = lipgloss.Color("#626262")
	colorDimGray = lipgloss.Color("#3A3A3A")
	colorBorder  = lipgloss.Color("#2A2A4A")
)

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBorder).
	Padding(0, 1)

var tabStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	Padding(0, 2)

var activeTabStyle = lipgloss.NewStyle().
	Foreground(colorCyan).
	Bold(true).
	Padding(0, 2).
	Border(lipgloss.NormalBorder(), false, false, true, false).
	BorderForeground(colorCyan)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(colorGray).Width(16)
	valueStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	successStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	warningStyle   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(colorGray)
	highlightStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	spinnerStyle   = lipgloss.NewStyle().Foreground(colorPurple)
	keyStyle       = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	keyDescStyle   = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	barFull  = "█"
	barEmpty = "░"
	barWidth = 20
)

// RenderProgressBar draws a bar for pct in [0, 1]. Green means complete.
func RenderProgressBar(pct float64) string {
	pct = min(max(pct, 0), 1)
	filled := int(pct * float64(barWidth))
	bar := strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, barWidth-filled)

	var style lipgloss.Style
	switch {
	case pct >= 1.0:
		style = lipgloss.NewStyle().Foreground(colorGreen)
	case pct > 0:
		style = lipgloss.NewStyle().Foreground(colorYellow)
	default:
		style = lipgloss.NewStyle().Foreground(colorDimGray)
	}
	return style.Render(bar)
}

func RenderKeyBinding(key, desc string) string {
	return keyStyle.Render(key) + keyDescStyle.Render(" "+desc)
}
