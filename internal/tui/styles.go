package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext  lipgloss.Color = "#a6adc8"
	colorOverlay  lipgloss.Color = "#6c7086"
	colorSurface  lipgloss.Color = "#313244"
	colorLavender lipgloss.Color = "#b4befe"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorTeal     lipgloss.Color = "#94e2d5"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorLavender)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorOverlay)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface).
			Padding(0, 1)
	activeColumnStyle = columnStyle.BorderForeground(colorLavender)

	cardStyle     = lipgloss.NewStyle().Foreground(colorSubtext)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface).Bold(true)
	pickedStyle   = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
	dropStyle     = lipgloss.NewStyle().Foreground(colorPeach)
	scoreStyle    = lipgloss.NewStyle().Foreground(colorTeal)
	statusBarBase = lipgloss.NewStyle().Foreground(colorSubtext).Padding(0, 1)

	updatingStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	savedStyle    = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	toastStyle    = lipgloss.NewStyle().Foreground(colorTeal)
)
