package ui

import "github.com/charmbracelet/lipgloss"

const (
	colorPrimary = lipgloss.Color("#3e5cf5")
	colorError   = lipgloss.Color("#d9534f")
	colorOK      = lipgloss.Color("#2e9e5b")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	nameStyle   = lipgloss.NewStyle().Bold(true)
	codeStyle   = lipgloss.NewStyle().Foreground(colorPrimary)
	copiedStyle = lipgloss.NewStyle().Foreground(colorOK)
	cursorStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)
