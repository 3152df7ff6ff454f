package tui

import (
	"github.com/charmbracelet/lipgloss"

	"skaladash/internal/dashboard"
)

var (
	primaryColor   = lipgloss.Color("#7C3AED")
	successColor   = lipgloss.Color("#10B981")
	warnColor      = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	borderColor    = lipgloss.Color("#374151")
	textColor      = lipgloss.Color("#F9FAFB")
	textMutedColor = lipgloss.Color("#6B7280")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	sessionStyle = lipgloss.NewStyle().
			Foreground(successColor)

	anonymousStyle = lipgloss.NewStyle().
			Foreground(textMutedColor)

	tabStyle = lipgloss.NewStyle().
			Foreground(textMutedColor).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textMutedColor).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(lipgloss.Color("#4C1D95")).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(textMutedColor).
			Italic(true)

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(textMutedColor).
			Width(12)
)

func statusStyle(level dashboard.Level) lipgloss.Style {
	switch level {
	case dashboard.LevelSuccess:
		return lipgloss.NewStyle().Foreground(successColor)
	case dashboard.LevelWarn:
		return lipgloss.NewStyle().Foreground(warnColor)
	case dashboard.LevelError:
		return lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(textColor)
	}
}
