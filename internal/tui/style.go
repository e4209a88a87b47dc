package tui

import "github.com/charmbracelet/lipgloss"

// styleRef names lipgloss.Style locally so tree.go's statusIcon signature
// doesn't need to import lipgloss directly.
type styleRef = lipgloss.Style

var selectionBG = lipgloss.Color("8")

var (
	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	cursorRowStyle = lipgloss.NewStyle().
			Background(selectionBG).
			Foreground(lipgloss.Color("15")).
			Bold(true)

	idleIconStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	busyIconStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D97706"))

	attentionIconStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9B9BF5"))

	errorIconStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5484D"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9B9BF5")).
				Bold(true)
)
