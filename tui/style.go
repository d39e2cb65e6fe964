package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleChoice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleEvent = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindDialogue
	kindChoice
	kindEvent
	kindError
)

// classifyLine determines what kind of output line this is, based on
// the session's output conventions.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimLeft(line, " ")
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindEvent
	case strings.HasPrefix(trimmed, "1)") || isChoiceLine(trimmed):
		return kindChoice
	case strings.HasPrefix(line, "Unknown command"),
		strings.HasPrefix(line, "That's not one of"),
		strings.HasPrefix(line, "No such"),
		strings.HasPrefix(line, "Usage:"):
		return kindError
	case isSpeechLine(line):
		return kindDialogue
	default:
		return kindNarrative
	}
}

// isChoiceLine matches the session's "  N) text" choice rendering.
func isChoiceLine(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	return i > 0 && i < len(trimmed) && trimmed[i] == ')'
}

// isSpeechLine matches the session's "Speaker: text" dialogue rendering.
func isSpeechLine(line string) bool {
	i := strings.Index(line, ": ")
	return i > 0 && i < 40 && !strings.Contains(line[:i], " —")
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
