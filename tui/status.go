package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// locationDisplayName derives a human-readable name from a location id.
// "market_square" -> "Market Square".
func locationDisplayName(id string) string {
	if id == "" {
		return "Nowhere in particular"
	}
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing
// location, hour, active cases, and the conversation partner if any.
func (m Model) renderStatusBar() string {
	eng := m.session.Engine
	st := eng.State

	left := fmt.Sprintf(" %s | %02d:00", locationDisplayName(st.Location), st.Hour)

	active := eng.ActiveQuests()
	right := fmt.Sprintf("Cases: %d ", len(active))
	if len(active) > 0 {
		candidate := fmt.Sprintf("Cases: %s ", strings.Join(active, ", "))
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}
	if eng.InConversation() {
		left += " | in conversation"
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
