package engine

import "github.com/nathoo/inquest/engine/state"

// Sentinel errors re-exported so callers depend on the engine package
// alone. Operations returning these perform no state mutation.
var (
	ErrUnknownQuest         = state.ErrUnknownQuest
	ErrUnknownClue          = state.ErrUnknownClue
	ErrUnknownObjective     = state.ErrUnknownObjective
	ErrUnknownNpc           = state.ErrUnknownNpc
	ErrQuestNotActive       = state.ErrQuestNotActive
	ErrAlreadyActive        = state.ErrAlreadyActive
	ErrInvalidChoice        = state.ErrInvalidChoice
	ErrNoConversation       = state.ErrNoConversation
	ErrNoActiveConversation = state.ErrNoActiveConversation
	ErrNotTerminalPhase     = state.ErrNotTerminalPhase
)

// ContentError reports an integrity problem in authored content.
type ContentError = state.ContentError
