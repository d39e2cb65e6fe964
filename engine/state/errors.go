package state

import (
	"errors"
	"fmt"
)

// Caller errors. Operations that return these perform no mutation.
var (
	ErrUnknownQuest         = errors.New("unknown quest")
	ErrUnknownClue          = errors.New("unknown clue")
	ErrUnknownObjective     = errors.New("unknown objective")
	ErrUnknownNpc           = errors.New("unknown npc")
	ErrQuestNotActive       = errors.New("quest not active")
	ErrAlreadyActive        = errors.New("quest already active")
	ErrInvalidChoice        = errors.New("invalid choice")
	ErrNoConversation       = errors.New("no available conversation")
	ErrNoActiveConversation = errors.New("no active conversation")
	ErrNotTerminalPhase     = errors.New("current phase is not terminal")
)

// ContentError reports an integrity problem in authored content detected
// at runtime (dangling node reference, missing default text variant).
// It aborts the conversation or quest session it occurred in; it is a
// content bug, not a recoverable gameplay condition.
type ContentError struct {
	NpcID          string
	ConversationID string
	NodeID         string
	Detail         string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content error in conversation %s/%s node %q: %s",
		e.NpcID, e.ConversationID, e.NodeID, e.Detail)
}
