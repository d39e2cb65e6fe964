// Package events defines the typed event feed emitted by engine
// operations. Events are presentation feedback only: draining or
// dropping them never changes engine behavior.
package events

import "github.com/nathoo/inquest/types"

// Event type tags.
const (
	QuestStarted        = "quest_started"
	QuestCompleted      = "quest_completed"
	QuestFailed         = "quest_failed"
	PhaseAdvanced       = "phase_advanced"
	ClueDiscovered      = "clue_discovered"
	ObjectiveCompleted  = "objective_completed"
	NoteAdded           = "note_added"
	TrustChanged        = "trust_changed"
	ConversationStarted = "conversation_started"
	ConversationEnded   = "conversation_ended"
	FlagSet             = "flag_set"
	DialogueUnlocked    = "dialogue_unlocked"
)

// Queue accumulates events until the caller drains them.
type Queue struct {
	pending []types.Event
}

// Emit appends one event to the queue.
func (q *Queue) Emit(eventType string, data map[string]any) {
	q.pending = append(q.pending, types.Event{Type: eventType, Data: data})
}

// Drain returns all pending events and empties the queue.
func (q *Queue) Drain() []types.Event {
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of pending events.
func (q *Queue) Len() int { return len(q.pending) }
