// Package engine exposes the public operation set of the investigation
// engine: quest progression, clue and evidence tracking, NPC trust, and
// condition-gated dialogue, all over an immutable content catalog.
package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/nathoo/inquest/engine/conditions"
	"github.com/nathoo/inquest/engine/dialogue"
	"github.com/nathoo/inquest/engine/events"
	"github.com/nathoo/inquest/engine/evidence"
	"github.com/nathoo/inquest/engine/quest"
	"github.com/nathoo/inquest/engine/relationship"
	"github.com/nathoo/inquest/engine/state"
	"github.com/nathoo/inquest/types"
)

// Engine holds the content catalog and one player's mutable state.
// Not safe for concurrent use; callers serialize access.
type Engine struct {
	Catalog *state.Catalog
	State   *types.PlayerState

	log    *slog.Logger
	clock  func() time.Time
	conv   *dialogue.Conversation
	mood   string // NPC emotional state for the in-flight conversation
	events events.Queue
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger injects a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock injects the time source used for all timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithState resumes from a previously saved player state.
func WithState(s *types.PlayerState) Option {
	return func(e *Engine) { e.State = s }
}

// New creates an engine over a loaded catalog with fresh player state.
func New(cat *state.Catalog, opts ...Option) *Engine {
	e := &Engine{
		Catalog: cat,
		State:   state.NewState(),
		log:     slog.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DrainEvents returns the events emitted since the last drain.
func (e *Engine) DrainEvents() []types.Event { return e.events.Drain() }

// SetLocation records the player's current location for condition checks
// and clue discovery context.
func (e *Engine) SetLocation(location string) { e.State.Location = location }

// SetHour records the current in-world hour (0-23).
func (e *Engine) SetHour(hour int) { e.State.Hour = ((hour % 24) + 24) % 24 }

// snapshot builds the read-only view the condition evaluator works on.
func (e *Engine) snapshot(npcID string) conditions.Snapshot {
	return conditions.Snapshot{
		Active:        e.State.Active,
		Completed:     e.State.Completed,
		Relationships: e.State.Relationships,
		WorldFlags:    e.State.WorldFlags,
		Location:      e.State.Location,
		Hour:          e.State.Hour,
		NpcID:         npcID,
	}
}

// ---- Quest operations ----

// StartQuest activates a quest at its initial phase.
func (e *Engine) StartQuest(questID string) error {
	now := e.clock()
	if err := quest.Start(e.Catalog, e.State, questID, now); err != nil {
		return err
	}
	e.events.Emit(events.QuestStarted, map[string]any{"quest": questID})
	e.log.Info("quest started", "quest", questID)
	return nil
}

// RecordClue marks a clue discovered on an active quest and recomputes
// evidence strength. Rediscovery is a no-op, reported in the outcome.
// Phase advancement and fail conditions are checked after a successful
// discovery. The discovery is stamped with the session location.
func (e *Engine) RecordClue(questID, clueID string) (evidence.Outcome, error) {
	return e.recordClue(questID, clueID, e.State.Location)
}

// recordClue is the shared discovery path; dialogue consequences pass an
// authored location here instead of the session one.
func (e *Engine) recordClue(questID, clueID, location string) (evidence.Outcome, error) {
	now := e.clock()
	out, err := evidence.RecordClue(e.Catalog, e.State, questID, clueID, location, now)
	if err != nil {
		return out, err
	}
	if !out.AlreadyKnown {
		e.events.Emit(events.ClueDiscovered, map[string]any{
			"quest":    questID,
			"clue":     clueID,
			"evidence": out.NewStrength.String(),
		})
		e.afterQuestMutation(questID)
	}
	return out, nil
}

// CompleteObjective marks a quest objective done. Idempotent.
func (e *Engine) CompleteObjective(questID, objectiveID string) error {
	now := e.clock()
	if err := quest.CompleteObjective(e.Catalog, e.State, questID, objectiveID, now); err != nil {
		return err
	}
	e.events.Emit(events.ObjectiveCompleted, map[string]any{
		"quest":     questID,
		"objective": objectiveID,
	})
	e.afterQuestMutation(questID)
	return nil
}

// TryAdvancePhase attempts one phase transition for a quest. It is also
// invoked automatically after clue discovery and objective completion.
func (e *Engine) TryAdvancePhase(questID string) bool {
	tr, ok := quest.TryAdvance(e.Catalog, e.State, questID, e.clock())
	if !ok {
		return false
	}
	e.events.Emit(events.PhaseAdvanced, map[string]any{
		"quest": tr.QuestID,
		"from":  tr.From,
		"to":    tr.To,
	})
	e.log.Info("phase advanced", "quest", tr.QuestID, "from", tr.From, "to", tr.To)
	return true
}

// CompleteQuest resolves a quest from a terminal phase, emitting the
// completion summary with its opaque reward request.
func (e *Engine) CompleteQuest(questID string) (types.QuestSummary, error) {
	summary, err := quest.Complete(e.Catalog, e.State, questID, e.clock())
	if err != nil {
		return types.QuestSummary{}, err
	}
	e.events.Emit(events.QuestCompleted, map[string]any{
		"quest":    questID,
		"evidence": summary.FinalEvidence.String(),
	})
	e.log.Info("quest completed", "quest", questID, "evidence", summary.FinalEvidence.String())
	return summary, nil
}

// FailQuest fails an active quest with a reason.
func (e *Engine) FailQuest(questID, reason string) (types.QuestSummary, error) {
	summary, err := quest.Fail(e.State, questID, reason, e.clock())
	if err != nil {
		return types.QuestSummary{}, err
	}
	e.events.Emit(events.QuestFailed, map[string]any{"quest": questID, "reason": reason})
	e.log.Info("quest failed", "quest", questID, "reason", reason)
	return summary, nil
}

// AddNote appends a free-text investigation note to an active quest.
func (e *Engine) AddNote(questID, text string) error {
	p, ok := state.ActiveQuest(e.State, questID)
	if !ok {
		if _, known := e.Catalog.Quest(questID); !known {
			return state.ErrUnknownQuest
		}
		return state.ErrQuestNotActive
	}
	p.Notes = append(p.Notes, text)
	p.UpdatedAt = e.clock()
	e.events.Emit(events.NoteAdded, map[string]any{"quest": questID})
	return nil
}

// afterQuestMutation runs the checks shared by every quest mutation:
// one phase advancement attempt, then authored fail conditions.
func (e *Engine) afterQuestMutation(questID string) {
	e.TryAdvancePhase(questID)

	def, ok := e.Catalog.Quest(questID)
	if !ok {
		return
	}
	if _, active := state.ActiveQuest(e.State, questID); !active {
		return
	}
	if quest.FailConditionMet(def, e.snapshot("")) {
		if _, err := e.FailQuest(questID, "fail conditions met"); err != nil {
			e.log.Error("fail condition trigger", "quest", questID, "err", err)
		}
	}
}

// ---- Conversation operations ----

// StartConversation selects the most relevant applicable conversation
// for an NPC and presents its start node. The mood argument is the NPC's
// current emotional state, supplied by the caller; it stays fixed for
// the conversation. An in-flight conversation is closed out first.
func (e *Engine) StartConversation(npcID, mood string) (dialogue.Presented, error) {
	npc, ok := e.Catalog.Npc(npcID)
	if !ok {
		return dialogue.Presented{}, state.ErrUnknownNpc
	}
	if e.conv != nil {
		e.EndConversation()
	}

	conv, ok := dialogue.Select(npc, e.snapshot(npcID))
	if !ok {
		return dialogue.Presented{}, state.ErrNoConversation
	}

	e.conv = dialogue.Begin(npc, conv, e.clock())
	e.mood = mood
	e.events.Emit(events.ConversationStarted, map[string]any{
		"npc":          npcID,
		"conversation": conv.ID,
	})
	return e.present()
}

// PresentNode re-renders the current conversation node. Presenting the
// same node twice yields identical output and no repeated side effects.
func (e *Engine) PresentNode() (dialogue.Presented, error) {
	if e.conv == nil {
		return dialogue.Presented{}, state.ErrNoActiveConversation
	}
	return e.present()
}

// Choose applies a player choice from the last presented set, runs its
// consequences exactly once, and presents the next node. An id outside
// the presented set returns ErrInvalidChoice with no state change.
func (e *Engine) Choose(choiceID string) (dialogue.Presented, error) {
	if e.conv == nil {
		return dialogue.Presented{}, state.ErrNoActiveConversation
	}
	consequences, err := e.conv.Choose(choiceID)
	if err != nil {
		return dialogue.Presented{}, err
	}
	for _, c := range consequences {
		e.applyConsequence(c)
	}
	if e.conv.Ended() {
		node := dialogue.Presented{Over: true}
		e.EndConversation()
		return node, nil
	}
	return e.present()
}

// EndConversation closes the in-flight conversation and records the
// interaction on the NPC's relationship. This is the only write path
// for interaction history.
func (e *Engine) EndConversation() {
	if e.conv == nil {
		return
	}
	now := e.clock()
	conv := e.conv
	e.conv = nil
	conv.End()

	rec := conv.Record(now)
	relationship.RecordInteraction(e.State, conv.NpcID, rec, now)
	e.events.Emit(events.ConversationEnded, map[string]any{
		"npc":          conv.NpcID,
		"conversation": conv.ConversationID,
		"trust_delta":  rec.TrustDelta,
	})
}

// InConversation reports whether a conversation is in flight.
func (e *Engine) InConversation() bool { return e.conv != nil }

// present applies the current node's one-time on-enter consequences,
// then renders it against the resulting state, so choice gates see what
// the node itself just revealed. Content errors abort the conversation
// but still record the interaction.
func (e *Engine) present() (dialogue.Presented, error) {
	conv := e.conv
	onEnter, err := conv.Enter()
	if err != nil {
		e.log.Error("content error", "npc", conv.NpcID, "conversation", conv.ConversationID, "err", err)
		e.EndConversation()
		return dialogue.Presented{}, err
	}
	for _, c := range onEnter {
		e.applyConsequence(c)
	}
	node, err := conv.Present(e.mood, e.snapshot(conv.NpcID))
	if err != nil {
		e.log.Error("content error", "npc", conv.NpcID, "conversation", conv.ConversationID, "err", err)
		e.EndConversation()
		return dialogue.Presented{}, err
	}
	if node.Over && e.conv != nil {
		e.EndConversation()
	}
	return node, nil
}

// applyConsequence executes one dialogue consequence against player
// state. Unknown consequence types are rejected by the loader; here
// they log and fall through.
func (e *Engine) applyConsequence(c types.Consequence) {
	npcID := ""
	if e.conv != nil {
		npcID = e.conv.NpcID
	}
	if v, ok := c.Params["npc"].(string); ok && v != "" {
		npcID = v
	}

	switch c.Type {
	case "trust":
		delta := paramInt(c.Params, "delta")
		if delta > 0 {
			if npc, ok := e.Catalog.Npc(npcID); ok {
				delta = relationship.ScaleDelta(delta, npc.Personality)
			}
		}
		old, now := relationship.ModifyTrust(e.State, npcID, delta)
		if e.conv != nil {
			e.conv.NoteTrust(now - old)
		}
		e.events.Emit(events.TrustChanged, map[string]any{
			"npc":   npcID,
			"delta": now - old,
			"trust": now,
			"level": relationship.Level(now).String(),
		})

	case "reveal_clue":
		questID, _ := c.Params["quest"].(string)
		clueID, _ := c.Params["clue"].(string)
		location, _ := c.Params["location"].(string)
		if location == "" {
			location = e.State.Location
		}
		if _, err := e.recordClue(questID, clueID, location); err != nil {
			e.log.Warn("reveal_clue skipped", "quest", questID, "clue", clueID, "err", err)
			return
		}
		if e.conv != nil {
			e.conv.NoteOutcome("clue:" + clueID)
		}

	case "start_quest":
		questID, _ := c.Params["quest"].(string)
		if err := e.StartQuest(questID); err != nil {
			if err != state.ErrAlreadyActive {
				e.log.Warn("start_quest skipped", "quest", questID, "err", err)
			}
			return
		}
		if e.conv != nil {
			e.conv.NoteOutcome("quest:" + questID)
		}

	case "complete_quest":
		questID, _ := c.Params["quest"].(string)
		if _, err := e.CompleteQuest(questID); err != nil {
			e.log.Warn("complete_quest skipped", "quest", questID, "err", err)
			return
		}
		if e.conv != nil {
			e.conv.NoteOutcome("completed:" + questID)
		}

	case "set_flag":
		flag, _ := c.Params["flag"].(string)
		value := true
		if v, ok := c.Params["value"].(bool); ok {
			value = v
		}
		state.SetWorldFlag(e.State, flag, value)
		e.events.Emit(events.FlagSet, map[string]any{"flag": flag, "value": value})

	case "unlock_dialogue":
		flag, _ := c.Params["flag"].(string)
		relationship.SetFlag(e.State, npcID, flag)
		e.events.Emit(events.DialogueUnlocked, map[string]any{"npc": npcID, "flag": flag})

	default:
		e.log.Warn("unknown consequence type", "type", c.Type)
	}
}

// ---- Read accessors ----

// ActiveQuests returns active quest ids in lexical order.
func (e *Engine) ActiveQuests() []string {
	ids := make([]string, 0, len(e.State.Active))
	for id := range e.State.Active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Progress returns the progress record for an active quest.
func (e *Engine) Progress(questID string) (*types.QuestProgress, bool) {
	return state.ActiveQuest(e.State, questID)
}

// Evidence returns the current evidence strength for a quest.
func (e *Engine) Evidence(questID string) types.EvidenceStrength {
	return evidence.Strength(e.State, questID)
}

// Trust returns an NPC's trust value and derived level.
func (e *Engine) Trust(npcID string) (int, types.TrustLevel) {
	v := relationship.TrustValue(e.State, npcID)
	return v, relationship.Level(v)
}

// paramInt reads an int parameter that may arrive as float64 from
// JSON or Lua content.
func paramInt(params map[string]any, key string) int {
	switch n := params[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
