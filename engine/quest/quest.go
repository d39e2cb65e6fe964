// Package quest implements the quest progression state machine:
// NotStarted -> Active(phase) -> Completed | Failed, with phase
// transitions driven by evidence, objectives, and discovered clues.
package quest

import (
	"sort"
	"time"

	"github.com/nathoo/inquest/engine/conditions"
	"github.com/nathoo/inquest/engine/state"
	"github.com/nathoo/inquest/types"
)

// Start creates an active progress record at the quest's initial phase.
// Restarting a quest that previously completed or failed begins a fresh
// run; the old summary record is kept.
func Start(cat *state.Catalog, s *types.PlayerState, questID string, now time.Time) error {
	def, ok := cat.Quest(questID)
	if !ok {
		return state.ErrUnknownQuest
	}
	if _, active := s.Active[questID]; active {
		return state.ErrAlreadyActive
	}

	s.Active[questID] = &types.QuestProgress{
		QuestID:             questID,
		CurrentPhase:        def.InitialPhase,
		Clues:               map[string]types.DiscoveredClue{},
		CompletedObjectives: map[string]bool{},
		Evidence:            types.EvidenceNone,
		StartedAt:           now,
		UpdatedAt:           now,
	}
	return nil
}

// CompleteObjective marks an objective done. Idempotent: completing an
// objective twice is a no-op.
func CompleteObjective(cat *state.Catalog, s *types.PlayerState, questID, objectiveID string, now time.Time) error {
	def, ok := cat.Quest(questID)
	if !ok {
		return state.ErrUnknownQuest
	}
	p, ok := state.ActiveQuest(s, questID)
	if !ok {
		return state.ErrQuestNotActive
	}
	if !objectiveDefined(def, objectiveID) {
		return state.ErrUnknownObjective
	}
	if !p.CompletedObjectives[objectiveID] {
		p.CompletedObjectives[objectiveID] = true
		p.UpdatedAt = now
	}
	return nil
}

// Transition reports a phase change made by TryAdvance.
type Transition struct {
	QuestID string
	From    string
	To      string
}

// TryAdvance examines the phases directly reachable from the current
// phase and transitions to the eligible one with the lowest declared
// priority (ties broken by ascending phase id). Returns false when no
// reachable phase is eligible.
func TryAdvance(cat *state.Catalog, s *types.PlayerState, questID string, now time.Time) (Transition, bool) {
	def, ok := cat.Quest(questID)
	if !ok {
		return Transition{}, false
	}
	p, ok := state.ActiveQuest(s, questID)
	if !ok {
		return Transition{}, false
	}
	current, ok := def.Phases[p.CurrentPhase]
	if !ok {
		return Transition{}, false
	}

	var eligible []types.PhaseDef
	for _, nextID := range current.Next {
		next, ok := def.Phases[nextID]
		if !ok {
			continue
		}
		if Eligible(next, p) {
			eligible = append(eligible, next)
		}
	}
	if len(eligible) == 0 {
		return Transition{}, false
	}

	// Deterministic selection: declared priority, then phase id.
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Priority != eligible[j].Priority {
			return eligible[i].Priority < eligible[j].Priority
		}
		return eligible[i].ID < eligible[j].ID
	})

	tr := Transition{QuestID: questID, From: p.CurrentPhase, To: eligible[0].ID}
	p.CompletedPhases = append(p.CompletedPhases, p.CurrentPhase)
	p.CurrentPhase = eligible[0].ID
	p.UpdatedAt = now
	return tr, true
}

// Eligible reports whether a phase's unlock predicate is satisfied.
func Eligible(phase types.PhaseDef, p *types.QuestProgress) bool {
	if p.Evidence < phase.RequiredEvidence {
		return false
	}
	for _, obj := range phase.RequiredObjectives {
		if !p.CompletedObjectives[obj] {
			return false
		}
	}
	for _, clue := range phase.RequiredClues {
		if _, found := p.Clues[clue]; !found {
			return false
		}
	}
	return true
}

// Complete moves an active quest to the completed map and emits the
// reward request. Only valid from a phase flagged terminal.
func Complete(cat *state.Catalog, s *types.PlayerState, questID string, now time.Time) (types.QuestSummary, error) {
	def, ok := cat.Quest(questID)
	if !ok {
		return types.QuestSummary{}, state.ErrUnknownQuest
	}
	p, ok := state.ActiveQuest(s, questID)
	if !ok {
		return types.QuestSummary{}, state.ErrQuestNotActive
	}
	phase, ok := def.Phases[p.CurrentPhase]
	if !ok || !phase.Terminal {
		return types.QuestSummary{}, state.ErrNotTerminalPhase
	}

	summary := types.QuestSummary{
		QuestID:         questID,
		FinalEvidence:   p.Evidence,
		CompletedPhases: append(append([]string{}, p.CompletedPhases...), p.CurrentPhase),
		StartedAt:       p.StartedAt,
		FinishedAt:      now,
		Reward: types.RewardRequest{
			QuestID:  questID,
			Evidence: p.Evidence,
		},
	}
	delete(s.Active, questID)
	s.Completed[questID] = summary
	return summary, nil
}

// Fail moves an active quest to the failed map. Reachable from any
// active phase.
func Fail(s *types.PlayerState, questID, reason string, now time.Time) (types.QuestSummary, error) {
	p, ok := state.ActiveQuest(s, questID)
	if !ok {
		return types.QuestSummary{}, state.ErrQuestNotActive
	}
	summary := types.QuestSummary{
		QuestID:         questID,
		FinalEvidence:   p.Evidence,
		CompletedPhases: append([]string{}, p.CompletedPhases...),
		StartedAt:       p.StartedAt,
		FinishedAt:      now,
		FailureReason:   reason,
	}
	delete(s.Active, questID)
	s.Failed[questID] = summary
	return summary, nil
}

// FailConditionMet evaluates a quest's authored fail conditions through
// the same predicate engine dialogue uses. Quests with no fail
// conditions never fail automatically.
func FailConditionMet(def types.QuestDef, snap conditions.Snapshot) bool {
	if len(def.FailConditions) == 0 {
		return false
	}
	return conditions.EvalAll(def.FailConditions, snap)
}

// objectiveDefined checks the objective id against every phase.
func objectiveDefined(def types.QuestDef, objectiveID string) bool {
	for _, phase := range def.Phases {
		for _, obj := range phase.Objectives {
			if obj == objectiveID {
				return true
			}
		}
	}
	return false
}
