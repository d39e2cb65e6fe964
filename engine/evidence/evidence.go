// Package evidence implements per-quest clue accumulation and the derived
// evidence-strength classification.
package evidence

import (
	"time"

	"github.com/nathoo/inquest/engine/state"
	"github.com/nathoo/inquest/types"
)

// Classification breakpoints over the sum of discovered clue strengths.
const (
	weakThreshold         = 1.0
	moderateThreshold     = 3.0
	strongThreshold       = 6.0
	overwhelmingThreshold = 9.0
)

// Classify maps a summed clue strength to an evidence classification.
func Classify(total float64) types.EvidenceStrength {
	switch {
	case total >= overwhelmingThreshold:
		return types.EvidenceOverwhelming
	case total >= strongThreshold:
		return types.EvidenceStrong
	case total >= moderateThreshold:
		return types.EvidenceModerate
	case total >= weakThreshold:
		return types.EvidenceWeak
	default:
		return types.EvidenceNone
	}
}

// Parse converts a strength name from authored content to its value.
func Parse(name string) (types.EvidenceStrength, bool) {
	switch name {
	case "", "none":
		return types.EvidenceNone, true
	case "weak":
		return types.EvidenceWeak, true
	case "moderate":
		return types.EvidenceModerate, true
	case "strong":
		return types.EvidenceStrong, true
	case "overwhelming":
		return types.EvidenceOverwhelming, true
	default:
		return types.EvidenceNone, false
	}
}

// Total sums the catalog strengths of the clues discovered on a quest.
func Total(p *types.QuestProgress, def types.QuestDef) float64 {
	var total float64
	for clueID := range p.Clues {
		if cl, ok := def.Clues[clueID]; ok {
			total += cl.Strength
		}
	}
	return total
}

// Recompute refreshes the cached classification on a quest record.
func Recompute(p *types.QuestProgress, def types.QuestDef) types.EvidenceStrength {
	p.Evidence = Classify(Total(p, def))
	return p.Evidence
}

// Outcome reports the result of recording a clue.
type Outcome struct {
	AlreadyKnown bool
	NewStrength  types.EvidenceStrength
}

// RecordClue inserts a clue into a quest's discovered set and recomputes
// the cached evidence strength. Rediscovery is a side-effect-free no-op.
func RecordClue(cat *state.Catalog, s *types.PlayerState, questID, clueID, location string, now time.Time) (Outcome, error) {
	def, ok := cat.Quest(questID)
	if !ok {
		return Outcome{}, state.ErrUnknownQuest
	}
	clue, ok := def.Clues[clueID]
	if !ok {
		return Outcome{}, state.ErrUnknownClue
	}
	p, ok := state.ActiveQuest(s, questID)
	if !ok {
		return Outcome{}, state.ErrQuestNotActive
	}

	if _, known := p.Clues[clueID]; known {
		return Outcome{AlreadyKnown: true, NewStrength: p.Evidence}, nil
	}

	if location == "" {
		location = clue.Location
	}
	p.Clues[clueID] = types.DiscoveredClue{
		ClueID:   clueID,
		QuestID:  questID,
		At:       now,
		Location: location,
		Method:   clue.DiscoveryMethod,
	}
	p.UpdatedAt = now

	return Outcome{NewStrength: Recompute(p, def)}, nil
}

// Strength returns the current classification for a quest, EvidenceNone
// if the quest is not active.
func Strength(s *types.PlayerState, questID string) types.EvidenceStrength {
	if p, ok := state.ActiveQuest(s, questID); ok {
		return p.Evidence
	}
	return types.EvidenceNone
}
