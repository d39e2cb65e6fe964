// Package conditions implements the pure predicate engine shared by
// dialogue gating and quest fail detection. Evaluation never mutates
// state: calling Eval twice with the same snapshot yields the same result.
package conditions

import (
	"github.com/nathoo/inquest/engine/evidence"
	"github.com/nathoo/inquest/engine/relationship"
	"github.com/nathoo/inquest/types"
)

// Snapshot bundles read-only views of the player's narrative state for
// one evaluation pass. NpcID names the NPC in focus so npc-relative
// conditions (trust, choice flags, first meeting) can omit the id.
type Snapshot struct {
	Active        map[string]*types.QuestProgress
	Completed     map[string]types.QuestSummary
	Relationships map[string]*types.NpcRelationship
	WorldFlags    map[string]bool
	Location      string
	Hour          int
	NpcID         string
}

// Eval evaluates a single condition against the snapshot.
// Unknown condition types evaluate false; the loader rejects them at
// content-load time, so this only matters for hand-built catalogs.
func Eval(c types.Condition, snap Snapshot) bool {
	switch c.Type {
	case "quest_active":
		quest, _ := c.Params["quest"].(string)
		_, ok := snap.Active[quest]
		return ok

	case "quest_completed":
		quest, _ := c.Params["quest"].(string)
		_, ok := snap.Completed[quest]
		return ok

	case "clue_found":
		// Active quests only; resolved quests keep no clue set.
		quest, _ := c.Params["quest"].(string)
		clue, _ := c.Params["clue"].(string)
		if p, ok := snap.Active[quest]; ok {
			_, found := p.Clues[clue]
			return found
		}
		return false

	case "trust_at_least":
		npc := snap.npcParam(c)
		trust := 0
		if r, ok := snap.Relationships[npc]; ok {
			trust = r.Trust
		}
		if name, ok := c.Params["level"].(string); ok {
			want, known := relationship.ParseLevel(name)
			return known && relationship.Level(trust) >= want
		}
		return trust >= toInt(c.Params["value"])

	case "time_between":
		from := toInt(c.Params["from"])
		to := toInt(c.Params["to"])
		if from <= to {
			return snap.Hour >= from && snap.Hour < to
		}
		// Wrapping range, e.g. 22-6.
		return snap.Hour >= from || snap.Hour < to

	case "location_is":
		location, _ := c.Params["location"].(string)
		return snap.Location == location

	case "choice_flag":
		npc := snap.npcParam(c)
		flag, _ := c.Params["flag"].(string)
		if r, ok := snap.Relationships[npc]; ok {
			return r.Flags[flag]
		}
		return false

	case "world_flag":
		flag, _ := c.Params["flag"].(string)
		want := true
		if v, ok := c.Params["value"].(bool); ok {
			want = v
		}
		return snap.WorldFlags[flag] == want

	case "evidence_at_least":
		quest, _ := c.Params["quest"].(string)
		name, _ := c.Params["strength"].(string)
		want, known := evidence.Parse(name)
		if !known {
			return false
		}
		if p, ok := snap.Active[quest]; ok {
			return p.Evidence >= want
		}
		return false

	case "first_meeting":
		npc := snap.npcParam(c)
		r, ok := snap.Relationships[npc]
		return !ok || r.ConversationCount == 0

	case "not":
		if c.Inner == nil {
			return true
		}
		return !Eval(*c.Inner, snap)

	default:
		return false
	}
}

// EvalAll returns true if every condition passes (AND logic).
// An empty condition list is vacuously true.
func EvalAll(cs []types.Condition, snap Snapshot) bool {
	for _, c := range cs {
		if !Eval(c, snap) {
			return false
		}
	}
	return true
}

// npcParam returns the condition's npc parameter, falling back to the
// snapshot's NPC in focus.
func (snap Snapshot) npcParam(c types.Condition) string {
	if npc, ok := c.Params["npc"].(string); ok && npc != "" {
		return npc
	}
	return snap.NpcID
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
