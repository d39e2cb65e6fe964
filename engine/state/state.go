// Package state holds the immutable content catalog and the constructors
// and accessors for mutable player state.
package state

import "github.com/nathoo/inquest/types"

// Catalog is the read-only content catalog produced by the loader.
// It is never mutated after Load returns.
type Catalog struct {
	Quests map[string]types.QuestDef
	Npcs   map[string]types.NpcDef
}

// Quest looks up a quest definition by id.
func (c *Catalog) Quest(id string) (types.QuestDef, bool) {
	q, ok := c.Quests[id]
	return q, ok
}

// Clue looks up a clue definition within a quest.
func (c *Catalog) Clue(questID, clueID string) (types.ClueDef, bool) {
	q, ok := c.Quests[questID]
	if !ok {
		return types.ClueDef{}, false
	}
	cl, ok := q.Clues[clueID]
	return cl, ok
}

// Npc looks up an NPC definition by id.
func (c *Catalog) Npc(id string) (types.NpcDef, bool) {
	n, ok := c.Npcs[id]
	return n, ok
}

// Conversation looks up a conversation tree registered for an NPC.
func (c *Catalog) Conversation(npcID, convID string) (types.ConversationDef, bool) {
	n, ok := c.Npcs[npcID]
	if !ok {
		return types.ConversationDef{}, false
	}
	conv, ok := n.Conversations[convID]
	return conv, ok
}

// NewState creates a fresh player state with all maps initialized.
func NewState() *types.PlayerState {
	return &types.PlayerState{
		Active:        map[string]*types.QuestProgress{},
		Completed:     map[string]types.QuestSummary{},
		Failed:        map[string]types.QuestSummary{},
		Relationships: map[string]*types.NpcRelationship{},
		WorldFlags:    map[string]bool{},
	}
}

// ActiveQuest returns the in-progress record for a quest, if any.
func ActiveQuest(s *types.PlayerState, questID string) (*types.QuestProgress, bool) {
	p, ok := s.Active[questID]
	return p, ok
}

// WorldFlag returns the value of a world flag. Unset flags are false.
func WorldFlag(s *types.PlayerState, name string) bool {
	return s.WorldFlags[name]
}

// SetWorldFlag sets a world flag.
func SetWorldFlag(s *types.PlayerState, name string, value bool) {
	s.WorldFlags[name] = value
}

// ClueFound reports whether a clue has been discovered on an active
// quest. Resolved quests keep only a summary, so their clues no longer
// report as found.
func ClueFound(s *types.PlayerState, questID, clueID string) bool {
	if p, ok := s.Active[questID]; ok {
		_, found := p.Clues[clueID]
		return found
	}
	return false
}
