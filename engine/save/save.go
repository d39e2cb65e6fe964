// Package save implements JSON serialization of the player's narrative
// state. Where to put the bytes is the front end's business.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/inquest/types"
)

// FormatVersion is bumped on incompatible changes to the save shape.
const FormatVersion = 1

// SaveData is the JSON save envelope.
type SaveData struct {
	Version int
	State   types.PlayerState
}

// Save serializes player state to indented JSON bytes.
func Save(s *types.PlayerState) ([]byte, error) {
	data := SaveData{
		Version: FormatVersion,
		State:   *s,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into a player state. Maps are never nil
// after load, so a save written before a field existed stays usable.
func Load(data []byte) (*types.PlayerState, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	if sd.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported save version %d", sd.Version)
	}

	s := sd.State
	if s.Active == nil {
		s.Active = map[string]*types.QuestProgress{}
	}
	if s.Completed == nil {
		s.Completed = map[string]types.QuestSummary{}
	}
	if s.Failed == nil {
		s.Failed = map[string]types.QuestSummary{}
	}
	if s.Relationships == nil {
		s.Relationships = map[string]*types.NpcRelationship{}
	}
	if s.WorldFlags == nil {
		s.WorldFlags = map[string]bool{}
	}
	for _, p := range s.Active {
		if p.Clues == nil {
			p.Clues = map[string]types.DiscoveredClue{}
		}
		if p.CompletedObjectives == nil {
			p.CompletedObjectives = map[string]bool{}
		}
	}
	for _, r := range s.Relationships {
		if r.Flags == nil {
			r.Flags = map[string]bool{}
		}
	}
	return &s, nil
}
