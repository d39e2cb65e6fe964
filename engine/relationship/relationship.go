// Package relationship tracks per-NPC trust values, derived trust levels,
// and interaction history.
package relationship

import (
	"math"
	"time"

	"github.com/nathoo/inquest/types"
)

// Trust value bounds. ModifyTrust clamps into this range.
const (
	TrustMin = -100
	TrustMax = 100
)

// Get returns the relationship record for an NPC, creating a neutral one
// on first access.
func Get(s *types.PlayerState, npcID string) *types.NpcRelationship {
	if r, ok := s.Relationships[npcID]; ok {
		return r
	}
	r := &types.NpcRelationship{
		NpcID: npcID,
		Flags: map[string]bool{},
	}
	s.Relationships[npcID] = r
	return r
}

// TrustValue returns the current trust value without creating a record.
func TrustValue(s *types.PlayerState, npcID string) int {
	if r, ok := s.Relationships[npcID]; ok {
		return r.Trust
	}
	return 0
}

// Level derives the discrete trust band from a trust value.
func Level(value int) types.TrustLevel {
	switch {
	case value <= -60:
		return types.TrustHostile
	case value <= -20:
		return types.TrustSuspicious
	case value < 20:
		return types.TrustNeutral
	case value < 60:
		return types.TrustFriendly
	case value < 90:
		return types.TrustTrusting
	default:
		return types.TrustConfidant
	}
}

// ParseLevel converts a trust level name from authored content.
func ParseLevel(name string) (types.TrustLevel, bool) {
	switch name {
	case "hostile":
		return types.TrustHostile, true
	case "suspicious":
		return types.TrustSuspicious, true
	case "neutral":
		return types.TrustNeutral, true
	case "friendly":
		return types.TrustFriendly, true
	case "trusting":
		return types.TrustTrusting, true
	case "confidant":
		return types.TrustConfidant, true
	default:
		return types.TrustNeutral, false
	}
}

// ScaleDelta applies an NPC's trust-building speed to a positive delta.
// Negative deltas land unscaled: reluctant NPCs warm up slowly but sour
// at the normal rate.
func ScaleDelta(delta int, p types.Personality) int {
	if delta <= 0 || p.TrustSpeed == 0 {
		return delta
	}
	return int(math.Round(float64(delta) * p.TrustSpeed))
}

// ModifyTrust applies a delta to an NPC's trust value, clamped to
// [TrustMin, TrustMax]. Returns the value before and after.
func ModifyTrust(s *types.PlayerState, npcID string, delta int) (old, now int) {
	r := Get(s, npcID)
	old = r.Trust
	now = old + delta
	if now < TrustMin {
		now = TrustMin
	}
	if now > TrustMax {
		now = TrustMax
	}
	r.Trust = now
	return old, now
}

// SetFlag records a one-off dialogue unlock on the relationship.
func SetFlag(s *types.PlayerState, npcID, flag string) {
	Get(s, npcID).Flags[flag] = true
}

// HasFlag reports whether a dialogue flag has been set for an NPC.
func HasFlag(s *types.PlayerState, npcID, flag string) bool {
	if r, ok := s.Relationships[npcID]; ok {
		return r.Flags[flag]
	}
	return false
}

// RecordInteraction appends a conversation record to the NPC's history.
// This is the only write path for relationship history.
func RecordInteraction(s *types.PlayerState, npcID string, rec types.InteractionRecord, now time.Time) {
	r := Get(s, npcID)
	r.History = append(r.History, rec)
	r.ConversationCount++
	r.LastInteraction = now
}

// FirstMeeting reports whether the player has never finished a
// conversation with this NPC.
func FirstMeeting(s *types.PlayerState, npcID string) bool {
	r, ok := s.Relationships[npcID]
	return !ok || r.ConversationCount == 0
}
