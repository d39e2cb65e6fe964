// Package types defines the shared data structures for the Inquest engine.
// This package contains only type definitions and their string forms — no
// engine logic.
package types

import "time"

// Reserved node identifiers in conversation graphs.
const (
	StartNode    = "start"            // entry node of every conversation
	TerminalNode = "end_conversation" // sentinel target that ends the conversation
)

// Speaker tags for dialogue nodes.
const (
	SpeakerNpc      = "npc"
	SpeakerPlayer   = "player"
	SpeakerNarrator = "narrator"
)

// Conversation categories, ordered by selection weight.
const (
	CategoryQuestInitiation    = "quest_initiation"
	CategoryQuestInvestigation = "quest_investigation"
	CategoryLore               = "lore"
	CategoryTrading            = "trading"
	CategoryInformation        = "information"
	CategoryCasual             = "casual"
)

// EvidenceStrength classifies the summed strength of discovered clues.
type EvidenceStrength int

const (
	EvidenceNone EvidenceStrength = iota
	EvidenceWeak
	EvidenceModerate
	EvidenceStrong
	EvidenceOverwhelming
)

func (e EvidenceStrength) String() string {
	switch e {
	case EvidenceWeak:
		return "weak"
	case EvidenceModerate:
		return "moderate"
	case EvidenceStrong:
		return "strong"
	case EvidenceOverwhelming:
		return "overwhelming"
	default:
		return "none"
	}
}

// TrustLevel is the discrete band derived from a relationship's trust value.
type TrustLevel int

const (
	TrustHostile TrustLevel = iota
	TrustSuspicious
	TrustNeutral
	TrustFriendly
	TrustTrusting
	TrustConfidant
)

func (t TrustLevel) String() string {
	switch t {
	case TrustHostile:
		return "hostile"
	case TrustSuspicious:
		return "suspicious"
	case TrustFriendly:
		return "friendly"
	case TrustTrusting:
		return "trusting"
	case TrustConfidant:
		return "confidant"
	default:
		return "neutral"
	}
}

// Condition is a predicate evaluated against a player snapshot.
// "not" conditions carry their negated condition in Inner.
type Condition struct {
	Type   string         // "quest_active", "clue_found", "trust_at_least", etc.
	Params map[string]any // condition-specific parameters
	Inner  *Condition     // for Not(): the negated inner condition
}

// Consequence is a single atomic state mutation triggered by dialogue.
type Consequence struct {
	Type   string // "trust", "reveal_clue", "start_quest", etc.
	Params map[string]any
}

// ClueDef is the catalog definition of a discoverable clue.
type ClueDef struct {
	ID              string
	Name            string
	Strength        float64 // non-negative contribution to evidence strength
	DiscoveryMethod string
	Location        string
	CarefulReading  bool // authored hint: the clue is easy to miss
}

// PhaseDef is one stage in a quest's progression graph.
type PhaseDef struct {
	ID                 string
	Title              string
	Description        string
	Priority           int  // tie-break when several phases unlock at once; lower wins
	Terminal           bool // the quest may be completed from this phase
	RequiredEvidence   EvidenceStrength
	RequiredObjectives []string
	RequiredClues      []string
	Objectives         []string // objective ids belonging to this phase
	Next               []string // phase ids directly reachable from here
}

// QuestDef is the immutable catalog definition of a quest.
type QuestDef struct {
	ID             string
	Title          string
	Description    string
	InitialPhase   string
	Phases         map[string]PhaseDef
	Clues          map[string]ClueDef
	FailConditions []Condition // quest fails while active if these all hold
}

// Personality holds the authored modifiers shaping how an NPC speaks.
// The NPC's emotional state is a gameplay input, not part of this set.
type Personality struct {
	Verbosity      float64 // >= 1.0 pads text with speech patterns, < 0.5 trims it
	TrustSpeed     float64 // scales positive trust deltas
	Reluctance     float64 // penalizes information/lore conversation scoring
	SpeechPatterns []string
}

// TextVariant is one guarded rendering of a node's text.
// An empty Mood marks the unconditioned default variant.
type TextVariant struct {
	Text   string
	Mood   string
	Weight float64 // tie-break among variants with the same mood
}

// ChoiceDef is a player option on a dialogue node.
type ChoiceDef struct {
	ID           string
	Text         string
	Next         string // node id or TerminalNode
	Conditions   []Condition
	Consequences []Consequence
}

// NodeDef is one node in a conversation graph.
// OnEnter consequences run once per conversation when the node is reached
// (clue reveals, quest triggers attached to the node itself).
type NodeDef struct {
	ID       string
	Speaker  string
	Variants []TextVariant
	Choices  []ChoiceDef
	OnEnter  []Consequence
}

// ConversationDef is a complete conversation tree for one NPC.
type ConversationDef struct {
	NpcID      string
	ID         string
	Title      string
	Category   string
	Conditions []Condition // applicability gate
	Nodes      map[string]NodeDef
}

// NpcDef is the catalog definition of a conversable NPC.
type NpcDef struct {
	ID                  string
	Name                string
	Description         string
	DefaultConversation string
	Personality         Personality
	Conversations       map[string]ConversationDef
}

// DiscoveredClue records one clue discovery with its context.
type DiscoveredClue struct {
	ClueID   string
	QuestID  string
	At       time.Time
	Location string
	Method   string
}

// QuestProgress tracks a player's progress through one quest.
type QuestProgress struct {
	QuestID             string
	CurrentPhase        string
	CompletedPhases     []string // append-only
	Clues               map[string]DiscoveredClue
	CompletedObjectives map[string]bool
	Evidence            EvidenceStrength // cached; always classify(sum of clue strengths)
	Notes               []string
	StartedAt           time.Time
	UpdatedAt           time.Time
}

// RewardRequest is the opaque reward ask emitted on quest completion.
// Resolving it into experience/items is the progression collaborator's job.
type RewardRequest struct {
	QuestID  string
	Evidence EvidenceStrength
}

// QuestSummary is the record kept for a quest after a terminal transition.
type QuestSummary struct {
	QuestID         string
	FinalEvidence   EvidenceStrength
	CompletedPhases []string
	StartedAt       time.Time
	FinishedAt      time.Time
	FailureReason   string // empty for completed quests
	Reward          RewardRequest
}

// InteractionRecord is one entry in an NPC's conversation history.
type InteractionRecord struct {
	At             time.Time
	ConversationID string
	Choices        []string
	TrustDelta     int
	Outcomes       []string
}

// NpcRelationship tracks one player-NPC pair.
type NpcRelationship struct {
	NpcID             string
	Trust             int                 // clamped to [-100, 100]
	History           []InteractionRecord // append-only
	ConversationCount int
	LastInteraction   time.Time
	Flags             map[string]bool // one-off dialogue unlocks
}

// PlayerState is the complete mutable narrative state for one player session.
type PlayerState struct {
	Active        map[string]*QuestProgress
	Completed     map[string]QuestSummary
	Failed        map[string]QuestSummary
	Relationships map[string]*NpcRelationship
	WorldFlags    map[string]bool
	Location      string
	Hour          int // 0-23, set by the caller
}

// Event is emitted by engine operations for presentation feedback.
type Event struct {
	Type string
	Data map[string]any
}
