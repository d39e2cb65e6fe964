// Package dialogue implements conversation selection and traversal:
// picking the most relevant conversation for an NPC, walking its node
// graph, rendering text variants through the NPC's personality, and
// gating choices on the shared condition evaluator.
//
// The package mutates only the in-flight Conversation handle. All state
// mutations (consequences, interaction history) flow back to the caller,
// which applies them and owns the write paths.
package dialogue

import (
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/nathoo/inquest/engine/conditions"
	"github.com/nathoo/inquest/engine/state"
	"github.com/nathoo/inquest/types"
)

// Category weights for conversation selection. Quest content outranks
// flavor content at equal trust.
var categoryWeight = map[string]float64{
	types.CategoryQuestInitiation:    60,
	types.CategoryQuestInvestigation: 50,
	types.CategoryLore:               40,
	types.CategoryTrading:            30,
	types.CategoryInformation:        20,
	types.CategoryCasual:             10,
}

// reluctancePenalty is the scoring penalty per point of information
// reluctance, applied to information and lore conversations only.
const reluctancePenalty = 20

// Score computes the selection score for one conversation.
func Score(conv types.ConversationDef, p types.Personality, trust int) float64 {
	score := categoryWeight[conv.Category] + float64(trust)/10
	if conv.Category == types.CategoryInformation || conv.Category == types.CategoryLore {
		score -= p.Reluctance * reluctancePenalty
	}
	return score
}

// Select returns the applicable conversation with the highest score.
// Ties break toward the lexically smaller conversation id, so repeated
// selection over identical state is stable.
func Select(npc types.NpcDef, snap conditions.Snapshot) (types.ConversationDef, bool) {
	ids := make([]string, 0, len(npc.Conversations))
	for id := range npc.Conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	trust := 0
	if r, ok := snap.Relationships[npc.ID]; ok {
		trust = r.Trust
	}

	var best types.ConversationDef
	bestScore := 0.0
	found := false
	for _, id := range ids {
		conv := npc.Conversations[id]
		if !conditions.EvalAll(conv.Conditions, snap) {
			continue
		}
		if s := Score(conv, npc.Personality, trust); !found || s > bestScore {
			best, bestScore, found = conv, s, true
		}
	}
	return best, found
}

// Conversation is the handle for one in-flight conversation. It tracks
// traversal position and accumulates the interaction record; it never
// touches player state directly.
type Conversation struct {
	NpcID          string
	ConversationID string
	StartedAt      time.Time

	npc  types.NpcDef
	def  types.ConversationDef
	node string

	presented   []types.ChoiceDef // choices shown by the last Present call
	choicesMade []string
	trustDelta  int
	outcomes    []string
	entered     map[string]bool // nodes whose on-enter consequences already ran
	ended       bool
}

// Begin opens a conversation at its start node.
func Begin(npc types.NpcDef, def types.ConversationDef, now time.Time) *Conversation {
	return &Conversation{
		NpcID:          npc.ID,
		ConversationID: def.ID,
		StartedAt:      now,
		npc:            npc,
		def:            def,
		node:           types.StartNode,
		entered:        map[string]bool{},
	}
}

// Choice is one selectable option as shown to the player.
type Choice struct {
	ID   string
	Text string
}

// Presented is the rendered form of the current node.
type Presented struct {
	NodeID  string
	Speaker string
	Text    string
	Choices []Choice
	Over    bool // no choices passed their conditions; conversation ends
}

// Enter returns the current node's on-enter consequences the first time
// the node is reached in this conversation, nil on revisits. Callers
// apply them before Present so choice gates see their effects.
func (c *Conversation) Enter() ([]types.Consequence, error) {
	if c.ended {
		return nil, nil
	}
	node, ok := c.def.Nodes[c.node]
	if !ok {
		c.ended = true
		return nil, c.contentErr(c.node, "node not defined")
	}
	if c.entered[node.ID] {
		return nil, nil
	}
	c.entered[node.ID] = true
	return node.OnEnter, nil
}

// Present renders the current node for the given NPC mood: variant
// selection, personality text transforms, condition-filtered choices.
// Re-presenting the same node is side-effect free. A conversation whose
// node offers no passing choices is over, and the caller must close it
// out with exactly one interaction record.
func (c *Conversation) Present(mood string, snap conditions.Snapshot) (Presented, error) {
	if c.ended {
		return Presented{NodeID: c.node, Over: true}, nil
	}
	node, ok := c.def.Nodes[c.node]
	if !ok {
		c.ended = true
		return Presented{}, c.contentErr(c.node, "node not defined")
	}

	variant, ok := SelectVariant(node, mood)
	if !ok {
		c.ended = true
		return Presented{}, c.contentErr(c.node, "no default text variant")
	}

	out := Presented{
		NodeID:  node.ID,
		Speaker: node.Speaker,
		Text:    RenderText(c.npc, node.ID, mood, variant.Text),
	}
	c.presented = c.presented[:0]
	for _, ch := range node.Choices {
		if conditions.EvalAll(ch.Conditions, snap) {
			c.presented = append(c.presented, ch)
			out.Choices = append(out.Choices, Choice{ID: ch.ID, Text: ch.Text})
		}
	}
	if len(out.Choices) == 0 {
		out.Over = true
		c.ended = true
	}
	return out, nil
}

// Choose validates a choice against the last presented set and advances
// to its target node. ErrInvalidChoice leaves the conversation exactly
// as it was. Consequences are returned for the caller to apply once.
func (c *Conversation) Choose(choiceID string) ([]types.Consequence, error) {
	if c.ended {
		return nil, state.ErrNoActiveConversation
	}
	var choice *types.ChoiceDef
	for i := range c.presented {
		if c.presented[i].ID == choiceID {
			choice = &c.presented[i]
			break
		}
	}
	if choice == nil {
		return nil, state.ErrInvalidChoice
	}

	c.choicesMade = append(c.choicesMade, choice.ID)
	c.presented = nil
	if choice.Next == types.TerminalNode {
		c.ended = true
	} else {
		c.node = choice.Next
	}
	return choice.Consequences, nil
}

// Ended reports whether the conversation has reached its end.
func (c *Conversation) Ended() bool { return c.ended }

// End marks the conversation finished regardless of position.
func (c *Conversation) End() { c.ended = true }

// NoteTrust accumulates a trust delta into the pending interaction record.
func (c *Conversation) NoteTrust(delta int) { c.trustDelta += delta }

// NoteOutcome tags the pending interaction record with an outcome.
func (c *Conversation) NoteOutcome(tag string) { c.outcomes = append(c.outcomes, tag) }

// Record produces the interaction record for this conversation.
func (c *Conversation) Record(now time.Time) types.InteractionRecord {
	return types.InteractionRecord{
		At:             now,
		ConversationID: c.ConversationID,
		Choices:        append([]string{}, c.choicesMade...),
		TrustDelta:     c.trustDelta,
		Outcomes:       append([]string{}, c.outcomes...),
	}
}

func (c *Conversation) contentErr(nodeID, detail string) error {
	return &state.ContentError{
		NpcID:          c.NpcID,
		ConversationID: c.ConversationID,
		NodeID:         nodeID,
		Detail:         detail,
	}
}

// SelectVariant picks the node's text variant for a mood: the matching
// variant with the highest weight, falling back to the unconditioned
// default. Returns false when the node has no default variant.
func SelectVariant(node types.NodeDef, mood string) (types.TextVariant, bool) {
	best := -1
	for i, v := range node.Variants {
		if v.Mood != mood || mood == "" {
			continue
		}
		if best == -1 || v.Weight > node.Variants[best].Weight {
			best = i
		}
	}
	if best >= 0 {
		return node.Variants[best], true
	}
	for i, v := range node.Variants {
		if v.Mood != "" {
			continue
		}
		if best == -1 || v.Weight > node.Variants[best].Weight {
			best = i
		}
	}
	if best >= 0 {
		return node.Variants[best], true
	}
	return types.TextVariant{}, false
}

// RenderText applies the NPC's personality to a variant's text.
// Verbose NPCs append one of their speech patterns, picked by a stable
// hash of the npc/node/mood triple so the same line always renders the
// same way. Terse NPCs trim to the first sentence.
func RenderText(npc types.NpcDef, nodeID, mood, text string) string {
	p := npc.Personality
	switch {
	case p.Verbosity >= 1.0 && len(p.SpeechPatterns) > 0:
		h := fnv.New32a()
		h.Write([]byte(npc.ID + "/" + nodeID + "/" + mood))
		pattern := p.SpeechPatterns[int(h.Sum32())%len(p.SpeechPatterns)]
		return text + " " + pattern
	case p.Verbosity > 0 && p.Verbosity < 0.5:
		return firstSentence(text)
	default:
		return text
	}
}

// firstSentence cuts text after its first sentence terminator.
func firstSentence(text string) string {
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		return text[:i+1]
	}
	return text
}
