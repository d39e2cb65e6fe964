package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/inquest/engine/evidence"
	"github.com/nathoo/inquest/engine/relationship"
	"github.com/nathoo/inquest/engine/state"
	"github.com/nathoo/inquest/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"quest_active":      true,
	"quest_completed":   true,
	"clue_found":        true,
	"trust_at_least":    true,
	"time_between":      true,
	"location_is":       true,
	"choice_flag":       true,
	"world_flag":        true,
	"evidence_at_least": true,
	"first_meeting":     true,
	"not":               true,
}

// Known consequence types.
var validConsequenceTypes = map[string]bool{
	"trust":           true,
	"reveal_clue":     true,
	"start_quest":     true,
	"complete_quest":  true,
	"set_flag":        true,
	"unlock_dialogue": true,
}

// Known conversation categories.
var validCategories = map[string]bool{
	types.CategoryQuestInitiation:    true,
	types.CategoryQuestInvestigation: true,
	types.CategoryLore:               true,
	types.CategoryTrading:            true,
	types.CategoryInformation:        true,
	types.CategoryCasual:             true,
}

// validate checks the compiled catalog for referential integrity.
func validate(cat *state.Catalog) error {
	ve := &ValidationError{}

	for _, q := range cat.Quests {
		validateQuest(q, cat, ve)
	}
	for _, npc := range cat.Npcs {
		validateNpc(npc, cat, ve)
	}

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateQuest(q types.QuestDef, cat *state.Catalog, ve *ValidationError) {
	if q.Title == "" {
		ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q: title is required", q.ID))
	}
	if q.InitialPhase == "" {
		ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q: initial_phase is required", q.ID))
	} else if _, ok := q.Phases[q.InitialPhase]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"quest %q: initial phase %q not defined", q.ID, q.InitialPhase))
	}

	// Objective ids across all phases, for required_objectives checks.
	objectives := map[string]bool{}
	for _, phase := range q.Phases {
		for _, obj := range phase.Objectives {
			objectives[obj] = true
		}
	}

	for _, phase := range q.Phases {
		for _, next := range phase.Next {
			if _, ok := q.Phases[next]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q phase %q: next phase %q not defined", q.ID, phase.ID, next))
			}
		}
		for _, clue := range phase.RequiredClues {
			if _, ok := q.Clues[clue]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q phase %q: required clue %q not defined", q.ID, phase.ID, clue))
			}
		}
		for _, obj := range phase.RequiredObjectives {
			if !objectives[obj] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q phase %q: required objective %q not defined in any phase", q.ID, phase.ID, obj))
			}
		}
	}

	for _, clue := range q.Clues {
		if clue.Strength < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q clue %q: strength must be non-negative", q.ID, clue.ID))
		}
	}

	// A terminal phase must be reachable from the initial phase, or the
	// quest can never be completed.
	if _, ok := q.Phases[q.InitialPhase]; ok && !terminalReachable(q) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"quest %q: no terminal phase reachable from initial phase %q", q.ID, q.InitialPhase))
	}

	validateConditions(q.FailConditions, fmt.Sprintf("quest %q fail_conditions", q.ID), cat, ve)
}

// terminalReachable walks the phase graph from the initial phase.
func terminalReachable(q types.QuestDef) bool {
	seen := map[string]bool{}
	stack := []string{q.InitialPhase}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		phase, ok := q.Phases[id]
		if !ok {
			continue
		}
		if phase.Terminal {
			return true
		}
		stack = append(stack, phase.Next...)
	}
	return false
}

func validateNpc(npc types.NpcDef, cat *state.Catalog, ve *ValidationError) {
	if npc.Name == "" {
		ve.Errors = append(ve.Errors, fmt.Sprintf("npc %q: name is required", npc.ID))
	}
	if npc.DefaultConversation != "" {
		if _, ok := npc.Conversations[npc.DefaultConversation]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"npc %q: default conversation %q not defined", npc.ID, npc.DefaultConversation))
		}
	}

	for _, conv := range npc.Conversations {
		validateConversation(npc, conv, cat, ve)
	}
}

func validateConversation(npc types.NpcDef, conv types.ConversationDef, cat *state.Catalog, ve *ValidationError) {
	where := fmt.Sprintf("npc %q conversation %q", npc.ID, conv.ID)

	if !validCategories[conv.Category] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"%s: unknown category %q", where, conv.Category))
	}
	if _, ok := conv.Nodes[types.StartNode]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"%s: missing %q node", where, types.StartNode))
	}

	validateConditions(conv.Conditions, where, cat, ve)

	reachable := map[string]bool{}
	stack := []string{types.StartNode}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[id] || id == types.TerminalNode {
			continue
		}
		reachable[id] = true
		if node, ok := conv.Nodes[id]; ok {
			for _, ch := range node.Choices {
				stack = append(stack, ch.Next)
			}
		}
	}

	for _, node := range conv.Nodes {
		nodeWhere := fmt.Sprintf("%s node %q", where, node.ID)

		hasDefault := false
		for _, v := range node.Variants {
			if v.Mood == "" {
				hasDefault = true
				break
			}
		}
		if !hasDefault {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: no default text variant", nodeWhere))
		}

		if node.Speaker != types.SpeakerNpc && node.Speaker != types.SpeakerPlayer && node.Speaker != types.SpeakerNarrator {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: unknown speaker %q", nodeWhere, node.Speaker))
		}

		seenChoices := map[string]bool{}
		for _, ch := range node.Choices {
			if seenChoices[ch.ID] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"%s: duplicate choice id %q", nodeWhere, ch.ID))
			}
			seenChoices[ch.ID] = true

			if ch.Next != types.TerminalNode {
				if _, ok := conv.Nodes[ch.Next]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"%s choice %q: target node %q not defined", nodeWhere, ch.ID, ch.Next))
				}
			}
			validateConditions(ch.Conditions, nodeWhere+" choice "+ch.ID, cat, ve)
			validateConsequences(ch.Consequences, nodeWhere+" choice "+ch.ID, cat, ve)
		}

		validateConsequences(node.OnEnter, nodeWhere+" on_enter", cat, ve)

		if !reachable[node.ID] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s: unreachable from %q", nodeWhere, types.StartNode))
		}
	}
}

func validateConditions(conds []types.Condition, where string, cat *state.Catalog, ve *ValidationError) {
	for _, cond := range conds {
		if !validConditionTypes[cond.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: unknown condition type %q", where, cond.Type))
			continue
		}

		switch cond.Type {
		case "quest_active", "quest_completed":
			questRef(cond.Params, where, cond.Type, cat, ve)
		case "clue_found":
			clueRef(cond.Params, where, cond.Type, cat, ve)
		case "evidence_at_least":
			questRef(cond.Params, where, cond.Type, cat, ve)
			name, _ := cond.Params["strength"].(string)
			if _, ok := evidence.Parse(name); !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"%s: unknown evidence strength %q", where, name))
			}
		case "trust_at_least":
			npcRef(cond.Params, where, cond.Type, cat, ve)
			if name, ok := cond.Params["level"].(string); ok {
				if _, known := relationship.ParseLevel(name); !known {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"%s: unknown trust level %q", where, name))
				}
			}
		case "choice_flag", "first_meeting":
			npcRef(cond.Params, where, cond.Type, cat, ve)
		case "not":
			if cond.Inner != nil {
				validateConditions([]types.Condition{*cond.Inner}, where, cat, ve)
			}
		}
	}
}

func validateConsequences(cons []types.Consequence, where string, cat *state.Catalog, ve *ValidationError) {
	for _, c := range cons {
		if !validConsequenceTypes[c.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: unknown consequence type %q", where, c.Type))
			continue
		}

		switch c.Type {
		case "trust", "unlock_dialogue":
			npcRef(c.Params, where, c.Type, cat, ve)
		case "reveal_clue":
			clueRef(c.Params, where, c.Type, cat, ve)
		case "start_quest", "complete_quest":
			questRef(c.Params, where, c.Type, cat, ve)
		}
	}
}

// questRef checks that a "quest" parameter names a defined quest.
func questRef(params map[string]any, where, what string, cat *state.Catalog, ve *ValidationError) {
	quest, _ := params["quest"].(string)
	if quest == "" {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %s requires a quest id", where, what))
		return
	}
	if _, ok := cat.Quests[quest]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"%s: %s references undefined quest %q", where, what, quest))
	}
}

// clueRef checks "quest" and "clue" parameters together.
func clueRef(params map[string]any, where, what string, cat *state.Catalog, ve *ValidationError) {
	quest, _ := params["quest"].(string)
	clue, _ := params["clue"].(string)
	q, ok := cat.Quests[quest]
	if !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"%s: %s references undefined quest %q", where, what, quest))
		return
	}
	if _, ok := q.Clues[clue]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"%s: %s references undefined clue %q in quest %q", where, what, clue, quest))
	}
}

// npcRef checks an optional "npc" parameter when present.
func npcRef(params map[string]any, where, what string, cat *state.Catalog, ve *ValidationError) {
	npc, ok := params["npc"].(string)
	if !ok || npc == "" {
		return
	}
	if _, ok := cat.Npcs[npc]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"%s: %s references undefined npc %q", where, what, npc))
	}
}
