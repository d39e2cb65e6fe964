// Package loader loads Lua-authored investigation content into the
// immutable catalog. The Lua VM is discarded after loading.
package loader

import (
	"fmt"

	"github.com/nathoo/inquest/engine/evidence"
	"github.com/nathoo/inquest/engine/state"
	"github.com/nathoo/inquest/types"
	lua "github.com/yuin/gopher-lua"
)

// rawQuest holds a quest table before compilation.
type rawQuest struct {
	id    string
	table *lua.LTable
}

// rawNpc holds an NPC table before compilation.
type rawNpc struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or the default if missing.
func getNumber(tbl *lua.LTable, key string, def float64) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key, 0))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Array (sequential integer keys starting at 1) or map.
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// toStringSlice converts a Lua array table to []string.
func toStringSlice(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

// compile converts all collected Lua data into a Catalog.
func compile(coll *collector) (*state.Catalog, error) {
	cat := &state.Catalog{
		Quests: map[string]types.QuestDef{},
		Npcs:   map[string]types.NpcDef{},
	}

	for _, raw := range coll.quests {
		if _, dup := cat.Quests[raw.id]; dup {
			return nil, fmt.Errorf("duplicate quest %q", raw.id)
		}
		q, err := compileQuest(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling quest %s: %w", raw.id, err)
		}
		cat.Quests[raw.id] = q
	}

	for _, raw := range coll.npcs {
		if _, dup := cat.Npcs[raw.id]; dup {
			return nil, fmt.Errorf("duplicate npc %q", raw.id)
		}
		n, err := compileNpc(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling npc %s: %w", raw.id, err)
		}
		cat.Npcs[raw.id] = n
	}

	return cat, nil
}

func compileQuest(raw rawQuest) (types.QuestDef, error) {
	tbl := raw.table
	q := types.QuestDef{
		ID:           raw.id,
		Title:        getString(tbl, "title"),
		Description:  getString(tbl, "description"),
		InitialPhase: getString(tbl, "initial_phase"),
		Phases:       map[string]types.PhaseDef{},
		Clues:        map[string]types.ClueDef{},
	}

	if phasesTbl := getTable(tbl, "phases"); phasesTbl != nil {
		var err error
		phasesTbl.ForEach(func(k, v lua.LValue) {
			id, ok := k.(lua.LString)
			if !ok {
				return
			}
			phaseTbl, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			phase, perr := compilePhase(string(id), phaseTbl)
			if perr != nil && err == nil {
				err = fmt.Errorf("phase %s: %w", string(id), perr)
				return
			}
			q.Phases[string(id)] = phase
		})
		if err != nil {
			return q, err
		}
	}

	if cluesTbl := getTable(tbl, "clues"); cluesTbl != nil {
		cluesTbl.ForEach(func(k, v lua.LValue) {
			id, ok := k.(lua.LString)
			if !ok {
				return
			}
			clueTbl, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			q.Clues[string(id)] = types.ClueDef{
				ID:              string(id),
				Name:            getString(clueTbl, "name"),
				Strength:        getNumber(clueTbl, "strength", 0),
				DiscoveryMethod: getString(clueTbl, "method"),
				Location:        getString(clueTbl, "location"),
				CarefulReading:  getBool(clueTbl, "careful_reading", false),
			}
		})
	}

	if failTbl := getTable(tbl, "fail_conditions"); failTbl != nil {
		q.FailConditions = compileConditions(failTbl)
	}

	return q, nil
}

func compilePhase(id string, tbl *lua.LTable) (types.PhaseDef, error) {
	phase := types.PhaseDef{
		ID:                 id,
		Title:              getString(tbl, "title"),
		Description:        getString(tbl, "description"),
		Priority:           getInt(tbl, "priority"),
		Terminal:           getBool(tbl, "terminal", false),
		RequiredObjectives: toStringSlice(getTable(tbl, "required_objectives")),
		RequiredClues:      toStringSlice(getTable(tbl, "required_clues")),
		Objectives:         toStringSlice(getTable(tbl, "objectives")),
		Next:               toStringSlice(getTable(tbl, "next")),
	}

	name := getString(tbl, "required_evidence")
	strength, ok := evidence.Parse(name)
	if !ok {
		return phase, fmt.Errorf("unknown evidence strength %q", name)
	}
	phase.RequiredEvidence = strength
	return phase, nil
}

func compileNpc(raw rawNpc) (types.NpcDef, error) {
	tbl := raw.table
	npc := types.NpcDef{
		ID:                  raw.id,
		Name:                getString(tbl, "name"),
		Description:         getString(tbl, "description"),
		DefaultConversation: getString(tbl, "default_conversation"),
		Conversations:       map[string]types.ConversationDef{},
	}

	if pTbl := getTable(tbl, "personality"); pTbl != nil {
		npc.Personality = types.Personality{
			Verbosity:      getNumber(pTbl, "verbosity", 1),
			TrustSpeed:     getNumber(pTbl, "trust_speed", 1),
			Reluctance:     getNumber(pTbl, "reluctance", 0),
			SpeechPatterns: toStringSlice(getTable(pTbl, "patterns")),
		}
	} else {
		npc.Personality = types.Personality{Verbosity: 1, TrustSpeed: 1}
	}

	if convsTbl := getTable(tbl, "conversations"); convsTbl != nil {
		convsTbl.ForEach(func(k, v lua.LValue) {
			id, ok := k.(lua.LString)
			if !ok {
				return
			}
			convTbl, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			npc.Conversations[string(id)] = compileConversation(raw.id, string(id), convTbl)
		})
	}

	return npc, nil
}

func compileConversation(npcID, id string, tbl *lua.LTable) types.ConversationDef {
	conv := types.ConversationDef{
		NpcID:    npcID,
		ID:       id,
		Title:    getString(tbl, "title"),
		Category: getString(tbl, "category"),
		Nodes:    map[string]types.NodeDef{},
	}
	if condTbl := getTable(tbl, "conditions"); condTbl != nil {
		conv.Conditions = compileConditions(condTbl)
	}
	if nodesTbl := getTable(tbl, "nodes"); nodesTbl != nil {
		nodesTbl.ForEach(func(k, v lua.LValue) {
			nodeID, ok := k.(lua.LString)
			if !ok {
				return
			}
			nodeTbl, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			conv.Nodes[string(nodeID)] = compileNode(string(nodeID), nodeTbl)
		})
	}
	return conv
}

func compileNode(id string, tbl *lua.LTable) types.NodeDef {
	node := types.NodeDef{
		ID:      id,
		Speaker: getString(tbl, "speaker"),
	}
	if node.Speaker == "" {
		node.Speaker = types.SpeakerNpc
	}

	// "text" is shorthand for a single default variant.
	if text := getString(tbl, "text"); text != "" {
		node.Variants = append(node.Variants, types.TextVariant{Text: text})
	}
	if varsTbl := getTable(tbl, "variants"); varsTbl != nil {
		varsTbl.ForEach(func(k, v lua.LValue) {
			if _, ok := k.(lua.LNumber); !ok {
				return
			}
			varTbl, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			node.Variants = append(node.Variants, types.TextVariant{
				Text:   getString(varTbl, "text"),
				Mood:   getString(varTbl, "mood"),
				Weight: getNumber(varTbl, "weight", 0),
			})
		})
	}

	if onEnterTbl := getTable(tbl, "on_enter"); onEnterTbl != nil {
		node.OnEnter = compileConsequences(onEnterTbl)
	}

	if choicesTbl := getTable(tbl, "choices"); choicesTbl != nil {
		i := 0
		choicesTbl.ForEach(func(k, v lua.LValue) {
			if _, ok := k.(lua.LNumber); !ok {
				return
			}
			choiceTbl, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			i++
			choice := types.ChoiceDef{
				ID:   getString(choiceTbl, "id"),
				Text: getString(choiceTbl, "text"),
				Next: getString(choiceTbl, "next"),
			}
			if choice.ID == "" {
				choice.ID = fmt.Sprintf("%s_%d", id, i)
			}
			if condTbl := getTable(choiceTbl, "conditions"); condTbl != nil {
				choice.Conditions = compileConditions(condTbl)
			}
			if consTbl := getTable(choiceTbl, "consequences"); consTbl != nil {
				choice.Consequences = compileConsequences(consTbl)
			}
			node.Choices = append(node.Choices, choice)
		})
	}

	return node
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if condTbl, ok := v.(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	})
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{Type: "not", Inner: &inner}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})

	return types.Condition{Type: condType, Params: params}
}

func compileConsequences(tbl *lua.LTable) []types.Consequence {
	var consequences []types.Consequence
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		consTbl, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		consType := getString(consTbl, "type")
		params := map[string]any{}
		consTbl.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				key := string(ks)
				if key != "type" {
					params[key] = toGoValue(v)
				}
			}
		})
		consequences = append(consequences, types.Consequence{Type: consType, Params: params})
	})
	return consequences
}
