package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerConsequenceHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Quest "id" { ... } — curried: Quest("id") returns a function that
	// takes the definition table.
	L.SetGlobal("Quest", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.quests = append(coll.quests, rawQuest{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// NPC "id" { ... } — curried.
	L.SetGlobal("NPC", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.npcs = append(coll.npcs, rawNpc{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

// tagged constructs a type-tagged table with key/value pairs.
func tagged(L *lua.LState, condType string, kv ...lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(condType))
	for i := 0; i+1 < len(kv); i += 2 {
		tbl.RawSetString(string(kv[i].(lua.LString)), kv[i+1])
	}
	return tbl
}

func registerConditionHelpers(L *lua.LState) {
	// QuestActive("quest_id")
	L.SetGlobal("QuestActive", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "quest_active",
			lua.LString("quest"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// QuestCompleted("quest_id")
	L.SetGlobal("QuestCompleted", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "quest_completed",
			lua.LString("quest"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// ClueFound("quest_id", "clue_id")
	L.SetGlobal("ClueFound", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "clue_found",
			lua.LString("quest"), lua.LString(L.CheckString(1)),
			lua.LString("clue"), lua.LString(L.CheckString(2))))
		return 1
	}))

	// TrustAtLeast(40) or TrustAtLeast("friendly") — numeric threshold or
	// named level. Optional second arg names the NPC; default is the NPC
	// whose conversation the condition guards.
	L.SetGlobal("TrustAtLeast", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("trust_at_least"))
		switch v := L.Get(1).(type) {
		case lua.LNumber:
			tbl.RawSetString("value", v)
		case lua.LString:
			tbl.RawSetString("level", v)
		default:
			L.ArgError(1, "number or level name expected")
		}
		if npc, ok := L.Get(2).(lua.LString); ok {
			tbl.RawSetString("npc", npc)
		}
		L.Push(tbl)
		return 1
	}))

	// TimeBetween(from, to) — hours 0-23; wraps midnight when from > to.
	L.SetGlobal("TimeBetween", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "time_between",
			lua.LString("from"), L.CheckNumber(1),
			lua.LString("to"), L.CheckNumber(2)))
		return 1
	}))

	// LocationIs("location")
	L.SetGlobal("LocationIs", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "location_is",
			lua.LString("location"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// ChoiceFlag("flag" [, "npc"])
	L.SetGlobal("ChoiceFlag", L.NewFunction(func(L *lua.LState) int {
		tbl := tagged(L, "choice_flag",
			lua.LString("flag"), lua.LString(L.CheckString(1)))
		if npc, ok := L.Get(2).(lua.LString); ok {
			tbl.RawSetString("npc", npc)
		}
		L.Push(tbl)
		return 1
	}))

	// WorldFlag("flag" [, value]) — value defaults to true.
	L.SetGlobal("WorldFlag", L.NewFunction(func(L *lua.LState) int {
		tbl := tagged(L, "world_flag",
			lua.LString("flag"), lua.LString(L.CheckString(1)))
		if v, ok := L.Get(2).(lua.LBool); ok {
			tbl.RawSetString("value", v)
		}
		L.Push(tbl)
		return 1
	}))

	// EvidenceAtLeast("quest_id", "strength")
	L.SetGlobal("EvidenceAtLeast", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "evidence_at_least",
			lua.LString("quest"), lua.LString(L.CheckString(1)),
			lua.LString("strength"), lua.LString(L.CheckString(2))))
		return 1
	}))

	// FirstMeeting([npc])
	L.SetGlobal("FirstMeeting", L.NewFunction(func(L *lua.LState) int {
		tbl := tagged(L, "first_meeting")
		if npc, ok := L.Get(1).(lua.LString); ok {
			tbl.RawSetString("npc", npc)
		}
		L.Push(tbl)
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

func registerConsequenceHelpers(L *lua.LState) {
	// Trust(delta [, "npc"])
	L.SetGlobal("Trust", L.NewFunction(func(L *lua.LState) int {
		tbl := tagged(L, "trust",
			lua.LString("delta"), L.CheckNumber(1))
		if npc, ok := L.Get(2).(lua.LString); ok {
			tbl.RawSetString("npc", npc)
		}
		L.Push(tbl)
		return 1
	}))

	// RevealClue("quest_id", "clue_id" [, "location"])
	L.SetGlobal("RevealClue", L.NewFunction(func(L *lua.LState) int {
		tbl := tagged(L, "reveal_clue",
			lua.LString("quest"), lua.LString(L.CheckString(1)),
			lua.LString("clue"), lua.LString(L.CheckString(2)))
		if loc, ok := L.Get(3).(lua.LString); ok {
			tbl.RawSetString("location", loc)
		}
		L.Push(tbl)
		return 1
	}))

	// StartQuest("quest_id")
	L.SetGlobal("StartQuest", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "start_quest",
			lua.LString("quest"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// CompleteQuest("quest_id")
	L.SetGlobal("CompleteQuest", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "complete_quest",
			lua.LString("quest"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// SetFlag("flag" [, value]) — value defaults to true.
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		tbl := tagged(L, "set_flag",
			lua.LString("flag"), lua.LString(L.CheckString(1)))
		if v, ok := L.Get(2).(lua.LBool); ok {
			tbl.RawSetString("value", v)
		}
		L.Push(tbl)
		return 1
	}))

	// UnlockDialogue("flag" [, "npc"])
	L.SetGlobal("UnlockDialogue", L.NewFunction(func(L *lua.LState) int {
		tbl := tagged(L, "unlock_dialogue",
			lua.LString("flag"), lua.LString(L.CheckString(1)))
		if npc, ok := L.Get(2).(lua.LString); ok {
			tbl.RawSetString("npc", npc)
		}
		L.Push(tbl)
		return 1
	}))
}
