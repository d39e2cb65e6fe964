package conditions

import (
	"testing"

	"github.com/nathoo/inquest/types"
)

func condTestSnapshot() Snapshot {
	return Snapshot{
		Active: map[string]*types.QuestProgress{
			"merchant_mystery": {
				QuestID:      "merchant_mystery",
				CurrentPhase: "evidence_gathering",
				Clues: map[string]types.DiscoveredClue{
					"suspicious_ledger": {ClueID: "suspicious_ledger"},
				},
				Evidence: types.EvidenceModerate,
			},
		},
		Completed: map[string]types.QuestSummary{
			"missing_shipment": {QuestID: "missing_shipment"},
		},
		Relationships: map[string]*types.NpcRelationship{
			"elara": {
				NpcID:             "elara",
				Trust:             35,
				ConversationCount: 2,
				Flags:             map[string]bool{"shared_secret": true},
			},
		},
		WorldFlags: map[string]bool{"market_open": true},
		Location:   "market_square",
		Hour:       14,
		NpcID:      "elara",
	}
}

func TestEval(t *testing.T) {
	snap := condTestSnapshot()

	tests := []struct {
		name string
		cond types.Condition
		want bool
	}{
		{
			name: "quest_active: active quest",
			cond: types.Condition{Type: "quest_active", Params: map[string]any{"quest": "merchant_mystery"}},
			want: true,
		},
		{
			name: "quest_active: unknown quest",
			cond: types.Condition{Type: "quest_active", Params: map[string]any{"quest": "missing_shipment"}},
			want: false,
		},
		{
			name: "quest_completed: completed quest",
			cond: types.Condition{Type: "quest_completed", Params: map[string]any{"quest": "missing_shipment"}},
			want: true,
		},
		{
			name: "quest_completed: still active",
			cond: types.Condition{Type: "quest_completed", Params: map[string]any{"quest": "merchant_mystery"}},
			want: false,
		},
		{
			name: "clue_found: discovered",
			cond: types.Condition{Type: "clue_found", Params: map[string]any{"quest": "merchant_mystery", "clue": "suspicious_ledger"}},
			want: true,
		},
		{
			name: "clue_found: not discovered",
			cond: types.Condition{Type: "clue_found", Params: map[string]any{"quest": "merchant_mystery", "clue": "witness_testimony"}},
			want: false,
		},
		{
			name: "clue_found: resolved quest keeps no clues",
			cond: types.Condition{Type: "clue_found", Params: map[string]any{"quest": "missing_shipment", "clue": "crowbar"}},
			want: false,
		},
		{
			name: "trust_at_least: numeric pass",
			cond: types.Condition{Type: "trust_at_least", Params: map[string]any{"value": 30}},
			want: true,
		},
		{
			name: "trust_at_least: numeric fail",
			cond: types.Condition{Type: "trust_at_least", Params: map[string]any{"value": 40}},
			want: false,
		},
		{
			name: "trust_at_least: float value from content",
			cond: types.Condition{Type: "trust_at_least", Params: map[string]any{"value": float64(35)}},
			want: true,
		},
		{
			name: "trust_at_least: named level pass",
			cond: types.Condition{Type: "trust_at_least", Params: map[string]any{"level": "friendly"}},
			want: true,
		},
		{
			name: "trust_at_least: named level fail",
			cond: types.Condition{Type: "trust_at_least", Params: map[string]any{"level": "trusting"}},
			want: false,
		},
		{
			name: "trust_at_least: explicit npc without record",
			cond: types.Condition{Type: "trust_at_least", Params: map[string]any{"npc": "brom", "value": 1}},
			want: false,
		},
		{
			name: "time_between: inside range",
			cond: types.Condition{Type: "time_between", Params: map[string]any{"from": 9, "to": 17}},
			want: true,
		},
		{
			name: "time_between: outside range",
			cond: types.Condition{Type: "time_between", Params: map[string]any{"from": 18, "to": 23}},
			want: false,
		},
		{
			name: "time_between: wrapping range excludes afternoon",
			cond: types.Condition{Type: "time_between", Params: map[string]any{"from": 22, "to": 6}},
			want: false,
		},
		{
			name: "location_is: match",
			cond: types.Condition{Type: "location_is", Params: map[string]any{"location": "market_square"}},
			want: true,
		},
		{
			name: "location_is: mismatch",
			cond: types.Condition{Type: "location_is", Params: map[string]any{"location": "docks"}},
			want: false,
		},
		{
			name: "choice_flag: set",
			cond: types.Condition{Type: "choice_flag", Params: map[string]any{"flag": "shared_secret"}},
			want: true,
		},
		{
			name: "choice_flag: unset",
			cond: types.Condition{Type: "choice_flag", Params: map[string]any{"flag": "betrayed"}},
			want: false,
		},
		{
			name: "world_flag: set",
			cond: types.Condition{Type: "world_flag", Params: map[string]any{"flag": "market_open"}},
			want: true,
		},
		{
			name: "world_flag: explicit false value",
			cond: types.Condition{Type: "world_flag", Params: map[string]any{"flag": "market_open", "value": false}},
			want: false,
		},
		{
			name: "world_flag: unset defaults false",
			cond: types.Condition{Type: "world_flag", Params: map[string]any{"flag": "curfew", "value": false}},
			want: true,
		},
		{
			name: "evidence_at_least: pass",
			cond: types.Condition{Type: "evidence_at_least", Params: map[string]any{"quest": "merchant_mystery", "strength": "moderate"}},
			want: true,
		},
		{
			name: "evidence_at_least: fail",
			cond: types.Condition{Type: "evidence_at_least", Params: map[string]any{"quest": "merchant_mystery", "strength": "strong"}},
			want: false,
		},
		{
			name: "evidence_at_least: inactive quest",
			cond: types.Condition{Type: "evidence_at_least", Params: map[string]any{"quest": "missing_shipment", "strength": "weak"}},
			want: false,
		},
		{
			name: "first_meeting: known npc",
			cond: types.Condition{Type: "first_meeting", Params: map[string]any{}},
			want: false,
		},
		{
			name: "first_meeting: stranger",
			cond: types.Condition{Type: "first_meeting", Params: map[string]any{"npc": "brom"}},
			want: true,
		},
		{
			name: "not: inverts",
			cond: types.Condition{Type: "not", Inner: &types.Condition{
				Type: "location_is", Params: map[string]any{"location": "docks"},
			}},
			want: true,
		},
		{
			name: "unknown type evaluates false",
			cond: types.Condition{Type: "has_item", Params: map[string]any{"item": "key"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eval(tt.cond, snap); got != tt.want {
				t.Errorf("Eval(%s) = %v, want %v", tt.cond.Type, got, tt.want)
			}
		})
	}
}

func TestEval_WrappingHours(t *testing.T) {
	cond := types.Condition{Type: "time_between", Params: map[string]any{"from": 22, "to": 6}}

	for hour, want := range map[int]bool{21: false, 22: true, 23: true, 0: true, 5: true, 6: false, 12: false} {
		snap := Snapshot{Hour: hour}
		if got := Eval(cond, snap); got != want {
			t.Errorf("hour %d: Eval = %v, want %v", hour, got, want)
		}
	}
}

func TestEvalAll(t *testing.T) {
	snap := condTestSnapshot()

	if !EvalAll(nil, snap) {
		t.Error("empty condition list should be vacuously true")
	}

	conds := []types.Condition{
		{Type: "quest_active", Params: map[string]any{"quest": "merchant_mystery"}},
		{Type: "location_is", Params: map[string]any{"location": "market_square"}},
	}
	if !EvalAll(conds, snap) {
		t.Error("all-true conjunction evaluated false")
	}

	conds = append(conds, types.Condition{Type: "location_is", Params: map[string]any{"location": "docks"}})
	if EvalAll(conds, snap) {
		t.Error("conjunction with one false condition evaluated true")
	}
}
