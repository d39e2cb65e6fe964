package evidence

import (
	"testing"
	"time"

	"github.com/nathoo/inquest/engine/state"
	"github.com/nathoo/inquest/types"
)

func evidenceTestCatalog() *state.Catalog {
	return &state.Catalog{
		Quests: map[string]types.QuestDef{
			"merchant_mystery": {
				ID:           "merchant_mystery",
				Title:        "The Merchant's Mystery",
				InitialPhase: "rumors",
				Phases: map[string]types.PhaseDef{
					"rumors": {ID: "rumors"},
				},
				Clues: map[string]types.ClueDef{
					"suspicious_ledger": {
						ID: "suspicious_ledger", Name: "Suspicious Ledger",
						Strength: 2.0, DiscoveryMethod: "investigation", Location: "warehouse",
					},
					"witness_testimony": {
						ID: "witness_testimony", Name: "Witness Testimony",
						Strength: 1.5, DiscoveryMethod: "conversation", Location: "docks",
					},
					"torn_invoice": {
						ID: "torn_invoice", Name: "Torn Invoice", Strength: 0.5,
					},
				},
			},
		},
		Npcs: map[string]types.NpcDef{},
	}
}

func activeQuestState(questID string) *types.PlayerState {
	s := state.NewState()
	s.Active[questID] = &types.QuestProgress{
		QuestID:             questID,
		CurrentPhase:        "rumors",
		Clues:               map[string]types.DiscoveredClue{},
		CompletedObjectives: map[string]bool{},
	}
	return s
}

func TestClassify(t *testing.T) {
	tests := []struct {
		total float64
		want  types.EvidenceStrength
	}{
		{0, types.EvidenceNone},
		{0.5, types.EvidenceNone},
		{1.0, types.EvidenceWeak},
		{2.9, types.EvidenceWeak},
		{3.0, types.EvidenceModerate},
		{5.9, types.EvidenceModerate},
		{6.0, types.EvidenceStrong},
		{8.9, types.EvidenceStrong},
		{9.0, types.EvidenceOverwhelming},
		{15.0, types.EvidenceOverwhelming},
	}
	for _, tt := range tests {
		if got := Classify(tt.total); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.total, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		want  types.EvidenceStrength
		known bool
	}{
		{"", types.EvidenceNone, true},
		{"none", types.EvidenceNone, true},
		{"weak", types.EvidenceWeak, true},
		{"moderate", types.EvidenceModerate, true},
		{"strong", types.EvidenceStrong, true},
		{"overwhelming", types.EvidenceOverwhelming, true},
		{"damning", types.EvidenceNone, false},
	}
	for _, tt := range tests {
		got, known := Parse(tt.name)
		if got != tt.want || known != tt.known {
			t.Errorf("Parse(%q) = (%v, %v), want (%v, %v)", tt.name, got, known, tt.want, tt.known)
		}
	}
}

func TestRecordClue(t *testing.T) {
	cat := evidenceTestCatalog()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("discovery updates evidence", func(t *testing.T) {
		s := activeQuestState("merchant_mystery")

		out, err := RecordClue(cat, s, "merchant_mystery", "suspicious_ledger", "", now)
		if err != nil {
			t.Fatalf("RecordClue: %v", err)
		}
		if out.AlreadyKnown {
			t.Error("first discovery reported AlreadyKnown")
		}
		if out.NewStrength != types.EvidenceWeak {
			t.Errorf("strength = %v, want weak", out.NewStrength)
		}

		found := s.Active["merchant_mystery"].Clues["suspicious_ledger"]
		if found.Location != "warehouse" {
			t.Errorf("location = %q, want catalog default", found.Location)
		}
		if found.Method != "investigation" {
			t.Errorf("method = %q", found.Method)
		}
	})

	t.Run("explicit location wins over catalog default", func(t *testing.T) {
		s := activeQuestState("merchant_mystery")

		if _, err := RecordClue(cat, s, "merchant_mystery", "suspicious_ledger", "back_alley", now); err != nil {
			t.Fatalf("RecordClue: %v", err)
		}
		if got := s.Active["merchant_mystery"].Clues["suspicious_ledger"].Location; got != "back_alley" {
			t.Errorf("location = %q, want back_alley", got)
		}
	})

	t.Run("rediscovery is a no-op", func(t *testing.T) {
		s := activeQuestState("merchant_mystery")

		if _, err := RecordClue(cat, s, "merchant_mystery", "suspicious_ledger", "", now); err != nil {
			t.Fatal(err)
		}
		before := *s.Active["merchant_mystery"]

		out, err := RecordClue(cat, s, "merchant_mystery", "suspicious_ledger", "elsewhere", now.Add(time.Hour))
		if err != nil {
			t.Fatalf("RecordClue: %v", err)
		}
		if !out.AlreadyKnown {
			t.Error("rediscovery not reported as AlreadyKnown")
		}
		after := s.Active["merchant_mystery"]
		if len(after.Clues) != 1 {
			t.Errorf("clue count = %d, want 1", len(after.Clues))
		}
		if after.Clues["suspicious_ledger"] != before.Clues["suspicious_ledger"] {
			t.Error("rediscovery mutated the original record")
		}
		if after.UpdatedAt != before.UpdatedAt {
			t.Error("rediscovery touched UpdatedAt")
		}
	})

	t.Run("evidence never decreases", func(t *testing.T) {
		s := activeQuestState("merchant_mystery")

		last := types.EvidenceNone
		for _, clue := range []string{"torn_invoice", "witness_testimony", "suspicious_ledger"} {
			out, err := RecordClue(cat, s, "merchant_mystery", clue, "", now)
			if err != nil {
				t.Fatalf("RecordClue(%s): %v", clue, err)
			}
			if out.NewStrength < last {
				t.Errorf("evidence decreased: %v after %v", out.NewStrength, last)
			}
			last = out.NewStrength
		}
		// 0.5 + 1.5 + 2.0 = 4.0 -> moderate.
		if last != types.EvidenceModerate {
			t.Errorf("final strength = %v, want moderate", last)
		}
	})

	t.Run("errors", func(t *testing.T) {
		s := activeQuestState("merchant_mystery")

		if _, err := RecordClue(cat, s, "missing", "suspicious_ledger", "", now); err != state.ErrUnknownQuest {
			t.Errorf("unknown quest: err = %v", err)
		}
		if _, err := RecordClue(cat, s, "merchant_mystery", "missing", "", now); err != state.ErrUnknownClue {
			t.Errorf("unknown clue: err = %v", err)
		}

		inactive := state.NewState()
		if _, err := RecordClue(cat, inactive, "merchant_mystery", "suspicious_ledger", "", now); err != state.ErrQuestNotActive {
			t.Errorf("inactive quest: err = %v", err)
		}
	})
}
