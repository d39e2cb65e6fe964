package save

import (
	"strings"
	"testing"
	"time"

	"github.com/nathoo/inquest/engine/state"
	"github.com/nathoo/inquest/types"
)

func TestRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := state.NewState()
	s.Location = "market_square"
	s.Hour = 14
	s.WorldFlags["merchant_mystery.warned_guards"] = true
	s.Active["merchant_mystery"] = &types.QuestProgress{
		QuestID:         "merchant_mystery",
		CurrentPhase:    "evidence_gathering",
		CompletedPhases: []string{"rumors"},
		Clues: map[string]types.DiscoveredClue{
			"suspicious_ledger": {
				ClueID: "suspicious_ledger", QuestID: "merchant_mystery",
				At: now, Location: "warehouse", Method: "investigation",
			},
		},
		CompletedObjectives: map[string]bool{"interview_witnesses": true},
		Evidence:            types.EvidenceWeak,
		Notes:               []string{"check the docks"},
		StartedAt:           now,
		UpdatedAt:           now,
	}
	s.Completed["missing_shipment"] = types.QuestSummary{
		QuestID:       "missing_shipment",
		FinalEvidence: types.EvidenceStrong,
		StartedAt:     now,
		FinishedAt:    now,
		Reward:        types.RewardRequest{QuestID: "missing_shipment", Evidence: types.EvidenceStrong},
	}
	s.Relationships["elara"] = &types.NpcRelationship{
		NpcID: "elara", Trust: 35, ConversationCount: 2,
		LastInteraction: now,
		Flags:           map[string]bool{"asked_about_ledger": true},
		History: []types.InteractionRecord{
			{At: now, ConversationID: "merchant_worries", Choices: []string{"accept"}, TrustDelta: 10},
		},
	}

	data, err := Save(s)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := got.Active["merchant_mystery"]
	if p == nil {
		t.Fatal("active quest lost in round trip")
	}
	if p.CurrentPhase != "evidence_gathering" || p.Evidence != types.EvidenceWeak {
		t.Errorf("progress = %+v", p)
	}
	if len(p.CompletedPhases) != 1 || p.CompletedPhases[0] != "rumors" {
		t.Errorf("completed phases = %v", p.CompletedPhases)
	}
	if clue := p.Clues["suspicious_ledger"]; clue.Location != "warehouse" || !clue.At.Equal(now) {
		t.Errorf("clue = %+v", clue)
	}
	if !p.CompletedObjectives["interview_witnesses"] {
		t.Error("objective lost in round trip")
	}
	if got.Completed["missing_shipment"].FinalEvidence != types.EvidenceStrong {
		t.Error("completed summary lost in round trip")
	}
	rel := got.Relationships["elara"]
	if rel == nil || rel.Trust != 35 || !rel.Flags["asked_about_ledger"] {
		t.Errorf("relationship = %+v", rel)
	}
	if len(rel.History) != 1 || rel.History[0].TrustDelta != 10 {
		t.Errorf("history = %+v", rel.History)
	}
	if !got.WorldFlags["merchant_mystery.warned_guards"] {
		t.Error("world flag lost in round trip")
	}
	if got.Location != "market_square" || got.Hour != 14 {
		t.Errorf("location/hour = %q/%d", got.Location, got.Hour)
	}
}

func TestLoad_HardensNilMaps(t *testing.T) {
	data := []byte(`{
		"Version": 1,
		"State": {
			"Active": {
				"merchant_mystery": {"QuestID": "merchant_mystery", "CurrentPhase": "rumors"}
			},
			"Relationships": {
				"elara": {"NpcID": "elara", "Trust": 5}
			}
		}
	}`)

	s, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Completed == nil || s.Failed == nil || s.WorldFlags == nil {
		t.Error("top-level maps not initialized")
	}
	p := s.Active["merchant_mystery"]
	if p.Clues == nil || p.CompletedObjectives == nil {
		t.Error("quest progress maps not initialized")
	}
	if s.Relationships["elara"].Flags == nil {
		t.Error("relationship flags not initialized")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load([]byte(`{"Version": 99, "State": {}}`)); err == nil {
		t.Error("future version accepted")
	} else if !strings.Contains(err.Error(), "version") {
		t.Errorf("version error = %v", err)
	}

	if _, err := Load([]byte(`not json`)); err == nil {
		t.Error("garbage accepted")
	}
}
