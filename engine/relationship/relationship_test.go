package relationship

import (
	"testing"
	"time"

	"github.com/nathoo/inquest/engine/state"
	"github.com/nathoo/inquest/types"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		value int
		want  types.TrustLevel
	}{
		{-100, types.TrustHostile},
		{-60, types.TrustHostile},
		{-59, types.TrustSuspicious},
		{-20, types.TrustSuspicious},
		{-19, types.TrustNeutral},
		{0, types.TrustNeutral},
		{19, types.TrustNeutral},
		{20, types.TrustFriendly},
		{59, types.TrustFriendly},
		{60, types.TrustTrusting},
		{89, types.TrustTrusting},
		{90, types.TrustConfidant},
		{100, types.TrustConfidant},
	}
	for _, tt := range tests {
		if got := Level(tt.value); got != tt.want {
			t.Errorf("Level(%d) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestModifyTrust_Clamping(t *testing.T) {
	s := state.NewState()

	_, now := ModifyTrust(s, "elara", 150)
	if now != TrustMax {
		t.Errorf("trust = %d, want clamp to %d", now, TrustMax)
	}

	_, now = ModifyTrust(s, "elara", -500)
	if now != TrustMin {
		t.Errorf("trust = %d, want clamp to %d", now, TrustMin)
	}

	old, now := ModifyTrust(s, "elara", 30)
	if old != TrustMin || now != TrustMin+30 {
		t.Errorf("ModifyTrust = (%d, %d), want (%d, %d)", old, now, TrustMin, TrustMin+30)
	}
}

func TestScaleDelta(t *testing.T) {
	tests := []struct {
		name  string
		delta int
		speed float64
		want  int
	}{
		{"positive scaled up", 5, 2.0, 10},
		{"positive scaled down rounds", 5, 0.5, 3},
		{"neutral speed", 5, 1.0, 5},
		{"negative never scaled", -10, 2.0, -10},
		{"zero speed leaves delta", 5, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := types.Personality{TrustSpeed: tt.speed}
			if got := ScaleDelta(tt.delta, p); got != tt.want {
				t.Errorf("ScaleDelta(%d, speed=%v) = %d, want %d", tt.delta, tt.speed, got, tt.want)
			}
		})
	}
}

func TestRecordInteraction(t *testing.T) {
	s := state.NewState()
	now := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

	if !FirstMeeting(s, "elara") {
		t.Error("FirstMeeting = false before any interaction")
	}

	rec := types.InteractionRecord{
		At:             now,
		ConversationID: "merchant_worries",
		Choices:        []string{"accept"},
		TrustDelta:     5,
	}
	RecordInteraction(s, "elara", rec, now)

	r := s.Relationships["elara"]
	if r.ConversationCount != 1 {
		t.Errorf("ConversationCount = %d, want 1", r.ConversationCount)
	}
	if len(r.History) != 1 || r.History[0].ConversationID != "merchant_worries" {
		t.Errorf("history = %+v", r.History)
	}
	if !r.LastInteraction.Equal(now) {
		t.Errorf("LastInteraction = %v", r.LastInteraction)
	}
	if FirstMeeting(s, "elara") {
		t.Error("FirstMeeting = true after an interaction")
	}
}

func TestFlags(t *testing.T) {
	s := state.NewState()

	if HasFlag(s, "brom", "knows_about_ledger") {
		t.Error("flag set before SetFlag")
	}
	SetFlag(s, "brom", "knows_about_ledger")
	if !HasFlag(s, "brom", "knows_about_ledger") {
		t.Error("flag not set after SetFlag")
	}
}
