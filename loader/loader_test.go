package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/inquest/types"
)

func TestLoad(t *testing.T) {
	cat, err := Load("testdata")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	t.Run("quest", func(t *testing.T) {
		q, ok := cat.Quest("merchant_mystery")
		if !ok {
			t.Fatal("quest not loaded")
		}
		if q.Title != "The Merchant's Mystery" || q.InitialPhase != "rumors" {
			t.Errorf("quest = %+v", q)
		}
		if len(q.Phases) != 4 {
			t.Fatalf("phases = %d, want 4", len(q.Phases))
		}

		eg := q.Phases["evidence_gathering"]
		if eg.RequiredEvidence != types.EvidenceWeak {
			t.Errorf("required evidence = %v, want weak", eg.RequiredEvidence)
		}
		if len(eg.Objectives) != 1 || eg.Objectives[0] != "interview_witnesses" {
			t.Errorf("objectives = %v", eg.Objectives)
		}
		if len(eg.Next) != 1 || eg.Next[0] != "confrontation" {
			t.Errorf("next = %v", eg.Next)
		}

		res := q.Phases["resolution"]
		if !res.Terminal {
			t.Error("resolution not terminal")
		}
		if len(res.RequiredClues) != 1 || res.RequiredClues[0] != "confession_note" {
			t.Errorf("required clues = %v", res.RequiredClues)
		}

		note := q.Clues["confession_note"]
		if note.Strength != 4.0 || note.Location != "office" || !note.CarefulReading {
			t.Errorf("clue = %+v", note)
		}

		if len(q.FailConditions) != 1 || q.FailConditions[0].Type != "world_flag" {
			t.Errorf("fail conditions = %+v", q.FailConditions)
		}
	})

	t.Run("npc", func(t *testing.T) {
		npc, ok := cat.Npc("elara")
		if !ok {
			t.Fatal("npc not loaded")
		}
		if npc.Name != "Elara" || npc.DefaultConversation != "chat" {
			t.Errorf("npc = %+v", npc)
		}
		p := npc.Personality
		if p.Verbosity != 1.2 || p.TrustSpeed != 0.8 || p.Reluctance != 0.5 {
			t.Errorf("personality = %+v", p)
		}
		if len(p.SpeechPatterns) != 2 || p.SpeechPatterns[0] != "Mark my words." {
			t.Errorf("patterns = %v", p.SpeechPatterns)
		}
	})

	t.Run("conversation conditions", func(t *testing.T) {
		conv, ok := cat.Conversation("elara", "merchant_worries")
		if !ok {
			t.Fatal("conversation not loaded")
		}
		if conv.Category != types.CategoryQuestInitiation {
			t.Errorf("category = %q", conv.Category)
		}
		if len(conv.Conditions) != 2 {
			t.Fatalf("conditions = %+v", conv.Conditions)
		}

		neg := conv.Conditions[0]
		if neg.Type != "not" || neg.Inner == nil {
			t.Fatalf("first condition = %+v", neg)
		}
		if neg.Inner.Type != "quest_active" || neg.Inner.Params["quest"] != "merchant_mystery" {
			t.Errorf("inner condition = %+v", neg.Inner)
		}

		hours := conv.Conditions[1]
		if hours.Type != "time_between" || hours.Params["from"] != 8 || hours.Params["to"] != 20 {
			t.Errorf("second condition = %+v", hours)
		}
	})

	t.Run("nodes and choices", func(t *testing.T) {
		conv, _ := cat.Conversation("elara", "merchant_worries")

		start := conv.Nodes["start"]
		if start.Speaker != types.SpeakerNpc {
			t.Errorf("speaker = %q", start.Speaker)
		}
		if len(start.Variants) != 2 {
			t.Fatalf("variants = %+v", start.Variants)
		}
		if start.Variants[1].Mood != "angry" || start.Variants[1].Weight != 1 {
			t.Errorf("angry variant = %+v", start.Variants[1])
		}
		if len(start.Choices) != 2 {
			t.Fatalf("choices = %+v", start.Choices)
		}
		accept := start.Choices[0]
		if accept.ID != "accept" || accept.Next != "briefing" {
			t.Errorf("accept = %+v", accept)
		}
		if len(accept.Consequences) != 2 || accept.Consequences[0].Type != "start_quest" {
			t.Errorf("accept consequences = %+v", accept.Consequences)
		}
		if accept.Consequences[1].Params["delta"] != 5 {
			t.Errorf("trust delta = %v", accept.Consequences[1].Params["delta"])
		}
		// A choice without an authored id gets a positional one.
		if start.Choices[1].ID != "start_2" {
			t.Errorf("generated choice id = %q", start.Choices[1].ID)
		}

		briefing := conv.Nodes["briefing"]
		// "text" shorthand compiles to a single default variant.
		if len(briefing.Variants) != 1 || briefing.Variants[0].Mood != "" {
			t.Errorf("briefing variants = %+v", briefing.Variants)
		}
		if len(briefing.OnEnter) != 1 || briefing.OnEnter[0].Type != "reveal_clue" {
			t.Errorf("on_enter = %+v", briefing.OnEnter)
		}
		if got := briefing.Choices[0].Conditions[0]; got.Type != "trust_at_least" || got.Params["level"] != "neutral" {
			t.Errorf("gate = %+v", got)
		}
	})
}

func writeLua(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		if _, err := Load(t.TempDir()); err == nil {
			t.Error("empty directory accepted")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := t.TempDir()
		writeLua(t, dir, "bad.lua", `Quest "x" {`)
		if _, err := Load(dir); err == nil {
			t.Error("syntax error accepted")
		}
	})

	t.Run("sandbox blocks os access", func(t *testing.T) {
		dir := t.TempDir()
		writeLua(t, dir, "evil.lua", `os.remove("/etc/passwd")`)
		if _, err := Load(dir); err == nil {
			t.Error("os library reachable from content")
		}
	})

	t.Run("duplicate quest", func(t *testing.T) {
		dir := t.TempDir()
		writeLua(t, dir, "dup.lua", `
Quest "twice" { title = "A", initial_phase = "p", phases = { p = { terminal = true } } }
Quest "twice" { title = "B", initial_phase = "p", phases = { p = { terminal = true } } }
`)
		_, err := Load(dir)
		if err == nil || !strings.Contains(err.Error(), "duplicate quest") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("unknown evidence strength", func(t *testing.T) {
		dir := t.TempDir()
		writeLua(t, dir, "bad.lua", `
Quest "q" {
    title = "Q", initial_phase = "p",
    phases = { p = { terminal = true, required_evidence = "damning" } },
}
`)
		_, err := Load(dir)
		if err == nil || !strings.Contains(err.Error(), "evidence strength") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("dangling reference fails validation", func(t *testing.T) {
		dir := t.TempDir()
		writeLua(t, dir, "bad.lua", `
Quest "q" {
    title = "Q", initial_phase = "p",
    phases = { p = { terminal = true, next = { "nowhere" } } },
}
`)
		var verr *ValidationError
		_, err := Load(dir)
		if err == nil {
			t.Fatal("dangling phase reference accepted")
		}
		if !errors.As(err, &verr) {
			t.Fatalf("err = %T, want *ValidationError", err)
		}
	})
}
