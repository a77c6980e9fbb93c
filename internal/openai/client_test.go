package openai

import (
	"context"
	"strings"
	"testing"

	"github.com/pathakanu/medTrack/internal/model"
)

func TestAnalyzeHealthWithoutKey(t *testing.T) {
	t.Parallel()

	client := New("")
	_, err := client.AnalyzeHealth(context.Background(), model.Snapshot{}, nil, 10)
	if err != ErrClientNotInitialised {
		t.Fatalf("expected ErrClientNotInitialised, got %v", err)
	}
}

func TestParseAnalysis(t *testing.T) {
	t.Parallel()

	good := `{"summary":"Doing well","recommendations":["drink water"],"warnings":[],"positivePoints":["took all morning doses"]}`
	analysis, err := parseAnalysis(good)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Summary != "Doing well" || len(analysis.Recommendations) != 1 {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}

	fenced := "```json\n" + good + "\n```"
	if _, err := parseAnalysis(fenced); err != nil {
		t.Fatalf("fenced output should parse: %v", err)
	}

	for _, bad := range []string{"", "not json", `{"recommendations":["no summary"]}`} {
		if _, err := parseAnalysis(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestBuildAnalysisPromptMentionsLateCriticals(t *testing.T) {
	t.Parallel()

	snap := model.Snapshot{
		PatientName: "Selim",
		PatientAge:  70,
		Medications: []model.Medication{
			{ID: "eliquis-1", Name: "Eliquis 2.5 mg", Slot: model.SlotAfterBreakfast, Critical: true,
				SideEffects: []string{"gum bleeding"}},
			{ID: "norvasc", Name: "Norvasc 10 mg", Slot: model.SlotMorningFasting},
		},
		Taken:         map[string]bool{"norvasc": true},
		CurrentReport: model.HealthReport{Date: "2026-08-30", Symptoms: []string{"headache"}},
	}

	prompt := buildAnalysisPrompt(snap, nil, 10)
	if !strings.Contains(prompt, "Eliquis 2.5 mg (critical)") {
		t.Fatalf("prompt missing late critical medication:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Medications taken today: Norvasc 10 mg") {
		t.Fatalf("prompt missing taken medication:\n%s", prompt)
	}
	if !strings.Contains(prompt, "headache") {
		t.Fatalf("prompt missing symptoms:\n%s", prompt)
	}
}

func TestSynthesizeWithoutKey(t *testing.T) {
	t.Parallel()

	client := New("")
	if _, err := client.Synthesize(context.Background(), "hello"); err != ErrClientNotInitialised {
		t.Fatalf("expected ErrClientNotInitialised, got %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty text")
	}
}
