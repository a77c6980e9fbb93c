package localstore

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/pathakanu/medTrack/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return New(path, log.New(io.Discard, "", 0))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	state := s.Load("2026-08-30")

	if !model.ValidPatientCode(state.PatientID) {
		t.Fatalf("expected generated patient code, got %q", state.PatientID)
	}
	if len(state.Medications) == 0 {
		t.Fatal("expected default medication registry")
	}
	if state.CurrentReport.Date != "2026-08-30" {
		t.Fatalf("expected blank report for today, got %q", state.CurrentReport.Date)
	}
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if err := os.WriteFile(s.path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	state := s.Load("2026-08-30")
	if state == nil || len(state.Medications) == 0 {
		t.Fatal("corrupt file must fall back to a usable default state")
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	partial := `{"patientName":"Selim","currentReport":{"date":"2026-08-30"}}`
	if err := os.WriteFile(s.path, []byte(partial), 0o600); err != nil {
		t.Fatalf("seed partial file: %v", err)
	}

	state := s.Load("2026-08-30")
	if state.PatientName != "Selim" {
		t.Fatalf("expected persisted name kept, got %q", state.PatientName)
	}
	if state.Taken == nil || state.DailyReports == nil || state.CustomHours == nil {
		t.Fatal("expected maps initialized on load")
	}
	if !model.ValidPatientCode(state.PatientID) {
		t.Fatalf("expected patient code generated for legacy state, got %q", state.PatientID)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	state := model.DefaultState("2026-08-30")
	state.PatientName = "Roundtrip"
	state.Taken["eliquis-1"] = true

	if err := s.Save(state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := s.Load("2026-08-30")
	if loaded.PatientName != "Roundtrip" || !loaded.Taken["eliquis-1"] {
		t.Fatalf("loaded state does not match saved state: %+v", loaded)
	}
	if loaded.PatientID != state.PatientID {
		t.Fatalf("patient code changed across save/load: %q vs %q", loaded.PatientID, state.PatientID)
	}
}
