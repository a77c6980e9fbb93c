package tracker

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pathakanu/medTrack/internal/alert"
	"github.com/pathakanu/medTrack/internal/config"
	"github.com/pathakanu/medTrack/internal/localstore"
	"github.com/pathakanu/medTrack/internal/model"
	myopenai "github.com/pathakanu/medTrack/internal/openai"
	"github.com/pathakanu/medTrack/internal/speech"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()

	logger := log.New(io.Discard, "", 0)
	cfg := &config.Config{LocalTimezone: time.UTC}
	store := localstore.New(filepath.Join(t.TempDir(), "state.json"), logger)

	state := model.DefaultState("2026-08-30")
	fixed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	return &Tracker{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		debouncer: alert.NewDebouncer(),
		nudges:    alert.NewNudgeGate(),
		openAI:    myopenai.New(""),
		speaker:   speech.NewWithPlayer(myopenai.New(""), func(context.Context, []byte) error { return nil }, logger),
		now:       func() time.Time { return fixed },
		state:     state,
	}
}

func TestToggleMedication(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)

	taken, err := tr.ToggleMedication("norvasc", false)
	if err != nil || !taken {
		t.Fatalf("toggle on: taken=%v err=%v", taken, err)
	}
	if len(tr.state.History) == 0 || tr.state.History[0].Action != "dose taken" {
		t.Fatalf("expected action logged, got %+v", tr.state.History)
	}

	taken, err = tr.ToggleMedication("norvasc", false)
	if err != nil || taken {
		t.Fatalf("toggle off non-critical should not need confirmation: taken=%v err=%v", taken, err)
	}

	if _, err := tr.ToggleMedication("ghost", false); err != ErrMedicationNotFound {
		t.Fatalf("expected ErrMedicationNotFound, got %v", err)
	}
}

func TestUntakeCriticalNeedsConfirmation(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)

	if _, err := tr.ToggleMedication("eliquis-1", false); err != nil {
		t.Fatalf("marking critical taken: %v", err)
	}

	if _, err := tr.ToggleMedication("eliquis-1", false); err != ErrConfirmRequired {
		t.Fatalf("expected ErrConfirmRequired, got %v", err)
	}
	if !tr.state.Taken["eliquis-1"] {
		t.Fatal("unconfirmed un-take must not change state")
	}

	taken, err := tr.ToggleMedication("eliquis-1", true)
	if err != nil || taken {
		t.Fatalf("confirmed un-take: taken=%v err=%v", taken, err)
	}
}

func TestEliquisLateScenario(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t) // clock fixed at hour 10

	view := tr.View()
	found := false
	for _, med := range view.Late {
		if med.ID == "eliquis-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected eliquis-1 (slot hour 9) late at hour 10, late=%v", view.Late)
	}

	if _, err := tr.ToggleMedication("eliquis-1", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	for _, med := range tr.View().Late {
		if med.ID == "eliquis-1" {
			t.Fatal("taken medication still in late set")
		}
	}
}

func TestAddUpdateDeleteMedication(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)

	created, err := tr.AddMedication(model.Medication{Name: "Aspirin 81 mg", Slot: "nonsense", Category: "bogus"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected identifier assigned")
	}
	if created.Slot != model.SlotMorningFasting || created.Category != model.CategoryOther {
		t.Fatalf("expected slot/category normalized, got %q/%q", created.Slot, created.Category)
	}

	updated, err := tr.UpdateMedication(created.ID, model.Medication{ID: "attempted-rename", Name: "Aspirin 100 mg", Slot: model.SlotAfterDinner})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("identifier must be immutable: %q -> %q", created.ID, updated.ID)
	}

	if err := tr.DeleteMedication(created.ID, false); err != ErrConfirmRequired {
		t.Fatalf("expected ErrConfirmRequired for delete, got %v", err)
	}
	if err := tr.DeleteMedication(created.ID, true); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if err := tr.DeleteMedication(created.ID, true); err != ErrMedicationNotFound {
		t.Fatalf("expected ErrMedicationNotFound after delete, got %v", err)
	}
}

func TestDeleteClearsAdherenceEntries(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)

	if _, err := tr.ToggleMedication("lipitor", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := tr.SetCustomHour("lipitor", 12); err != nil {
		t.Fatalf("set custom hour: %v", err)
	}
	if err := tr.DeleteMedication("lipitor", true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := tr.state.Taken["lipitor"]; ok {
		t.Fatal("taken entry survived deletion")
	}
	if _, ok := tr.state.CustomHours["lipitor"]; ok {
		t.Fatal("custom hour survived deletion")
	}
}

func TestUpdateReportPartial(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)

	notes := "slept badly"
	bp := 130
	report, err := tr.UpdateReport(ReportPatch{Notes: &notes, SystolicBP: &bp})
	if err != nil {
		t.Fatalf("update report: %v", err)
	}
	if report.Notes != "slept badly" || report.SystolicBP != 130 {
		t.Fatalf("patch not applied: %+v", report)
	}

	sugar := 110
	report, err = tr.UpdateReport(ReportPatch{BloodSugar: &sugar})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if report.Notes != "slept badly" {
		t.Fatal("untouched fields must survive a partial update")
	}
	if report.BloodSugar != 110 {
		t.Fatalf("patch not applied: %+v", report)
	}
}

func TestTickNotifiesEachLateMedicationOnce(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t) // hour 10: morning + after-breakfast slots late

	tr.tick()
	first := len(tr.state.NotifiedToday)
	if first == 0 {
		t.Fatal("expected late medications recorded as notified")
	}

	tr.tick()
	if len(tr.state.NotifiedToday) != first {
		t.Fatalf("second tick re-notified: %d -> %d", first, len(tr.state.NotifiedToday))
	}
}

func TestTickRollsOverAcrossMidnight(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)
	tr.state.Taken["norvasc"] = true

	next := time.Date(2026, 8, 31, 0, 1, 0, 0, time.UTC)
	tr.now = func() time.Time { return next }
	tr.tick()

	if tr.state.CurrentReport.Date != "2026-08-31" {
		t.Fatalf("expected working report for the new day, got %q", tr.state.CurrentReport.Date)
	}
	if _, ok := tr.state.DailyReports["2026-08-30"]; !ok {
		t.Fatal("expected previous day archived")
	}
	if len(tr.state.Taken) != 0 {
		t.Fatal("expected adherence reset after midnight")
	}
}

func TestConcurrentViewAndToggle(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)

	// The view evaluates late sets and the pusher marshals snapshots off
	// the state lock; both must work on copies while mutations keep
	// landing. Run with the race detector.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if _, err := tr.ToggleMedication("norvasc", true); err != nil {
				t.Errorf("toggle: %v", err)
				return
			}
			if err := tr.SetCustomHour("lipitor", 8+i%12); err != nil {
				t.Errorf("set custom hour: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		view := tr.View()
		if view.TotalCount == 0 {
			t.Fatal("view lost the medication registry")
		}
	}
	<-done
}

func TestCaregiverModeIsReadOnly(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)
	tr.cfg.CaregiverTargetID = "ABC123"

	if _, err := tr.ToggleMedication("norvasc", false); err != ErrReadOnly {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := tr.DeleteMedication("norvasc", true); err != ErrReadOnly {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}

	view := tr.View()
	if !view.Loading {
		t.Fatal("caregiver view must report loading before any snapshot arrives")
	}

	snap := model.Snapshot{PatientName: "Selim", Taken: map[string]bool{}}
	tr.shadow = &snap
	view = tr.View()
	if view.Loading || view.Patient == nil || view.Patient.PatientName != "Selim" {
		t.Fatalf("unexpected caregiver view: %+v", view)
	}
}

func TestShadowReplacedWholesale(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)
	tr.cfg.CaregiverTargetID = "ABC123"

	s1 := model.Snapshot{PatientName: "Selim", Taken: map[string]bool{"a": true, "b": true}}
	tr.shadow = &s1
	s2 := model.Snapshot{PatientName: "Selim", Taken: map[string]bool{"c": true}}
	tr.shadow = &s2

	view := tr.View()
	if view.Patient.Taken["a"] || view.Patient.Taken["b"] || !view.Patient.Taken["c"] {
		t.Fatalf("residual shadow fields: %+v", view.Patient.Taken)
	}
}

func TestHandlerToggleConfirmation(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)
	srv := httptest.NewServer(tr.Handler())
	defer srv.Close()

	post := func(path string) *http.Response {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(""))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		return resp
	}

	resp := post("/medications/eliquis-1/toggle")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first toggle: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = post("/medications/eliquis-1/toggle")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("unconfirmed critical un-take: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = post("/medications/eliquis-1/toggle?confirm=true")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirmed un-take: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = post("/medications/ghost/toggle")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown medication: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHandlerStateAndAnalyzeUnavailable(t *testing.T) {
	t.Parallel()
	tr := newTestTracker(t)
	srv := httptest.NewServer(tr.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/state")
	if err != nil {
		t.Fatalf("GET /state: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /state: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// No API key configured: analysis must degrade to a 503 only.
	resp, err = http.Post(srv.URL+"/analyze", "application/json", strings.NewReader(""))
	if err != nil {
		t.Fatalf("POST /analyze: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for unavailable analysis, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
