package tracker

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/pathakanu/medTrack/internal/adherence"
	"github.com/pathakanu/medTrack/internal/model"
)

// StateView is what the UI layer renders: the active data plus the
// derived late sets and progress.
type StateView struct {
	Mode         string             `json:"mode"`
	Loading      bool               `json:"loading,omitempty"`
	PatientID    string             `json:"patientId,omitempty"`
	Patient      *model.Snapshot    `json:"patient,omitempty"`
	CustomHours  map[string]int     `json:"customReminderHours,omitempty"`
	Late         []model.Medication `json:"late"`
	LateCritical []model.Medication `json:"lateCritical"`
	TakenCount   int                `json:"takenCount"`
	TotalCount   int                `json:"totalCount"`
	LastNudge    *model.Nudge       `json:"lastNudge,omitempty"`
}

// View assembles the current state view. In caregiver mode before the
// first delivery it reports loading rather than an empty-but-valid state.
func (t *Tracker) View() StateView {
	mode := "patient"
	if t.cfg.CaregiverMode() {
		mode = "caregiver"
	}

	snap, customHours, ok := t.activeSnapshot()
	if !ok {
		return StateView{Mode: mode, Loading: true}
	}

	hour := t.now().Hour()
	done, total := adherence.Progress(snap.Medications, snap.Taken)
	view := StateView{
		Mode:         mode,
		Patient:      &snap,
		CustomHours:  customHours,
		Late:         adherence.Late(snap.Medications, snap.Taken, customHours, hour),
		LateCritical: adherence.LateCritical(snap.Medications, snap.Taken, customHours, hour),
		TakenCount:   done,
		TotalCount:   total,
	}
	if t.cfg.CaregiverMode() {
		t.shadowMu.RLock()
		if !t.shadowNudge.Timestamp.IsZero() {
			nudge := t.shadowNudge
			view.LastNudge = &nudge
		}
		t.shadowMu.RUnlock()
	} else {
		t.mu.Lock()
		view.PatientID = t.state.PatientID
		t.mu.Unlock()
	}
	return view
}

// Handler returns the HTTP handler exposing the tracker to the UI layer.
func (t *Tracker) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /state", t.handleState)
	mux.HandleFunc("POST /medications", t.handleAddMedication)
	mux.HandleFunc("PUT /medications/{id}", t.handleUpdateMedication)
	mux.HandleFunc("DELETE /medications/{id}", t.handleDeleteMedication)
	mux.HandleFunc("POST /medications/{id}/toggle", t.handleToggle)
	mux.HandleFunc("PUT /medications/{id}/reminder", t.handleSetReminder)
	mux.HandleFunc("PUT /report", t.handleUpdateReport)
	mux.HandleFunc("POST /analyze", t.handleAnalyze)
	mux.HandleFunc("POST /nudge", t.handleNudge)
	mux.HandleFunc("POST /speech/stop", t.handleStopSpeech)
	mux.HandleFunc("GET /health", t.handleHealth)

	return mux
}

func (t *Tracker) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (t *Tracker) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, t.View())
}

func (t *Tracker) handleAddMedication(w http.ResponseWriter, r *http.Request) {
	var med model.Medication
	if err := json.NewDecoder(r.Body).Decode(&med); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := t.AddMedication(med)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (t *Tracker) handleUpdateMedication(w http.ResponseWriter, r *http.Request) {
	var med model.Medication
	if err := json.NewDecoder(r.Body).Decode(&med); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := t.UpdateMedication(r.PathValue("id"), med)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (t *Tracker) handleDeleteMedication(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := t.DeleteMedication(r.PathValue("id"), confirmed); err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (t *Tracker) handleToggle(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	taken, err := t.ToggleMedication(r.PathValue("id"), confirmed)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"taken": taken})
}

func (t *Tracker) handleSetReminder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hour int `json:"hour"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := t.SetCustomHour(r.PathValue("id"), req.Hour); err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"hour": req.Hour})
}

func (t *Tracker) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	var patch ReportPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	report, err := t.UpdateReport(patch)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (t *Tracker) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := t.Analyze(r.Context())
	if err != nil {
		t.logger.Printf("tracker: analysis failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "analysis unavailable, please try again later")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (t *Tracker) handleNudge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	// An empty body is fine; a default message is substituted.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := t.SendNudge(r.Context(), strings.TrimSpace(req.Message)); err != nil {
		t.logger.Printf("tracker: send nudge: %v", err)
		writeError(w, http.StatusBadGateway, "could not reach the patient's document")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (t *Tracker) handleStopSpeech(w http.ResponseWriter, r *http.Request) {
	t.StopSpeech()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrReadOnly):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrConfirmRequired):
		writeError(w, http.StatusConflict, "confirmation required: repeat the request with confirm=true")
	case errors.Is(err, ErrMedicationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
