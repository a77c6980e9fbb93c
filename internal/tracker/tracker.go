// Package tracker coordinates local state, the adherence tick, the remote
// mirror and outbound alerts. It fills the role the reminder loop plays in
// a messaging bot: everything meets here.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/pathakanu/medTrack/internal/adherence"
	"github.com/pathakanu/medTrack/internal/alert"
	"github.com/pathakanu/medTrack/internal/config"
	"github.com/pathakanu/medTrack/internal/localstore"
	"github.com/pathakanu/medTrack/internal/mirror"
	"github.com/pathakanu/medTrack/internal/model"
	myopenai "github.com/pathakanu/medTrack/internal/openai"
	"github.com/pathakanu/medTrack/internal/speech"
	"github.com/pathakanu/medTrack/internal/twilio"
)

var (
	// ErrReadOnly is returned for patient-state mutations attempted in
	// caregiver mode. The shadow copy is never mutated locally.
	ErrReadOnly = errors.New("tracker: caregiver view is read-only")
	// ErrConfirmRequired is returned when a destructive action arrives
	// without explicit confirmation.
	ErrConfirmRequired = errors.New("tracker: confirmation required")
	// ErrMedicationNotFound is returned for unknown medication IDs.
	ErrMedicationNotFound = errors.New("tracker: medication not found")
)

// Tracker owns the patient state (or the caregiver shadow) and runs the
// periodic evaluation.
type Tracker struct {
	cfg       *config.Config
	logger    *log.Logger
	store     *localstore.Store
	mirror    *mirror.Store // nil when the remote store is unreachable
	pusher    *mirror.Pusher
	debouncer *alert.Debouncer
	nudges    *alert.NudgeGate
	openAI    *myopenai.Client
	twilio    *twilio.Client
	speaker   *speech.Speaker
	cron      *cron.Cron
	now       func() time.Time

	watchCancel context.CancelFunc

	mu    sync.Mutex
	state *model.AppState

	shadowMu    sync.RWMutex
	shadow      *model.Snapshot
	shadowNudge model.Nudge
}

// New creates a fully configured Tracker. mirrorStore may be nil; the
// tracker then runs local-only and every remote concern is skipped.
func New(cfg *config.Config, store *localstore.Store, mirrorStore *mirror.Store, openAI *myopenai.Client, twilioClient *twilio.Client, speaker *speech.Speaker, logger *log.Logger) *Tracker {
	now := func() time.Time { return time.Now().In(cfg.LocalTimezone) }
	return &Tracker{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		mirror:    mirrorStore,
		debouncer: alert.NewDebouncer(),
		nudges:    alert.NewNudgeGate(),
		openAI:    openAI,
		twilio:    twilioClient,
		speaker:   speaker,
		cron:      cron.New(cron.WithLocation(cfg.LocalTimezone)),
		now:       now,
	}
}

// Start loads state, begins the per-minute evaluation and, when a mirror
// is available, the push/watch machinery.
func (t *Tracker) Start() error {
	today := t.now().Format(model.DateLayout)

	if !t.cfg.CaregiverMode() {
		state := t.store.Load(today)
		if adherence.Rollover(state, today) {
			t.logger.Printf("tracker: rolled over to %s", today)
		}
		t.mu.Lock()
		t.state = state
		t.mu.Unlock()
		if err := t.store.Save(state); err != nil {
			t.logger.Printf("tracker: save state: %v", err)
		}

		if t.mirror != nil {
			t.pusher = mirror.NewPusher(t.mirror, state.PatientID, mirror.DefaultPushDelay, t.logger)
			t.pusher.Schedule(state.Snapshot())
		}
	}

	if t.mirror != nil {
		ctx, cancel := context.WithCancel(context.Background())
		t.watchCancel = cancel
		if t.cfg.CaregiverMode() {
			go t.caregiverLoop(ctx)
		} else {
			go t.patientLoop(ctx)
		}
	}

	if _, err := t.cron.AddFunc("* * * * *", t.tick); err != nil {
		return err
	}
	t.cron.Start()
	return nil
}

// Stop shuts the tracker down, flushing the last snapshot and state.
func (t *Tracker) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	if t.watchCancel != nil {
		t.watchCancel()
	}
	t.speaker.Stop()
	if t.pusher != nil {
		t.pusher.Flush()
	}
	if !t.cfg.CaregiverMode() {
		t.mu.Lock()
		state := t.state
		t.mu.Unlock()
		if state != nil {
			if err := t.store.Save(state); err != nil {
				t.logger.Printf("tracker: final save: %v", err)
			}
		}
	}
}

// tick runs once per minute: rollover check, spoken reminders for newly
// late doses, and the debounced caregiver alert for late criticals.
func (t *Tracker) tick() {
	if t.cfg.CaregiverMode() {
		return
	}
	now := t.now()
	today := now.Format(model.DateLayout)

	t.mu.Lock()
	state := t.state
	if state == nil {
		t.mu.Unlock()
		return
	}

	if adherence.Rollover(state, today) {
		t.logger.Printf("tracker: rolled over to %s", today)
		t.commitLocked()
	}

	late := adherence.Late(state.Medications, state.Taken, state.CustomHours, now.Hour())
	newlyLate := t.unnotified(state, late)
	if len(newlyLate) > 0 {
		state.NotifiedToday = append(state.NotifiedToday, idsOf(newlyLate)...)
		t.commitLocked()
	}
	lateCritical := adherence.LateCritical(state.Medications, state.Taken, state.CustomHours, now.Hour())
	t.mu.Unlock()

	if len(newlyLate) > 0 {
		t.speakReminder(newlyLate)
	}
	if len(lateCritical) > 0 {
		t.alertCaregiver(lateCritical, now)
	}
}

// unnotified filters late medications down to those not yet announced
// today. Caller holds t.mu.
func (t *Tracker) unnotified(state *model.AppState, late []model.Medication) []model.Medication {
	seen := make(map[string]bool, len(state.NotifiedToday))
	for _, id := range state.NotifiedToday {
		seen[id] = true
	}
	var fresh []model.Medication
	for _, med := range late {
		if !seen[med.ID] {
			fresh = append(fresh, med)
		}
	}
	return fresh
}

func (t *Tracker) speakReminder(meds []model.Medication) {
	names := make([]string, len(meds))
	for i, med := range meds {
		names[i] = med.Name
	}
	text := fmt.Sprintf("Time for your medication: %s.", strings.Join(names, ", "))
	go func() {
		if err := t.speaker.Start(context.Background(), text); err != nil {
			t.logger.Printf("tracker: spoken reminder: %v", err)
		}
	}()
}

// alertCaregiver sends at most one alert per rolling hour covering every
// currently-late critical dose. A failed send leaves the window open so
// the next tick retries.
func (t *Tracker) alertCaregiver(lateCritical []model.Medication, now time.Time) {
	if t.twilio == nil || t.cfg.CaregiverNumber == "" {
		return
	}
	if !t.debouncer.Ready(now) {
		return
	}

	names := make([]string, len(lateCritical))
	for i, med := range lateCritical {
		names[i] = med.Name
	}
	body := fmt.Sprintf("%s has overdue critical medications: %s", t.patientName(), strings.Join(names, ", "))
	if err := t.twilio.SendAlert(t.cfg.CaregiverNumber, body); err != nil {
		t.logger.Printf("tracker: caregiver alert failed, will retry: %v", err)
		return
	}
	t.debouncer.MarkSent(now)
	t.logger.Printf("tracker: caregiver alerted about %d critical medications", len(lateCritical))
}

func (t *Tracker) patientName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == nil {
		return "patient"
	}
	return t.state.PatientName
}

// patientLoop watches the patient's own document for caregiver nudges.
func (t *Tracker) patientLoop(ctx context.Context) {
	t.mu.Lock()
	code := t.state.PatientID
	t.mu.Unlock()

	for doc := range t.mirror.Watch(ctx, code, t.cfg.WatchInterval, t.logger) {
		nudge := doc.Nudge()
		if !t.nudges.Accept(nudge, t.now()) {
			continue
		}
		t.logger.Printf("tracker: nudge from caregiver: %s", nudge.Message)
		go func(msg string) {
			if err := t.speaker.Start(context.Background(), msg); err != nil {
				t.logger.Printf("tracker: speak nudge: %v", err)
			}
		}(nudge.Message)
	}
}

// caregiverLoop maintains the read-only shadow of the target patient.
// Each delivery replaces the shadow wholesale.
func (t *Tracker) caregiverLoop(ctx context.Context) {
	for doc := range t.mirror.Watch(ctx, t.cfg.CaregiverTargetID, t.cfg.WatchInterval, t.logger) {
		snap, err := doc.Snapshot()
		if err != nil {
			t.logger.Printf("tracker: decode shadow snapshot: %v", err)
			continue
		}
		t.shadowMu.Lock()
		t.shadow = &snap
		t.shadowNudge = doc.Nudge()
		t.shadowMu.Unlock()
	}
}

// commitLocked persists the state and schedules a mirror push. Caller
// holds t.mu. Remote failure never affects the local write.
func (t *Tracker) commitLocked() {
	if err := t.store.Save(t.state); err != nil {
		t.logger.Printf("tracker: save state: %v", err)
	}
	if t.pusher != nil {
		t.pusher.Schedule(t.state.Snapshot())
	}
}

func idsOf(meds []model.Medication) []string {
	ids := make([]string, len(meds))
	for i, med := range meds {
		ids[i] = med.ID
	}
	return ids
}

// ToggleMedication flips a dose's taken flag. Un-marking a critical dose
// is destructive and requires confirmation.
func (t *Tracker) ToggleMedication(id string, confirmed bool) (bool, error) {
	if t.cfg.CaregiverMode() {
		return false, ErrReadOnly
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	med := findMedication(t.state.Medications, id)
	if med == nil {
		return false, ErrMedicationNotFound
	}

	if t.state.Taken[id] && med.Critical && !confirmed {
		return true, ErrConfirmRequired
	}

	taken := !t.state.Taken[id]
	t.state.Taken[id] = taken
	action := "dose taken"
	if !taken {
		action = "dose reverted"
	}
	t.state.LogAction(t.now(), action, med.Name)
	t.commitLocked()
	return taken, nil
}

// AddMedication registers a new medication with a fresh identifier.
func (t *Tracker) AddMedication(med model.Medication) (model.Medication, error) {
	if t.cfg.CaregiverMode() {
		return model.Medication{}, ErrReadOnly
	}
	if strings.TrimSpace(med.Name) == "" {
		return model.Medication{}, fmt.Errorf("medication name is required")
	}

	med.ID = uuid.NewString()
	med.Slot = model.SlotOrDefault(string(med.Slot))
	med.Category = model.CategoryOrDefault(string(med.Category))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Medications = append(t.state.Medications, med)
	t.state.LogAction(t.now(), "medication added", med.Name)
	t.commitLocked()
	return med, nil
}

// UpdateMedication edits a medication in place. The identifier is
// immutable; whatever ID the payload carries is ignored.
func (t *Tracker) UpdateMedication(id string, med model.Medication) (model.Medication, error) {
	if t.cfg.CaregiverMode() {
		return model.Medication{}, ErrReadOnly
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.state.Medications {
		if t.state.Medications[i].ID != id {
			continue
		}
		med.ID = id
		med.Slot = model.SlotOrDefault(string(med.Slot))
		med.Category = model.CategoryOrDefault(string(med.Category))
		t.state.Medications[i] = med
		t.state.LogAction(t.now(), "medication updated", med.Name)
		t.commitLocked()
		return med, nil
	}
	return model.Medication{}, ErrMedicationNotFound
}

// DeleteMedication removes a medication permanently. There is no
// soft-delete; adherence and custom-hour entries go with it.
func (t *Tracker) DeleteMedication(id string, confirmed bool) error {
	if t.cfg.CaregiverMode() {
		return ErrReadOnly
	}
	if !confirmed {
		return ErrConfirmRequired
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.state.Medications {
		if t.state.Medications[i].ID != id {
			continue
		}
		name := t.state.Medications[i].Name
		t.state.Medications = append(t.state.Medications[:i], t.state.Medications[i+1:]...)
		delete(t.state.Taken, id)
		delete(t.state.CustomHours, id)
		t.state.LogAction(t.now(), "medication removed", name)
		t.commitLocked()
		return nil
	}
	return ErrMedicationNotFound
}

// SetCustomHour overrides a medication's trigger hour; hour -1 clears the
// override and the slot hour applies again.
func (t *Tracker) SetCustomHour(id string, hour int) error {
	if t.cfg.CaregiverMode() {
		return ErrReadOnly
	}
	if hour < -1 || hour > 23 {
		return fmt.Errorf("hour must be 0-23, or -1 to clear")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if findMedication(t.state.Medications, id) == nil {
		return ErrMedicationNotFound
	}
	if hour == -1 {
		delete(t.state.CustomHours, id)
	} else {
		t.state.CustomHours[id] = hour
	}
	t.commitLocked()
	return nil
}

// ReportPatch carries a partial update of the current day's report.
// Only non-nil fields are applied.
type ReportPatch struct {
	HealthRating *int      `json:"healthRating"`
	PainLevel    *int      `json:"painLevel"`
	SleepQuality *string   `json:"sleepQuality"`
	Appetite     *string   `json:"appetite"`
	Symptoms     *[]string `json:"symptoms"`
	Notes        *string   `json:"notes"`
	SystolicBP   *int      `json:"systolicBP"`
	DiastolicBP  *int      `json:"diastolicBP"`
	BloodSugar   *int      `json:"bloodSugar"`
	OxygenLevel  *int      `json:"oxygenLevel"`
	HeartRate    *int      `json:"heartRate"`
	WaterIntake  *int      `json:"waterIntake"`
	Mood         *string   `json:"mood"`
}

// UpdateReport applies a partial edit to today's report.
func (t *Tracker) UpdateReport(patch ReportPatch) (model.HealthReport, error) {
	if t.cfg.CaregiverMode() {
		return model.HealthReport{}, ErrReadOnly
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	r := &t.state.CurrentReport
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&r.HealthRating, patch.HealthRating)
	setInt(&r.PainLevel, patch.PainLevel)
	setString(&r.SleepQuality, patch.SleepQuality)
	setString(&r.Appetite, patch.Appetite)
	if patch.Symptoms != nil {
		r.Symptoms = *patch.Symptoms
	}
	setString(&r.Notes, patch.Notes)
	setInt(&r.SystolicBP, patch.SystolicBP)
	setInt(&r.DiastolicBP, patch.DiastolicBP)
	setInt(&r.BloodSugar, patch.BloodSugar)
	setInt(&r.OxygenLevel, patch.OxygenLevel)
	setInt(&r.HeartRate, patch.HeartRate)
	setInt(&r.WaterIntake, patch.WaterIntake)
	setString(&r.Mood, patch.Mood)

	t.commitLocked()
	return *r, nil
}

// Analyze runs the AI health analysis over the active view (patient state
// or caregiver shadow) and speaks the summary on success. Failures are
// surfaced whole; no partial result is applied anywhere.
func (t *Tracker) Analyze(ctx context.Context) (*myopenai.Analysis, error) {
	snap, customHours, ok := t.activeSnapshot()
	if !ok {
		return nil, fmt.Errorf("no patient data available yet")
	}

	analysis, err := t.openAI.AnalyzeHealth(ctx, snap, customHours, t.now().Hour())
	if err != nil {
		return nil, err
	}

	go func(summary string) {
		if err := t.speaker.Start(context.Background(), summary); err != nil {
			t.logger.Printf("tracker: speak analysis: %v", err)
		}
	}(analysis.Summary)
	return analysis, nil
}

// SendNudge writes a message into the target patient's nudge field.
// Caregiver mode only; this is the single permitted caregiver write.
func (t *Tracker) SendNudge(ctx context.Context, message string) error {
	if !t.cfg.CaregiverMode() {
		return fmt.Errorf("nudges can only be sent in caregiver mode")
	}
	if t.mirror == nil {
		return fmt.Errorf("remote store unavailable")
	}
	if strings.TrimSpace(message) == "" {
		message = "Please check your medications"
	}
	return t.mirror.SendNudge(ctx, t.cfg.CaregiverTargetID, message)
}

// StopSpeech halts any playing utterance.
func (t *Tracker) StopSpeech() {
	t.speaker.Stop()
}

// activeSnapshot returns the data the evaluator and analyzer should look
// at: the local state in patient mode, the shadow in caregiver mode. ok
// is false while a caregiver has not yet received anything.
func (t *Tracker) activeSnapshot() (model.Snapshot, map[string]int, bool) {
	if t.cfg.CaregiverMode() {
		t.shadowMu.RLock()
		defer t.shadowMu.RUnlock()
		if t.shadow == nil {
			return model.Snapshot{}, nil, false
		}
		return *t.shadow, nil, true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	hours := make(map[string]int, len(t.state.CustomHours))
	for id, h := range t.state.CustomHours {
		hours[id] = h
	}
	return t.state.Snapshot(), hours, true
}

func findMedication(meds []model.Medication, id string) *model.Medication {
	for i := range meds {
		if meds[i].ID == id {
			return &meds[i]
		}
	}
	return nil
}
