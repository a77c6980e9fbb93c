package model

import "time"

// DateLayout is the calendar-date key format used throughout the state.
const DateLayout = "2006-01-02"

// HealthReport captures one day's vitals, symptoms and notes.
type HealthReport struct {
	Date         string   `json:"date"`
	HealthRating int      `json:"healthRating"`
	PainLevel    int      `json:"painLevel"`
	SleepQuality string   `json:"sleepQuality"`
	Appetite     string   `json:"appetite"`
	Symptoms     []string `json:"symptoms"`
	Notes        string   `json:"notes"`
	SystolicBP   int      `json:"systolicBP,omitempty"`
	DiastolicBP  int      `json:"diastolicBP,omitempty"`
	BloodSugar   int      `json:"bloodSugar,omitempty"`
	OxygenLevel  int      `json:"oxygenLevel,omitempty"`
	HeartRate    int      `json:"heartRate,omitempty"`
	WaterIntake  int      `json:"waterIntake,omitempty"`
	Mood         string   `json:"mood,omitempty"`
}

// BlankReport returns an empty report tagged with the given date.
func BlankReport(date string) HealthReport {
	return HealthReport{Date: date, Symptoms: []string{}}
}

// DayHistory is the immutable archive of one finished day.
type DayHistory struct {
	Report  HealthReport    `json:"report"`
	Taken   map[string]bool `json:"takenMedications"`
	Summary string          `json:"summary,omitempty"`
}

// HistoryEntry is one line in the patient's recent action log.
type HistoryEntry struct {
	Date      string `json:"date"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

// MaxHistoryEntries caps the action log; older entries fall off the end.
const MaxHistoryEntries = 30

// AppState is the full locally-persisted patient state, serialized as a
// single JSON blob. Absent keys in Taken mean "not taken".
type AppState struct {
	PatientName     string                `json:"patientName"`
	PatientAge      int                   `json:"patientAge"`
	PatientID       string                `json:"patientId"`
	Medications     []Medication          `json:"medications"`
	Taken           map[string]bool       `json:"takenMedications"`
	NotificationsOn bool                  `json:"notificationsEnabled"`
	NotifiedToday   []string              `json:"sentNotifications"`
	CustomHours     map[string]int        `json:"customReminderHours"`
	History         []HistoryEntry        `json:"history"`
	DailyReports    map[string]DayHistory `json:"dailyReports"`
	CurrentReport   HealthReport          `json:"currentReport"`
}

// DefaultState returns a fresh patient state for the given date with the
// standard medication registry and a newly generated patient code.
func DefaultState(today string) *AppState {
	return &AppState{
		PatientName:   "Dear Patient",
		PatientAge:    65,
		PatientID:     NewPatientCode(),
		Medications:   DefaultMedications(),
		Taken:         map[string]bool{},
		NotifiedToday: []string{},
		CustomHours:   map[string]int{},
		History:       []HistoryEntry{},
		DailyReports:  map[string]DayHistory{},
		CurrentReport: BlankReport(today),
	}
}

// Normalize fills in zero-valued fields after a load so the rest of the
// program never has to nil-check maps or regenerate identifiers.
func (s *AppState) Normalize(today string) {
	if s.PatientID == "" {
		s.PatientID = NewPatientCode()
	}
	if s.Medications == nil {
		s.Medications = DefaultMedications()
	}
	if s.Taken == nil {
		s.Taken = map[string]bool{}
	}
	if s.NotifiedToday == nil {
		s.NotifiedToday = []string{}
	}
	if s.CustomHours == nil {
		s.CustomHours = map[string]int{}
	}
	if s.History == nil {
		s.History = []HistoryEntry{}
	}
	if s.DailyReports == nil {
		s.DailyReports = map[string]DayHistory{}
	}
	if s.CurrentReport.Date == "" {
		s.CurrentReport = BlankReport(today)
	}
	for i := range s.Medications {
		s.Medications[i].Slot = SlotOrDefault(string(s.Medications[i].Slot))
		s.Medications[i].Category = CategoryOrDefault(string(s.Medications[i].Category))
	}
}

// LogAction prepends an entry to the action history, trimming to the cap.
func (s *AppState) LogAction(now time.Time, action, details string) {
	entry := HistoryEntry{
		Date:      now.Format(DateLayout),
		Action:    action,
		Details:   details,
		Timestamp: now.Format("15:04"),
	}
	s.History = append([]HistoryEntry{entry}, s.History...)
	if len(s.History) > MaxHistoryEntries {
		s.History = s.History[:MaxHistoryEntries]
	}
}

// Snapshot is the patient-owned portion of the remote document. The nudge
// field is deliberately absent: it belongs to the caregiver.
type Snapshot struct {
	PatientName     string                `json:"patientName"`
	PatientAge      int                   `json:"patientAge"`
	Medications     []Medication          `json:"medications"`
	Taken           map[string]bool       `json:"takenMedications"`
	History         []HistoryEntry        `json:"history"`
	CurrentReport   HealthReport          `json:"currentReport"`
	DailyReports    map[string]DayHistory `json:"dailyReports"`
	NotificationsOn bool                  `json:"notificationsEnabled"`
}

// Snapshot extracts the mirrored subset of the state. Maps and slices are
// copied so the snapshot can be read and marshaled without holding the
// owner's lock while the state keeps changing underneath.
func (s *AppState) Snapshot() Snapshot {
	meds := make([]Medication, len(s.Medications))
	copy(meds, s.Medications)
	taken := make(map[string]bool, len(s.Taken))
	for id, v := range s.Taken {
		taken[id] = v
	}
	history := make([]HistoryEntry, len(s.History))
	copy(history, s.History)
	reports := make(map[string]DayHistory, len(s.DailyReports))
	for date, day := range s.DailyReports {
		reports[date] = day
	}
	return Snapshot{
		PatientName:     s.PatientName,
		PatientAge:      s.PatientAge,
		Medications:     meds,
		Taken:           taken,
		History:         history,
		CurrentReport:   s.CurrentReport,
		DailyReports:    reports,
		NotificationsOn: s.NotificationsOn,
	}
}

// Nudge is the caregiver-to-patient side channel: one message overwritten
// in place, freshness decided by its timestamp.
type Nudge struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
