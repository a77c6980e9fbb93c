// Package adherence holds the dose-lateness rules and the daily rollover.
// Everything here is pure: callers supply the clock reading.
package adherence

import "github.com/pathakanu/medTrack/internal/model"

// TriggerHour resolves the hour at which a medication comes due: a custom
// reminder hour when the patient set one, otherwise the slot's hour.
func TriggerHour(med model.Medication, customHours map[string]int) int {
	if h, ok := customHours[med.ID]; ok && h >= 0 && h <= 23 {
		return h
	}
	return med.Slot.Hour()
}

// Late returns the medications that are not marked taken and whose trigger
// hour has already arrived today. The trigger hour is inclusive: a dose is
// late at the hour itself. Input order is preserved; absent keys in taken
// mean "not taken".
func Late(meds []model.Medication, taken map[string]bool, customHours map[string]int, hour int) []model.Medication {
	var late []model.Medication
	for _, med := range meds {
		if taken[med.ID] {
			continue
		}
		if hour >= TriggerHour(med, customHours) {
			late = append(late, med)
		}
	}
	return late
}

// LateCritical narrows Late to medications flagged critical. These are the
// ones worth interrupting a caregiver for.
func LateCritical(meds []model.Medication, taken map[string]bool, customHours map[string]int, hour int) []model.Medication {
	var late []model.Medication
	for _, med := range Late(meds, taken, customHours, hour) {
		if med.Critical {
			late = append(late, med)
		}
	}
	return late
}

// Progress counts taken doses against the registry size.
func Progress(meds []model.Medication, taken map[string]bool) (done, total int) {
	for _, med := range meds {
		if taken[med.ID] {
			done++
		}
	}
	return done, len(meds)
}

// Rollover archives the working day and resets adherence when the stored
// report date no longer matches today. It reports whether a day transition
// happened. Calling it again with matching dates is a no-op, so it is safe
// to run on every load and every tick.
func Rollover(state *model.AppState, today string) bool {
	if state.CurrentReport.Date == today {
		return false
	}
	if prev := state.CurrentReport.Date; prev != "" {
		state.DailyReports[prev] = model.DayHistory{
			Report: state.CurrentReport,
			Taken:  state.Taken,
		}
	}
	state.Taken = map[string]bool{}
	state.NotifiedToday = []string{}
	state.CurrentReport = model.BlankReport(today)
	return true
}
