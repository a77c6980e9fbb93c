package model

// TimeSlot is one of the 8 fixed times of day a medication can be scheduled
// against. Users never create slots; medications only reference them.
type TimeSlot string

const (
	SlotMorningFasting TimeSlot = "morning-fasting"
	SlotAfterBreakfast TimeSlot = "after-breakfast"
	SlotBeforeLunch    TimeSlot = "before-lunch"
	SlotAfterLunch     TimeSlot = "after-lunch"
	SlotAfternoon      TimeSlot = "afternoon"
	SlotSixPM          TimeSlot = "six-pm"
	SlotAfterDinner    TimeSlot = "after-dinner"
	SlotBeforeBed      TimeSlot = "before-bed"
)

// slotOrder is the canonical display order, earliest first.
var slotOrder = []TimeSlot{
	SlotMorningFasting,
	SlotAfterBreakfast,
	SlotBeforeLunch,
	SlotAfterLunch,
	SlotAfternoon,
	SlotSixPM,
	SlotAfterDinner,
	SlotBeforeBed,
}

// slotHours maps each slot to the local wall-clock hour at which its
// medications come due. The hour is inclusive: a dose is late at the
// trigger hour, not one minute past it.
var slotHours = map[TimeSlot]int{
	SlotMorningFasting: 7,
	SlotAfterBreakfast: 9,
	SlotBeforeLunch:    14,
	SlotAfterLunch:     15,
	SlotAfternoon:      17,
	SlotSixPM:          18,
	SlotAfterDinner:    20,
	SlotBeforeBed:      22,
}

var slotLabels = map[TimeSlot]string{
	SlotMorningFasting: "Morning (fasting)",
	SlotAfterBreakfast: "After breakfast",
	SlotBeforeLunch:    "Before lunch",
	SlotAfterLunch:     "After lunch",
	SlotAfternoon:      "Afternoon",
	SlotSixPM:          "6 PM",
	SlotAfterDinner:    "After dinner",
	SlotBeforeBed:      "Before bed",
}

// Slots returns all time slots in canonical order.
func Slots() []TimeSlot {
	out := make([]TimeSlot, len(slotOrder))
	copy(out, slotOrder)
	return out
}

// Hour returns the trigger hour for the slot.
func (s TimeSlot) Hour() int {
	return slotHours[s]
}

// Label returns the human-readable name for the slot.
func (s TimeSlot) Label() string {
	return slotLabels[s]
}

// Valid reports whether s is one of the 8 fixed slots.
func (s TimeSlot) Valid() bool {
	_, ok := slotHours[s]
	return ok
}

// SlotOrDefault normalizes arbitrary input to a known slot, falling back
// to the morning slot for anything unrecognized.
func SlotOrDefault(s string) TimeSlot {
	if slot := TimeSlot(s); slot.Valid() {
		return slot
	}
	return SlotMorningFasting
}

// Category groups medications for display and for the analysis prompt.
type Category string

const (
	CategoryPressure     Category = "pressure"
	CategoryDiabetes     Category = "diabetes"
	CategoryBloodThinner Category = "blood-thinner"
	CategoryAntibiotic   Category = "antibiotic"
	CategoryStomach      Category = "stomach"
	CategoryOther        Category = "other"
)

var knownCategories = map[Category]bool{
	CategoryPressure:     true,
	CategoryDiabetes:     true,
	CategoryBloodThinner: true,
	CategoryAntibiotic:   true,
	CategoryStomach:      true,
	CategoryOther:        true,
}

// CategoryOrDefault normalizes arbitrary input to a known category,
// falling back to "other".
func CategoryOrDefault(c string) Category {
	if cat := Category(c); knownCategories[cat] {
		return cat
	}
	return CategoryOther
}

// Medication is a single scheduled dose entry. The ID is immutable once
// assigned; edits preserve it and removal is permanent.
type Medication struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Dosage         string   `json:"dosage"`
	Slot           TimeSlot `json:"timeSlot"`
	Notes          string   `json:"notes"`
	Critical       bool     `json:"isCritical"`
	FrequencyLabel string   `json:"frequencyLabel,omitempty"`
	Category       Category `json:"category,omitempty"`
	SideEffects    []string `json:"sideEffects,omitempty"`
}
