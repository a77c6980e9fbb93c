package model

// DefaultMedications is the starter registry used when no saved state
// exists. Patients and caregivers edit it freely afterwards.
func DefaultMedications() []Medication {
	return []Medication{
		{
			ID: "examide", Name: "Examide 20 mg", Dosage: "one tablet", Slot: SlotMorningFasting,
			Notes: "diuretic, take on an empty stomach", FrequencyLabel: "7:00 AM", Category: CategoryOther,
			SideEffects: []string{"dizziness", "dry mouth", "muscle cramps"},
		},
		{
			ID: "norvasc", Name: "Norvasc 10 mg", Dosage: "one tablet", Slot: SlotMorningFasting,
			Notes: "blood pressure", FrequencyLabel: "7:00 AM", Category: CategoryPressure,
			SideEffects: []string{"swollen feet", "headache", "fatigue"},
		},
		{
			ID: "contorloc", Name: "Contorloc 40 mg", Dosage: "one tablet", Slot: SlotMorningFasting,
			Notes: "stomach acidity", FrequencyLabel: "7:00 AM", Category: CategoryStomach,
			SideEffects: []string{"diarrhea", "abdominal pain"},
		},
		{
			ID: "corvid", Name: "Corvid 6.25 mg", Dosage: "half tablet", Slot: SlotMorningFasting,
			Notes: "blood pressure and heart", FrequencyLabel: "7:00 AM", Category: CategoryPressure,
			SideEffects: []string{"slowed heart rate", "dizziness on standing"},
		},
		{
			ID: "aldomet-1", Name: "Aldomet 250 mg", Dosage: "two tablets", Slot: SlotAfterBreakfast,
			Notes: "first dose (every 8 hours)", FrequencyLabel: "9:00 AM", Category: CategoryPressure,
			SideEffects: []string{"drowsiness", "general weakness", "dry mouth"},
		},
		{
			ID: "eliquis-1", Name: "Eliquis 2.5 mg", Dosage: "one tablet", Slot: SlotAfterBreakfast,
			Notes: "blood thinner, bleeding risk", Critical: true, FrequencyLabel: "9:00 AM", Category: CategoryBloodThinner,
			SideEffects: []string{"gum bleeding", "bruising", "nosebleeds"},
		},
		{
			ID: "acetyl-1", Name: "Acetyl Cysteine", Dosage: "one sachet", Slot: SlotAfterBreakfast,
			Notes: "mucolytic", FrequencyLabel: "9:00 AM", Category: CategoryOther,
			SideEffects: []string{"nausea"},
		},
		{
			ID: "forxiga", Name: "Forxiga 10 mg", Dosage: "one tablet", Slot: SlotBeforeLunch,
			Notes: "diabetes, drink plenty of water", FrequencyLabel: "2:00 PM", Category: CategoryDiabetes,
			SideEffects: []string{"frequent urination", "intense thirst"},
		},
		{
			ID: "eraloner", Name: "Eraloner 25 mg", Dosage: "one tablet", Slot: SlotAfternoon,
			Notes: "antidepressant/anxiolytic", FrequencyLabel: "5:00 PM", Category: CategoryOther,
			SideEffects: []string{"dry mouth", "drowsiness", "sweating"},
		},
		{
			ID: "aldomet-2", Name: "Aldomet 250 mg", Dosage: "two tablets", Slot: SlotAfternoon,
			Notes: "second dose (8 hours later)", FrequencyLabel: "5:00 PM", Category: CategoryPressure,
		},
		{
			ID: "cardura", Name: "Cardura 4 mg", Dosage: "one tablet", Slot: SlotSixPM,
			Notes: "blood pressure", FrequencyLabel: "6:00 PM", Category: CategoryPressure,
			SideEffects: []string{"dizziness", "palpitations"},
		},
		{
			ID: "plavix", Name: "Plavix 75 mg", Dosage: "one tablet", Slot: SlotAfterDinner,
			Notes: "blood thinner, high bleeding risk", Critical: true, FrequencyLabel: "8:00 PM", Category: CategoryBloodThinner,
			SideEffects: []string{"prolonged bleeding from cuts", "bruising"},
		},
		{
			ID: "lipitor", Name: "Lipitor 40 mg", Dosage: "one tablet", Slot: SlotAfterDinner,
			Notes: "cholesterol", FrequencyLabel: "8:00 PM", Category: CategoryOther,
			SideEffects: []string{"muscle pain", "tiredness"},
		},
		{
			ID: "spiriva", Name: "Spiriva 18 mcg", Dosage: "one puff", Slot: SlotAfterDinner,
			Notes: "inhaler", FrequencyLabel: "8:00 PM", Category: CategoryOther,
			SideEffects: []string{"dry throat"},
		},
		{
			ID: "eliquis-2", Name: "Eliquis 2.5 mg", Dosage: "one tablet", Slot: SlotBeforeBed,
			Notes: "evening dose", Critical: true, FrequencyLabel: "10:00 PM", Category: CategoryBloodThinner,
		},
		{
			ID: "aldomet-3", Name: "Aldomet 250 mg", Dosage: "two tablets", Slot: SlotBeforeBed,
			Notes: "third and final dose", FrequencyLabel: "10:00 PM", Category: CategoryPressure,
		},
		{
			ID: "acetyl-2", Name: "Acetyl Cysteine", Dosage: "one sachet", Slot: SlotBeforeBed,
			Notes: "evening dose", FrequencyLabel: "10:00 PM", Category: CategoryOther,
		},
	}
}
