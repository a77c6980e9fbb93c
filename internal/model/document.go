package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// PatientDocument is the remote mirror row, one per patient code. Column
// ownership is the entire concurrency story: the patient process writes
// Data, the caregiver process writes only the nudge columns. Neither side
// may ever touch the other's columns.
type PatientDocument struct {
	Code         string         `gorm:"primaryKey;size:6"`
	Data         datatypes.JSON `gorm:"type:json"`
	NudgeMessage string         `gorm:"type:text"`
	NudgeAt      int64          `gorm:"not null;default:0"` // unix milliseconds
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

// Nudge returns the caregiver side-channel content, zero when none was
// ever sent.
func (d *PatientDocument) Nudge() Nudge {
	if d.NudgeAt == 0 {
		return Nudge{}
	}
	return Nudge{
		Message:   d.NudgeMessage,
		Timestamp: time.UnixMilli(d.NudgeAt),
	}
}

// Snapshot decodes the patient-owned payload. An empty Data column yields
// a zero snapshot without error.
func (d *PatientDocument) Snapshot() (Snapshot, error) {
	var snap Snapshot
	if len(d.Data) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(d.Data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
