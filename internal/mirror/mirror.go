// Package mirror is the reconciliation boundary between a patient's local
// state and the remote document a caregiver reads. The patient is the
// sole writer of the snapshot column; the caregiver is the sole writer of
// the nudge columns. All operations here are best-effort: a failure never
// touches local state.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pathakanu/medTrack/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no document exists for a patient code.
var ErrNotFound = errors.New("mirror: patient document not found")

// Store wraps the document table behind the narrow read/write contract.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a mirror store on an open database connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Push merge-writes the patient snapshot into the document for code,
// creating the row when absent. Only the snapshot column is assigned on
// conflict, so a previously written nudge survives every patient push.
func (s *Store) Push(ctx context.Context, code string, snap model.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	doc := model.PatientDocument{
		Code: code,
		Data: datatypes.JSON(raw),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("push snapshot for %s: %w", code, err)
	}
	return nil
}

// Fetch reads the full document for a patient code.
func (s *Store) Fetch(ctx context.Context, code string) (*model.PatientDocument, error) {
	var doc model.PatientDocument
	err := s.db.WithContext(ctx).First(&doc, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch document for %s: %w", code, err)
	}
	return &doc, nil
}

// SendNudge overwrites the nudge columns on the patient's document and
// nothing else. The previous nudge is replaced, not appended.
func (s *Store) SendNudge(ctx context.Context, code, message string) error {
	res := s.db.WithContext(ctx).Model(&model.PatientDocument{}).
		Where("code = ?", code).
		Updates(map[string]any{
			"nudge_message": message,
			"nudge_at":      s.now().UnixMilli(),
		})
	if res.Error != nil {
		return fmt.Errorf("send nudge to %s: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
