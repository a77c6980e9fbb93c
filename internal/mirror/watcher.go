package mirror

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pathakanu/medTrack/internal/model"
)

// DefaultWatchInterval is how often the subscription polls the document.
const DefaultWatchInterval = 2 * time.Second

// Watch subscribes to the document for a patient code. Every time the
// document changes a full copy is delivered on the returned channel; the
// consumer replaces its shadow wholesale, newest-overwrites, no merging.
// Fetch errors are logged and show up only as a delivery gap, so a
// caregiver view stays in its loading state until data actually arrives.
// Cancel the context to tear the subscription down, e.g. when caregiver
// mode exits or the target code changes.
func (s *Store) Watch(ctx context.Context, code string, interval time.Duration, logger *log.Logger) <-chan model.PatientDocument {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ch := make(chan model.PatientDocument, 1)

	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastUpdated time.Time
		var lastNudgeAt int64
		for {
			doc, err := s.Fetch(ctx, code)
			switch {
			case errors.Is(err, ErrNotFound):
				// Nothing published yet; keep polling.
			case err != nil:
				if ctx.Err() == nil {
					logger.Printf("mirror: watch %s: %v", code, err)
				}
			default:
				if doc.UpdatedAt.After(lastUpdated) || doc.NudgeAt > lastNudgeAt {
					lastUpdated = doc.UpdatedAt
					lastNudgeAt = doc.NudgeAt
					select {
					case ch <- *doc:
					case <-ctx.Done():
						return
					}
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return ch
}
