// Package alert gates outbound caregiver alerts and inbound nudges so
// neither side gets spammed by the per-minute evaluation tick.
package alert

import (
	"sync"
	"time"

	"github.com/pathakanu/medTrack/internal/model"
)

// Window is the minimum spacing between outbound caregiver alerts. The
// gate is process-global, not per medication: one alert covers every
// currently-late critical dose.
const Window = time.Hour

// NudgeStaleness is how old an inbound nudge may be and still surface as
// a new alert. The subscription can redeliver old documents; anything
// past this window is silently dropped.
const NudgeStaleness = 5 * time.Minute

// NudgeSkewTolerance bounds how far ahead of local time a nudge timestamp
// may sit. Caregiver clocks drift; a nudge further in the future would
// otherwise count as fresh forever, so it is dropped instead.
const NudgeSkewTolerance = 2 * time.Minute

// Debouncer allows at most one alert emission per rolling window.
// MarkSent must only be called after the transmission succeeded, so a
// failed send leaves the window open and the next tick retries. A
// duplicate after a transient failure beats an hour of silence.
type Debouncer struct {
	mu       sync.Mutex
	lastSent time.Time
}

// NewDebouncer returns a debouncer that has never sent.
func NewDebouncer() *Debouncer {
	return &Debouncer{}
}

// Ready reports whether a new alert may be emitted at the given instant.
func (d *Debouncer) Ready(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSent.IsZero() || now.Sub(d.lastSent) >= Window
}

// MarkSent records a successful emission, opening the next window.
func (d *Debouncer) MarkSent(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastSent = now
}

// NudgeGate decides whether an inbound nudge should interrupt the
// patient. A nudge passes at most once per session, and only while its
// timestamp is within the staleness window of receipt.
type NudgeGate struct {
	mu       sync.Mutex
	lastSeen time.Time
}

// NewNudgeGate returns a gate that has seen nothing this session.
func NewNudgeGate() *NudgeGate {
	return &NudgeGate{}
}

// Accept reports whether the nudge is fresh and unseen, recording its
// timestamp when it passes. Stale or replayed nudges return false with no
// side effects.
func (g *NudgeGate) Accept(n model.Nudge, now time.Time) bool {
	if n.Message == "" || n.Timestamp.IsZero() {
		return false
	}
	if now.Sub(n.Timestamp) > NudgeStaleness {
		return false
	}
	if n.Timestamp.Sub(now) > NudgeSkewTolerance {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !n.Timestamp.After(g.lastSeen) {
		return false
	}
	g.lastSeen = n.Timestamp
	return true
}
