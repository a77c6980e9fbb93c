package mirror

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pathakanu/medTrack/internal/model"
)

// DefaultPushDelay coalesces rapid successive edits into one remote write.
const DefaultPushDelay = time.Second

const pushTimeout = 10 * time.Second

// Pusher schedules debounced snapshot pushes. A new Schedule before the
// delay elapses cancels the pending one and supersedes its snapshot, so a
// burst of edits produces a single write carrying the latest state.
type Pusher struct {
	store  *Store
	code   string
	delay  time.Duration
	logger *log.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *model.Snapshot
}

// NewPusher creates a pusher for the given patient code.
func NewPusher(store *Store, code string, delay time.Duration, logger *log.Logger) *Pusher {
	if delay <= 0 {
		delay = DefaultPushDelay
	}
	return &Pusher{store: store, code: code, delay: delay, logger: logger}
}

// Schedule queues the snapshot for pushing after the debounce delay,
// replacing any snapshot already queued.
func (p *Pusher) Schedule(snap model.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = &snap
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.flush)
}

// Flush pushes any pending snapshot immediately. Used at shutdown so the
// last edit is not lost to the debounce window.
func (p *Pusher) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.flush()
}

func (p *Pusher) flush() {
	p.mu.Lock()
	snap := p.pending
	p.pending = nil
	p.mu.Unlock()
	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := p.store.Push(ctx, p.code, *snap); err != nil {
		// Local state stays authoritative; the next edit reschedules.
		p.logger.Printf("mirror: push failed, local state unaffected: %v", err)
	}
}
