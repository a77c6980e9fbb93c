package speech

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"
)

type fakeSynth struct {
	err error
}

func (f fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(text), nil
}

func TestStartStopsPriorPlayback(t *testing.T) {
	t.Parallel()

	stopped := make(chan struct{}, 2)
	play := func(ctx context.Context, audio []byte) error {
		<-ctx.Done()
		stopped <- struct{}{}
		return ctx.Err()
	}

	s := NewWithPlayer(fakeSynth{}, play, log.New(io.Discard, "", 0))
	if err := s.Start(context.Background(), "first"); err != nil {
		t.Fatalf("start first: %v", err)
	}
	if err := s.Start(context.Background(), "second"); err != nil {
		t.Fatalf("start second: %v", err)
	}

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("first playback was not stopped by the second start")
	}

	s.Stop()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("second playback was not stopped")
	}

	// Stop with nothing playing is a no-op.
	s.Stop()
}

func TestStartSynthesisFailure(t *testing.T) {
	t.Parallel()

	s := NewWithPlayer(fakeSynth{err: errors.New("no key")}, func(context.Context, []byte) error { return nil }, log.New(io.Discard, "", 0))
	if err := s.Start(context.Background(), "hello"); err == nil {
		t.Fatal("expected synthesis error surfaced")
	}
}
