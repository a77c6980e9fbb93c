// Package speech owns audio playback for spoken reminders. One Speaker
// handle is created at startup and passed to whoever needs it; there is
// no ambient global playback state.
package speech

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
)

// Synthesizer turns text into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// PlayFunc plays audio until it finishes or the context is canceled.
type PlayFunc func(ctx context.Context, audio []byte) error

// Speaker plays one utterance at a time. Starting a new one implicitly
// stops whatever is currently playing.
type Speaker struct {
	synth  Synthesizer
	play   PlayFunc
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a speaker using the default external-player playback.
func New(synth Synthesizer, logger *log.Logger) *Speaker {
	return &Speaker{synth: synth, play: playWithCommand, logger: logger}
}

// NewWithPlayer creates a speaker with a custom playback function.
func NewWithPlayer(synth Synthesizer, play PlayFunc, logger *log.Logger) *Speaker {
	return &Speaker{synth: synth, play: play, logger: logger}
}

// Start synthesizes the text and begins playback, stopping any prior
// utterance first. Synthesis failures are returned; playback itself runs
// in the background and only logs.
func (s *Speaker) Start(ctx context.Context, text string) error {
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}

	playCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()
		if err := s.play(playCtx, audio); err != nil && playCtx.Err() == nil {
			s.logger.Printf("speech: playback: %v", err)
		}
	}()
	return nil
}

// Stop halts any current playback. Calling it with nothing playing is a
// no-op.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// playWithCommand shells out to the first available audio player.
func playWithCommand(ctx context.Context, audio []byte) error {
	player, err := findPlayer()
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "medtrack-speech-*.mp3")
	if err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}

	return exec.CommandContext(ctx, player, f.Name()).Run()
}

func findPlayer() (string, error) {
	for _, candidate := range []string{"mpg123", "afplay", "ffplay", "mpv"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no audio player found on PATH")
}
