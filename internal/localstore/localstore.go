// Package localstore persists the full patient state as one JSON blob on
// disk. The local copy is always authoritative; the remote mirror is a
// best-effort replica layered on top of it.
package localstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pathakanu/medTrack/internal/model"
)

// Store reads and writes the single state file.
type Store struct {
	path   string
	logger *log.Logger
}

// New creates a store bound to the given file path.
func New(path string, logger *log.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// DefaultPath returns the conventional state file location under the
// user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "medtrack-state.json"
	}
	return filepath.Join(home, ".medtrack", "state.json")
}

// Load reads the persisted state. Any read or parse failure falls back to
// a fresh default state: a broken file must never take the app down.
// Missing fields are filled with defaults.
func (s *Store) Load(today string) *model.AppState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Printf("localstore: read %s: %v, starting blank", s.path, err)
		}
		return model.DefaultState(today)
	}

	state := &model.AppState{}
	if err := json.Unmarshal(data, state); err != nil {
		s.logger.Printf("localstore: parse %s: %v, starting blank", s.path, err)
		return model.DefaultState(today)
	}

	state.Normalize(today)
	return state
}

// Save writes the state atomically via a temp file rename.
func (s *Store) Save(state *model.AppState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
