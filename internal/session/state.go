package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"SantaClicker/internal/economy"
)

// State is the on-disk session file: an engine snapshot plus save time.
type State struct {
	SavedAt  time.Time        `json:"saved_at"`
	Snapshot economy.Snapshot `json:"snapshot"`
}

// LoadState reads the session file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &state, nil
}

// SaveState writes the session file via a temp file and rename.
func SaveState(filePath string, state *State) error {
	state.SavedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Store saves and restores one engine against one file.
type Store struct {
	path   string
	engine *economy.Engine
}

func NewStore(path string, engine *economy.Engine) *Store {
	return &Store{path: path, engine: engine}
}

// Save writes the current engine snapshot.
func (s *Store) Save() error {
	return SaveState(s.path, &State{Snapshot: s.engine.Snapshot()})
}

// Restore loads the file into the engine. It returns the time the session was
// saved, which is zero when there was nothing to restore.
func (s *Store) Restore() (time.Time, error) {
	state, err := LoadState(s.path)
	if err != nil {
		return time.Time{}, err
	}
	if state.SavedAt.IsZero() {
		return time.Time{}, nil
	}
	if err := s.engine.Restore(state.Snapshot); err != nil {
		return time.Time{}, err
	}
	return state.SavedAt, nil
}
