// Package prefs persists the user's taste profile between runs.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tasteline-ai/tasteline/internal/analysis"
)

// ErrNotFound is returned when no profile has been saved yet.
var ErrNotFound = errors.New("preferences not found")

// Store reads and writes a single taste profile as a JSON file.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated profile behind.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store backed by the given file path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("preferences path is empty")
	}
	return &Store{path: path}, nil
}

// Load reads the saved profile. Returns ErrNotFound when the file does
// not exist.
func (s *Store) Load() (analysis.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return analysis.Profile{}, ErrNotFound
		}
		return analysis.Profile{}, fmt.Errorf("read preferences: %w", err)
	}

	var profile analysis.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return analysis.Profile{}, fmt.Errorf("decode preferences: %w", err)
	}
	return profile, nil
}

// Save writes the profile atomically.
func (s *Store) Save(profile analysis.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp preferences file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp preferences file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return fmt.Errorf("chmod temp preferences file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp preferences file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), s.path); err != nil {
		return fmt.Errorf("replace preferences file: %w", err)
	}
	return nil
}

// Delete removes the saved profile. Deleting a missing profile is not
// an error.
func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove preferences file: %w", err)
	}
	return nil
}
