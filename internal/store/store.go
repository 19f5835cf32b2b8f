// Package store manages anthropide's local state directory (persisted UI
// state, default sqlite database location).
package store

import (
	"os"
	"path/filepath"
	"strings"
)

// Store addresses one state directory. The zero value (empty Dir) resolves
// to ~/.anthropide on first use.
type Store struct {
	Dir string
}

// ResolveDir returns the effective state directory, honoring ANTHROPIDE_DIR.
func ResolveDir() (string, error) {
	if d := strings.TrimSpace(os.Getenv("ANTHROPIDE_DIR")); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".anthropide"), nil
}

func (s *Store) dir() (string, error) {
	if strings.TrimSpace(s.Dir) != "" {
		return s.Dir, nil
	}
	d, err := ResolveDir()
	if err != nil {
		return "", err
	}
	s.Dir = d
	return d, nil
}

// Ensure creates the state directory if needed.
func (s *Store) Ensure() error {
	d, err := s.dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(d, 0o755)
}

// DefaultDBPath is where `anthropide serve` keeps its sqlite database when
// ANTHROPIDE_DB is not set.
func (s *Store) DefaultDBPath() (string, error) {
	d, err := s.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "sessions.db"), nil
}
