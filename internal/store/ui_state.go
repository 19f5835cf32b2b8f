package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const uiStateFileName = "ui_state.json"

// UIState stores small, user-facing UI state for restoring the last screen on
// relaunch: selected project, collapsed sections, preview toggle.
//
// It is intentionally "best effort": callers should tolerate missing/invalid
// data. Saves go through the same debounce controller as document saves.
type UIState struct {
	Version int `json:"version"`

	// View is one of: projects|session
	View string `json:"view,omitempty"`

	SelectedProject string `json:"selectedProject,omitempty"`

	// Collapsed flags keyed by section name (system|tools|messages).
	Collapsed map[string]bool `json:"collapsed,omitempty"`

	ShowPreview bool `json:"showPreview,omitempty"`
}

func (s *Store) uiStatePath() (string, error) {
	d, err := s.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, uiStateFileName), nil
}

func (s *Store) LoadUIState() (*UIState, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	path, err := s.uiStatePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &UIState{Version: 1}, nil
		}
		return nil, err
	}
	var st UIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return &UIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s *Store) SaveUIState(st *UIState) error {
	if st == nil {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	path, err := s.uiStatePath()
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
