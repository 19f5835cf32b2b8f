package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUIStateRoundtrip(t *testing.T) {
	s := &Store{Dir: t.TempDir()}

	want := &UIState{
		View:            "session",
		SelectedProject: "demo",
		Collapsed:       map[string]bool{"tools": true},
		ShowPreview:     true,
	}
	if err := s.SaveUIState(want); err != nil {
		t.Fatalf("SaveUIState: %v", err)
	}

	got, err := s.LoadUIState()
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if got.Version != 1 {
		t.Fatalf("Version = %d, want 1", got.Version)
	}
	if got.View != "session" || got.SelectedProject != "demo" || !got.ShowPreview {
		t.Fatalf("loaded state = %+v", got)
	}
	if !got.Collapsed["tools"] || got.Collapsed["system"] {
		t.Fatalf("Collapsed = %v", got.Collapsed)
	}
}

func TestLoadUIStateMissingFile(t *testing.T) {
	s := &Store{Dir: t.TempDir()}

	got, err := s.LoadUIState()
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if got == nil || got.Version != 1 {
		t.Fatalf("missing file gave %+v, want fresh v1 state", got)
	}
}

func TestLoadUIStateCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, uiStateFileName), []byte("{half"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := &Store{Dir: dir}
	got, err := s.LoadUIState()
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if got.Version != 1 || got.View != "" {
		t.Fatalf("corrupt file gave %+v, want fresh v1 state", got)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Dir: dir}
	if err := s.SaveUIState(&UIState{View: "projects"}); err != nil {
		t.Fatalf("SaveUIState: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, uiStateFileName+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file still present (stat err = %v)", err)
	}
}
