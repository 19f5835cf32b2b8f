package modal

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func mustResult(t *testing.T, results []Result) Result {
	t.Helper()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(results), results)
	}
	return results[0]
}

func TestPushAndCloseFiresCallbackOnce(t *testing.T) {
	s := NewStack()
	closes := 0
	h := s.Push(Spec{Title: "t", OnClose: func() { closes++ }})

	if s.Len() != 1 {
		t.Fatalf("Len = %d after push, want 1", s.Len())
	}
	s.Close(h)
	if s.Len() != 0 {
		t.Fatalf("Len = %d after close, want 0", s.Len())
	}
	s.Close(h) // already gone; must stay a no-op
	if closes != 1 {
		t.Fatalf("OnClose ran %d times, want exactly 1", closes)
	}
}

func TestConfirmResolvesBothWays(t *testing.T) {
	s := NewStack()

	// Default focus is the confirm button.
	h1 := s.Confirm("Delete?", "This cannot be undone.", "Delete", "Keep")
	res := mustResult(t, second(s.Update(key("enter"))))
	if res.Handle != h1 || res.Kind != ResultConfirm || !res.Confirmed {
		t.Fatalf("confirm result = %+v", res)
	}
	if s.Len() != 0 {
		t.Fatalf("dialog still open after resolution")
	}

	// Tab to cancel, then enter.
	h2 := s.Confirm("Delete?", "", "", "")
	s.Update(key("tab"))
	res = mustResult(t, second(s.Update(key("enter"))))
	if res.Handle != h2 || res.Confirmed {
		t.Fatalf("canceled confirm result = %+v", res)
	}
}

func TestConfirmEscDismissesAsCancel(t *testing.T) {
	s := NewStack()
	h := s.Confirm("Quit?", "", "", "")
	res := mustResult(t, second(s.Update(key("esc"))))
	if res.Handle != h || res.Kind != ResultConfirm || res.Confirmed {
		t.Fatalf("esc result = %+v", res)
	}
}

func TestEscapeCanBeDisabled(t *testing.T) {
	s := NewStack()
	no := false
	s.Push(Spec{Title: "sticky", EscapeCloses: &no, Buttons: []Button{{Label: "OK", Value: "ok"}}})

	_, results := s.Update(key("esc"))
	if len(results) != 0 {
		t.Fatalf("esc resolved an esc-disabled dialog: %v", results)
	}
	if s.Len() != 1 {
		t.Fatal("esc closed an esc-disabled dialog")
	}
}

func TestPromptTypedValue(t *testing.T) {
	s := NewStack()
	h := s.Prompt("New project", "", "name", "")

	for _, r := range "demo" {
		s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	res := mustResult(t, second(s.Update(key("enter"))))
	if res.Handle != h || res.Kind != ResultPrompt || !res.OK || res.Value != "demo" {
		t.Fatalf("prompt result = %+v", res)
	}
}

func TestPromptTrimsAndPrefills(t *testing.T) {
	s := NewStack()
	s.Prompt("Edit model", "", "", "  claude-sonnet-4-5  ")
	res := mustResult(t, second(s.Update(key("enter"))))
	if !res.OK || res.Value != "claude-sonnet-4-5" {
		t.Fatalf("prompt result = %+v", res)
	}
}

func TestPromptCancelButton(t *testing.T) {
	s := NewStack()
	s.Prompt("New project", "", "", "")

	// input -> OK -> Cancel
	s.Update(key("tab"))
	s.Update(key("tab"))
	res := mustResult(t, second(s.Update(key("enter"))))
	if res.Kind != ResultPrompt || res.OK {
		t.Fatalf("cancel result = %+v", res)
	}
}

func TestArrowKeysIgnoredWhileTyping(t *testing.T) {
	s := NewStack()
	s.Prompt("p", "", "", "ab")

	// Focus is on the input; left/right must edit the cursor, not move focus
	// onto a button.
	s.Update(key("left"))
	res := mustResult(t, second(s.Update(key("enter"))))
	if !res.OK || res.Value != "ab" {
		t.Fatalf("result = %+v, want OK with value ab", res)
	}
}

func TestOnlyTopDialogReceivesInput(t *testing.T) {
	s := NewStack()
	bottom := s.Confirm("bottom", "", "", "")
	top := s.Confirm("top", "", "", "")

	res := mustResult(t, second(s.Update(key("enter"))))
	if res.Handle != top {
		t.Fatalf("resolved handle = %v, want top %v", res.Handle, top)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want bottom dialog still open", s.Len())
	}

	res = mustResult(t, second(s.Update(key("enter"))))
	if res.Handle != bottom {
		t.Fatalf("resolved handle = %v, want bottom %v", res.Handle, bottom)
	}
}

func TestClickOutsideCloses(t *testing.T) {
	s := NewStack()
	s.SetViewport(80, 24)
	s.Push(Spec{
		Title:              "menu",
		Size:               SizeSmall,
		ClickOutsideCloses: true,
		Buttons:            []Button{{Label: "OK", Value: "ok"}},
	})

	// Top-left corner is well outside a centered small box.
	press := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	res := mustResult(t, second(s.Update(press)))
	if res.Kind != ResultDismissed {
		t.Fatalf("click-outside result = %+v", res)
	}
	if s.Len() != 0 {
		t.Fatal("dialog still open after click outside")
	}
}

func TestClickOutsideOffByDefault(t *testing.T) {
	s := NewStack()
	s.Push(Spec{Title: "stay", Buttons: []Button{{Label: "OK", Value: "ok"}}})

	press := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	_, results := s.Update(press)
	if len(results) != 0 || s.Len() != 1 {
		t.Fatalf("default dialog dismissed by outside click: %v", results)
	}
}

func TestFullscreenGeometryFixedAtOpen(t *testing.T) {
	s := NewStack()
	s.SetViewport(100, 40)
	s.Push(Spec{Title: "big", Size: SizeFullscreen})

	in := s.items[0]
	if in.boxW != 100 || in.boxH != 40 {
		t.Fatalf("fullscreen box = %dx%d, want 100x40", in.boxW, in.boxH)
	}

	// Later resizes apply to new dialogs only.
	s.SetViewport(50, 20)
	if in.boxW != 100 || in.boxH != 40 {
		t.Fatalf("open dialog resized to %dx%d", in.boxW, in.boxH)
	}
	s.Push(Spec{Title: "after", Size: SizeFullscreen})
	if got := s.items[1]; got.boxW != 50 || got.boxH != 20 {
		t.Fatalf("new fullscreen box = %dx%d, want 50x20", got.boxW, got.boxH)
	}
}

func TestViewRendersTopDialog(t *testing.T) {
	s := NewStack()
	s.Alert("Heads up", "saved")
	out := s.View("background text")
	if !strings.Contains(out, "Heads up") {
		t.Fatalf("view does not show dialog title:\n%s", out)
	}
}

func TestViewPassesBackgroundThroughWhenEmpty(t *testing.T) {
	s := NewStack()
	if got := s.View("plain"); got != "plain" {
		t.Fatalf("View with empty stack = %q", got)
	}
}

func second(_ tea.Cmd, results []Result) []Result { return results }
