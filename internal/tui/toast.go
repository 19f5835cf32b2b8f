package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type toastLevel int

const (
	toastSuccess toastLevel = iota
	toastInfo
	toastWarning
	toastError
)

// toastDuration returns the auto-dismiss delay for a level. Zero disables
// auto-dismiss (the toast stays until replaced).
func toastDuration(level toastLevel) time.Duration {
	switch level {
	case toastWarning:
		return 4 * time.Second
	case toastError:
		return 5 * time.Second
	default:
		return 3 * time.Second
	}
}

type toastExpireMsg struct{ seq int }

type toastState struct {
	text  string
	level toastLevel
	seq   int
}

// show replaces the visible toast and arms its expiry tick. The seq guard
// makes stale expiry messages from superseded toasts harmless.
func (t *toastState) show(text string, level toastLevel) tea.Cmd {
	t.seq++
	t.text = text
	t.level = level

	d := toastDuration(level)
	if d == 0 {
		return nil
	}
	seq := t.seq
	return tea.Tick(d, func(time.Time) tea.Msg { return toastExpireMsg{seq: seq} })
}

func (t *toastState) expire(msg toastExpireMsg) {
	if msg.seq != t.seq {
		return
	}
	t.text = ""
}

func (t *toastState) view() string {
	if t.text == "" {
		return ""
	}
	var fg lipgloss.TerminalColor
	switch t.level {
	case toastSuccess:
		fg = colorStatusSaved
	case toastWarning:
		fg = colorToastWarning
	case toastError:
		fg = colorStatusError
	default:
		fg = colorToastInfo
	}
	return lipgloss.NewStyle().Foreground(fg).Render(t.text)
}
