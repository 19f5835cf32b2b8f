package tui

import (
	"strings"
	"testing"
	"time"
)

func TestToastDurations(t *testing.T) {
	tests := []struct {
		level toastLevel
		want  time.Duration
	}{
		{toastSuccess, 3 * time.Second},
		{toastInfo, 3 * time.Second},
		{toastWarning, 4 * time.Second},
		{toastError, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := toastDuration(tt.level); got != tt.want {
			t.Fatalf("toastDuration(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestStaleExpiryIsIgnored(t *testing.T) {
	var ts toastState

	ts.show("first", toastInfo)
	first := ts.seq
	ts.show("second", toastError)

	// The first toast's expiry lands after it was replaced.
	ts.expire(toastExpireMsg{seq: first})
	if ts.text != "second" {
		t.Fatalf("stale expiry cleared the active toast: %q", ts.text)
	}

	ts.expire(toastExpireMsg{seq: ts.seq})
	if ts.text != "" {
		t.Fatalf("matching expiry left toast visible: %q", ts.text)
	}
}

func TestToastViewEmptyWhenCleared(t *testing.T) {
	var ts toastState
	if ts.view() != "" {
		t.Fatal("zero-value toast renders content")
	}
	ts.show("saved", toastSuccess)
	if !strings.Contains(ts.view(), "saved") {
		t.Fatalf("toast view = %q", ts.view())
	}
}

func TestTruncateIsRuneSafe(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"hello world", 8, "hello w…"},
		{"héllo wörld", 8, "héllo w…"},
		{"line\nbreak", 20, "line break"},
		{"xy", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
