package model

import (
	"encoding/json"
	"testing"
)

func TestCloneIsolatesEdits(t *testing.T) {
	orig := NewSession()
	orig.System = []ContentBlock{TextBlock("rules")}
	orig.Tools = []ToolDescriptor{{Name: "search", InputSchema: json.RawMessage(`{"type":"object"}`)}}
	orig.Messages = []Message{{
		Role: RoleUser,
		Content: []ContentBlock{
			TextBlock("hi"),
			{Type: BlockImage, Source: &ImageSource{Type: "base64", MediaType: "image/png", Data: "AAAA"}},
		},
	}}

	snap := orig.Clone()

	// Edits after the snapshot must not leak into it.
	orig.Model = "other"
	orig.System[0].Text = "changed"
	orig.Tools[0].InputSchema[2] = 'X'
	orig.Messages[0].Content[0].Text = "changed"
	orig.Messages[0].Content[1].Source.Data = "BBBB"

	if snap.Model != DefaultModel {
		t.Fatalf("snapshot model = %q", snap.Model)
	}
	if snap.System[0].Text != "rules" {
		t.Fatalf("snapshot system text = %q", snap.System[0].Text)
	}
	if string(snap.Tools[0].InputSchema) != `{"type":"object"}` {
		t.Fatalf("snapshot schema = %s", snap.Tools[0].InputSchema)
	}
	if snap.Messages[0].Content[0].Text != "hi" {
		t.Fatalf("snapshot message text = %q", snap.Messages[0].Content[0].Text)
	}
	if snap.Messages[0].Content[1].Source.Data != "AAAA" {
		t.Fatalf("snapshot image data = %q", snap.Messages[0].Content[1].Source.Data)
	}
}

func TestCloneNil(t *testing.T) {
	var s *Session
	if s.Clone() != nil {
		t.Fatal("Clone of nil session is non-nil")
	}
}

func TestRoleNextAlternates(t *testing.T) {
	if RoleUser.Next() != RoleAssistant || RoleAssistant.Next() != RoleUser {
		t.Fatal("Role.Next does not alternate")
	}
}
