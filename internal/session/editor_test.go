package session

import (
	"errors"
	"testing"

	"github.com/jasonknight/anthropide-sub001/internal/model"
)

func textMsg(role model.Role, text string) model.Message {
	return model.Message{Role: role, Content: []model.ContentBlock{model.TextBlock(text)}}
}

func newTestEditor(t *testing.T) (*Editor, *int) {
	t.Helper()
	changes := 0
	e := NewEditor(model.NewSession(), func() { changes++ })
	return e, &changes
}

func TestSetModelRejectsEmpty(t *testing.T) {
	e, changes := newTestEditor(t)

	err := e.SetModel("   ")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("SetModel(blank) = %v, want ValidationError", err)
	}
	if e.Doc().Model != model.DefaultModel {
		t.Fatalf("model changed to %q after rejected edit", e.Doc().Model)
	}
	if *changes != 0 {
		t.Fatalf("rejected edit fired %d change notifications", *changes)
	}
}

func TestNumericParamsIgnoreOutOfRange(t *testing.T) {
	e, changes := newTestEditor(t)

	e.SetMaxTokens(0)
	e.SetMaxTokens(model.MaxMaxTokens + 1)
	e.SetTemperature(-0.1)
	e.SetTemperature(1.5)

	if got := e.Doc().MaxTokens; got != model.DefaultMaxTokens {
		t.Fatalf("MaxTokens = %d after out-of-range sets, want %d", got, model.DefaultMaxTokens)
	}
	if got := e.Doc().Temperature; got != model.DefaultTemperature {
		t.Fatalf("Temperature = %v after out-of-range sets, want %v", got, model.DefaultTemperature)
	}
	if *changes != 0 {
		t.Fatalf("out-of-range sets fired %d change notifications, want 0", *changes)
	}

	e.SetMaxTokens(4096)
	e.SetTemperature(0.3)
	if e.Doc().MaxTokens != 4096 || e.Doc().Temperature != 0.3 {
		t.Fatalf("in-range sets not applied: max_tokens=%d temperature=%v",
			e.Doc().MaxTokens, e.Doc().Temperature)
	}
	if *changes != 2 {
		t.Fatalf("in-range sets fired %d notifications, want 2", *changes)
	}
}

func TestInsertMessageEnforcesAlternation(t *testing.T) {
	e, _ := newTestEditor(t)

	if got := e.NextRole(); got != model.RoleUser {
		t.Fatalf("NextRole on empty conversation = %s, want user", got)
	}
	if err := e.InsertMessage(textMsg(model.RoleAssistant, "hi")); err == nil {
		t.Fatal("assistant-first insert accepted")
	}
	if err := e.InsertMessage(textMsg(model.RoleUser, "hello")); err != nil {
		t.Fatalf("InsertMessage(user) = %v", err)
	}

	// A second consecutive user turn is rejected, not merged.
	err := e.InsertMessage(textMsg(model.RoleUser, "again"))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("consecutive user insert = %v, want ValidationError", err)
	}
	if len(e.Doc().Messages) != 1 {
		t.Fatalf("rejected insert mutated document: %d messages", len(e.Doc().Messages))
	}

	if err := e.InsertMessage(textMsg(model.RoleAssistant, "hi")); err != nil {
		t.Fatalf("InsertMessage(assistant) = %v", err)
	}
	if got := e.NextRole(); got != model.RoleUser {
		t.Fatalf("NextRole = %s, want user", got)
	}
}

func TestReplaceMessageKeepsSlotRole(t *testing.T) {
	e, _ := newTestEditor(t)
	mustInsertConversation(t, e, "q1", "a1")

	if err := e.ReplaceMessage(0, textMsg(model.RoleAssistant, "swap")); err == nil {
		t.Fatal("role change in place accepted")
	}
	if err := e.ReplaceMessage(0, textMsg(model.RoleUser, "edited")); err != nil {
		t.Fatalf("ReplaceMessage = %v", err)
	}
	if got := e.Doc().Messages[0].Content[0].Text; got != "edited" {
		t.Fatalf("message text = %q, want %q", got, "edited")
	}
}

func TestDeleteMessagePreservesAlternation(t *testing.T) {
	e, _ := newTestEditor(t)
	mustInsertConversation(t, e, "q1", "a1", "q2")

	// Removing the middle assistant turn would put q1 next to q2.
	err := e.DeleteMessage(1)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("DeleteMessage(1) = %v, want ValidationError", err)
	}
	if len(e.Doc().Messages) != 3 {
		t.Fatalf("rejected delete mutated document: %d messages", len(e.Doc().Messages))
	}

	// Tail deletion is always safe.
	if err := e.DeleteMessage(2); err != nil {
		t.Fatalf("DeleteMessage(2) = %v", err)
	}
	if len(e.Doc().Messages) != 2 {
		t.Fatalf("messages = %d after tail delete, want 2", len(e.Doc().Messages))
	}
}

func TestDeleteMessageOutOfRangePanics(t *testing.T) {
	e, _ := newTestEditor(t)
	defer func() {
		if recover() == nil {
			t.Fatal("DeleteMessage(0) on empty conversation did not panic")
		}
	}()
	e.DeleteMessage(0)
}

func TestReorderMessagesValidatesAlternation(t *testing.T) {
	e, _ := newTestEditor(t)
	mustInsertConversation(t, e, "q1", "a1", "q2", "a2")
	keys := e.MessageKeys()

	// q1 a1 q2 a2 -> q1 q2 a1 a2 would collapse the alternation.
	bad := []Key{keys[0], keys[2], keys[1], keys[3]}
	if err := e.ReorderMessages(bad); err == nil {
		t.Fatal("alternation-breaking reorder accepted")
	}
	if got := firstTexts(e.Doc().Messages); got != "q1 a1 q2 a2" {
		t.Fatalf("rejected reorder mutated document: %s", got)
	}

	// Swapping whole user/assistant pairs keeps alternation.
	good := []Key{keys[2], keys[3], keys[0], keys[1]}
	if err := e.ReorderMessages(good); err != nil {
		t.Fatalf("ReorderMessages = %v", err)
	}
	if got := firstTexts(e.Doc().Messages); got != "q2 a2 q1 a1" {
		t.Fatalf("after reorder: %s, want q2 a2 q1 a1", got)
	}

	// Applying the same order again is a no-op.
	if err := e.ReorderMessages(good); err != nil {
		t.Fatalf("repeated reorder = %v", err)
	}
	if got := firstTexts(e.Doc().Messages); got != "q2 a2 q1 a1" {
		t.Fatalf("repeated reorder changed document: %s", got)
	}
}

func TestReorderSystemBlocksByKey(t *testing.T) {
	e, _ := newTestEditor(t)
	for _, s := range []string{"one", "two", "three"} {
		if err := e.InsertSystemBlock(model.TextBlock(s)); err != nil {
			t.Fatalf("InsertSystemBlock(%q) = %v", s, err)
		}
	}
	keys := e.SystemKeys()

	// Order names only the last block; the rest keep their relative order.
	e.ReorderSystemBlocks([]Key{keys[2]})
	want := []string{"three", "one", "two"}
	for i, w := range want {
		if got := e.Doc().System[i].Text; got != w {
			t.Fatalf("system[%d] = %q, want %q", i, got, w)
		}
	}

	// Keys follow their blocks through the reorder.
	if got := e.SystemKeys()[0]; got != keys[2] {
		t.Fatalf("key[0] = %d after reorder, want %d", got, keys[2])
	}
}

func TestToolNamesAreUnique(t *testing.T) {
	e, _ := newTestEditor(t)

	if err := e.InsertTool(model.ToolDescriptor{Name: "search"}); err != nil {
		t.Fatalf("InsertTool = %v", err)
	}
	if err := e.InsertTool(model.ToolDescriptor{Name: "search"}); err == nil {
		t.Fatal("duplicate tool name accepted")
	}
	if err := e.InsertTool(model.ToolDescriptor{Name: "  "}); err == nil {
		t.Fatal("blank tool name accepted")
	}
	if err := e.InsertTool(model.ToolDescriptor{Name: "fetch"}); err != nil {
		t.Fatalf("InsertTool = %v", err)
	}
	if err := e.ReplaceTool(1, model.ToolDescriptor{Name: "search"}); err == nil {
		t.Fatal("rename onto existing tool name accepted")
	}
	if err := e.ReplaceTool(1, model.ToolDescriptor{Name: "fetch", Description: "x"}); err != nil {
		t.Fatalf("ReplaceTool same name = %v", err)
	}
}

func TestReplaceResetsKeys(t *testing.T) {
	e, changes := newTestEditor(t)
	mustInsertConversation(t, e, "q1", "a1")
	before := *changes

	doc := model.NewSession()
	doc.Messages = []model.Message{textMsg(model.RoleUser, "fresh")}
	e.Replace(doc)

	if *changes != before {
		t.Fatalf("Replace fired change notifications (%d -> %d)", before, *changes)
	}
	if got := len(e.MessageKeys()); got != 1 {
		t.Fatalf("MessageKeys = %d after Replace, want 1", got)
	}
}

func mustInsertConversation(t *testing.T, e *Editor, texts ...string) {
	t.Helper()
	for _, text := range texts {
		if err := e.InsertMessage(textMsg(e.NextRole(), text)); err != nil {
			t.Fatalf("InsertMessage(%q) = %v", text, err)
		}
	}
}

func firstTexts(msgs []model.Message) string {
	out := ""
	for i, m := range msgs {
		if i > 0 {
			out += " "
		}
		out += m.Content[0].Text
	}
	return out
}
