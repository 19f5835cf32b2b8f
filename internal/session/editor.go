package session

import (
	"strings"

	"github.com/jasonknight/anthropide-sub001/internal/model"
)

// Key is a stable identifier for one system block or message, assigned at
// insert time and kept through reorders. The visual layer addresses rows by
// Key instead of transient list position, so a reorder observed from the
// screen can be mapped back onto the canonical lists without index drift.
type Key uint64

// Editor owns a session document and applies all mutations to it. Each
// successful mutation invokes the registered change hook (consumed by the
// dirty-state controller). Failed mutations leave the document untouched.
//
// Editor is not safe for concurrent use; the TUI event loop is the only
// writer.
type Editor struct {
	doc      *model.Session
	onChange func()

	nextKey     Key
	systemKeys  []Key
	messageKeys []Key
}

func NewEditor(doc *model.Session, onChange func()) *Editor {
	e := &Editor{onChange: onChange}
	e.Replace(doc)
	return e
}

// Doc exposes the current document. Callers must treat it as read-only;
// use Doc().Clone() for save snapshots.
func (e *Editor) Doc() *model.Session { return e.doc }

// Replace swaps in a new document wholesale (project switch, new session).
// The prior document and its keys are discarded. Replace does not notify:
// a freshly loaded document is clean by definition.
func (e *Editor) Replace(doc *model.Session) {
	if doc == nil {
		doc = model.NewSession()
	}
	e.doc = doc
	e.systemKeys = e.freshKeys(len(doc.System))
	e.messageKeys = e.freshKeys(len(doc.Messages))
}

func (e *Editor) freshKeys(n int) []Key {
	keys := make([]Key, n)
	for i := range keys {
		e.nextKey++
		keys[i] = e.nextKey
	}
	return keys
}

func (e *Editor) notify() {
	if e.onChange != nil {
		e.onChange()
	}
}

// SystemKeys returns the stable keys of the system blocks in canonical order.
func (e *Editor) SystemKeys() []Key { return append([]Key(nil), e.systemKeys...) }

// MessageKeys returns the stable keys of the messages in canonical order.
func (e *Editor) MessageKeys() []Key { return append([]Key(nil), e.messageKeys...) }

// NextRole is the only role InsertMessage will accept next.
func (e *Editor) NextRole() model.Role {
	if n := len(e.doc.Messages); n > 0 {
		return e.doc.Messages[n-1].Role.Next()
	}
	return model.RoleUser
}

func (e *Editor) SetModel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validationf("model name must not be empty")
	}
	e.doc.Model = name
	e.notify()
	return nil
}

// SetMaxTokens ignores out-of-range values without error: the caller is
// typically forwarding partially-typed numeric input.
func (e *Editor) SetMaxTokens(v int) {
	if v < model.MinMaxTokens || v > model.MaxMaxTokens {
		return
	}
	e.doc.MaxTokens = v
	e.notify()
}

// SetTemperature ignores out-of-range values without error, like SetMaxTokens.
func (e *Editor) SetTemperature(v float64) {
	if v < model.MinTemperature || v > model.MaxTemperature {
		return
	}
	e.doc.Temperature = v
	e.notify()
}

func (e *Editor) InsertSystemBlock(b model.ContentBlock) error {
	if err := validateBlock(b); err != nil {
		return err
	}
	e.doc.System = append(e.doc.System, b)
	e.nextKey++
	e.systemKeys = append(e.systemKeys, e.nextKey)
	e.notify()
	return nil
}

func (e *Editor) ReplaceSystemBlock(i int, b model.ContentBlock) error {
	mustIndex("ReplaceSystemBlock", i, len(e.doc.System))
	if err := validateBlock(b); err != nil {
		return err
	}
	e.doc.System[i] = b
	e.notify()
	return nil
}

func (e *Editor) DeleteSystemBlock(i int) {
	mustIndex("DeleteSystemBlock", i, len(e.doc.System))
	e.doc.System = append(e.doc.System[:i], e.doc.System[i+1:]...)
	e.systemKeys = append(e.systemKeys[:i], e.systemKeys[i+1:]...)
	e.notify()
}

// ReorderSystemBlocks rewrites the system list in the order given by keys.
// Unknown keys are skipped; blocks missing from the order keep their relative
// position after the ordered ones. Applying the same order twice is a no-op
// the second time.
func (e *Editor) ReorderSystemBlocks(order []Key) {
	perm := reconcileOrder(e.systemKeys, order)
	blocks := make([]model.ContentBlock, len(perm))
	keys := make([]Key, len(perm))
	for i, from := range perm {
		blocks[i] = e.doc.System[from]
		keys[i] = e.systemKeys[from]
	}
	e.doc.System = blocks
	e.systemKeys = keys
	e.notify()
}

func (e *Editor) InsertTool(t model.ToolDescriptor) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return validationf("tool name must not be empty")
	}
	for _, have := range e.doc.Tools {
		if have.Name == t.Name {
			return validationf("tool %q already exists", t.Name)
		}
	}
	e.doc.Tools = append(e.doc.Tools, t)
	e.notify()
	return nil
}

func (e *Editor) ReplaceTool(i int, t model.ToolDescriptor) error {
	mustIndex("ReplaceTool", i, len(e.doc.Tools))
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return validationf("tool name must not be empty")
	}
	for j, have := range e.doc.Tools {
		if j != i && have.Name == t.Name {
			return validationf("tool %q already exists", t.Name)
		}
	}
	e.doc.Tools[i] = t
	e.notify()
	return nil
}

func (e *Editor) DeleteTool(i int) {
	mustIndex("DeleteTool", i, len(e.doc.Tools))
	e.doc.Tools = append(e.doc.Tools[:i], e.doc.Tools[i+1:]...)
	e.notify()
}

func (e *Editor) InsertMessage(m model.Message) error {
	if err := validateMessage(m); err != nil {
		return err
	}
	if want := e.NextRole(); m.Role != want {
		return validationf("conversation must alternate: next message must be %s", want)
	}
	e.doc.Messages = append(e.doc.Messages, m)
	e.nextKey++
	e.messageKeys = append(e.messageKeys, e.nextKey)
	e.notify()
	return nil
}

func (e *Editor) ReplaceMessage(i int, m model.Message) error {
	mustIndex("ReplaceMessage", i, len(e.doc.Messages))
	if err := validateMessage(m); err != nil {
		return err
	}
	if m.Role != e.doc.Messages[i].Role {
		// Changing a role in place would need a cascade; replace keeps the slot's role.
		return validationf("message %d is a %s message; role cannot change in place", i, e.doc.Messages[i].Role)
	}
	e.doc.Messages[i] = m
	e.notify()
	return nil
}

// DeleteMessage removes the message at i unless the removal would leave two
// same-role messages adjacent.
func (e *Editor) DeleteMessage(i int) error {
	mustIndex("DeleteMessage", i, len(e.doc.Messages))
	if i > 0 && i+1 < len(e.doc.Messages) && e.doc.Messages[i-1].Role == e.doc.Messages[i+1].Role {
		return validationf("deleting message %d would break conversation alternation", i)
	}
	e.doc.Messages = append(e.doc.Messages[:i], e.doc.Messages[i+1:]...)
	e.messageKeys = append(e.messageKeys[:i], e.messageKeys[i+1:]...)
	e.notify()
	return nil
}

// ReorderMessages rewrites the message list in the order given by keys. The
// reordered list must still alternate roles; otherwise the document is left
// unchanged and a ValidationError is returned.
func (e *Editor) ReorderMessages(order []Key) error {
	perm := reconcileOrder(e.messageKeys, order)
	msgs := make([]model.Message, len(perm))
	keys := make([]Key, len(perm))
	for i, from := range perm {
		msgs[i] = e.doc.Messages[from]
		keys[i] = e.messageKeys[from]
	}
	if err := checkAlternation(msgs); err != nil {
		return err
	}
	e.doc.Messages = msgs
	e.messageKeys = keys
	e.notify()
	return nil
}

func validateBlock(b model.ContentBlock) error {
	switch b.Type {
	case model.BlockText:
		if strings.TrimSpace(b.Text) == "" {
			return validationf("text block must not be empty")
		}
	case model.BlockImage:
		if b.Source == nil || b.Source.Data == "" {
			return validationf("image block requires source data")
		}
	case model.BlockToolUse:
		if strings.TrimSpace(b.Name) == "" {
			return validationf("tool_use block requires a tool name")
		}
	case model.BlockToolResult:
		if strings.TrimSpace(b.ToolUseID) == "" {
			return validationf("tool_result block requires tool_use_id")
		}
	default:
		return validationf("unknown content block type %q", string(b.Type))
	}
	return nil
}

func validateMessage(m model.Message) error {
	if m.Role != model.RoleUser && m.Role != model.RoleAssistant {
		return validationf("message role must be user or assistant")
	}
	if len(m.Content) == 0 {
		return validationf("message must have at least one content block")
	}
	for _, b := range m.Content {
		if err := validateBlock(b); err != nil {
			return err
		}
	}
	return nil
}

func checkAlternation(msgs []model.Message) error {
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Role == msgs[i-1].Role {
			return validationf("messages %d and %d share role %s", i-1, i, msgs[i].Role)
		}
	}
	return nil
}
