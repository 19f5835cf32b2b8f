// Package modal manages a stack of concurrently open dialogs for the TUI.
//
// Callers push a Spec and keep only the returned Handle. Dialog outcomes are
// not delivered through callbacks closing over caller state; instead
// Stack.Update returns discrete Result values the caller pattern-matches on.
// Confirm/Alert/Prompt are one-shot dialogs built on the same stack and
// resolve exactly once each.
package modal

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Size int

const (
	SizeSmall Size = iota
	SizeMedium
	SizeLarge
	SizeFullscreen
)

// Handle identifies one open dialog. It stays opaque to callers; all
// operations go through the Stack.
type Handle int64

type Button struct {
	Label string
	// Value is carried back in the Result when the button is chosen.
	Value string
}

type Spec struct {
	Title   string
	Body    string
	Size    Size
	Buttons []Button

	// HasInput adds a single-line text input above the buttons (prompt).
	HasInput     bool
	Placeholder  string
	DefaultValue string

	// EscapeCloses defaults to true; set to disable esc dismissal.
	EscapeCloses *bool
	// ClickOutsideCloses dismisses the dialog on a mouse press outside its
	// box. Off by default.
	ClickOutsideCloses bool

	// OnClose runs exactly once when the dialog leaves the stack, whatever
	// the reason (resolution, dismissal, or an explicit Close).
	OnClose func()
}

type ResultKind int

const (
	// ResultConfirm carries Confirmed.
	ResultConfirm ResultKind = iota
	// ResultAlert is an acknowledgement; no payload.
	ResultAlert
	// ResultPrompt carries Value when OK, no value when canceled.
	ResultPrompt
	// ResultButton carries the chosen button's Value for custom dialogs.
	ResultButton
	// ResultDismissed is a custom dialog dismissed without choosing a button.
	ResultDismissed
)

// Result is the discrete outcome of one dialog, emitted exactly once.
type Result struct {
	Handle    Handle
	Kind      ResultKind
	Confirmed bool
	Value     string
	OK        bool
}

type dialogKind int

const (
	kindCustom dialogKind = iota
	kindConfirm
	kindAlert
	kindPrompt
)

type instance struct {
	id   Handle
	kind dialogKind

	title   string
	body    string
	size    Size
	buttons []Button

	escapeCloses bool
	clickOutside bool
	onClose      func()

	hasInput bool
	input    textinput.Model

	// focus indexes the focusables: the input first (when present), then the
	// buttons in order.
	focus int

	// Box geometry resolved against the viewport at open time. Fullscreen is
	// not recomputed on resize.
	boxW, boxH int

	closed bool
}

func (in *instance) focusables() int {
	n := len(in.buttons)
	if in.hasInput {
		n++
	}
	return n
}

func (in *instance) focusedButton() (Button, bool) {
	i := in.focus
	if in.hasInput {
		i--
	}
	if i < 0 || i >= len(in.buttons) {
		return Button{}, false
	}
	return in.buttons[i], true
}

// Stack owns the active set of dialogs. The zero value is not usable; call
// NewStack. The stack is process-local state owned by the TUI model.
type Stack struct {
	nextID Handle
	items  []*instance
	vpW    int
	vpH    int
}

func NewStack() *Stack {
	return &Stack{vpW: 80, vpH: 24}
}

// SetViewport records the terminal size used to resolve the geometry of
// dialogs opened from now on. Open dialogs keep their geometry.
func (s *Stack) SetViewport(w, h int) {
	if w > 0 {
		s.vpW = w
	}
	if h > 0 {
		s.vpH = h
	}
}

func (s *Stack) Len() int { return len(s.items) }

// Push opens a dialog and returns its handle. The new dialog is topmost.
func (s *Stack) Push(spec Spec) Handle {
	return s.push(kindCustom, spec)
}

func (s *Stack) push(kind dialogKind, spec Spec) Handle {
	s.nextID++
	in := &instance{
		id:           s.nextID,
		kind:         kind,
		title:        spec.Title,
		body:         spec.Body,
		size:         spec.Size,
		buttons:      spec.Buttons,
		escapeCloses: spec.EscapeCloses == nil || *spec.EscapeCloses,
		clickOutside: spec.ClickOutsideCloses,
		onClose:      spec.OnClose,
		hasInput:     spec.HasInput,
	}
	in.boxW, in.boxH = s.resolveSize(spec.Size)

	if spec.HasInput {
		in.input = textinput.New()
		in.input.Placeholder = spec.Placeholder
		in.input.SetValue(spec.DefaultValue)
		in.input.CharLimit = 0
		in.input.Width = in.boxW - 6
		// Focus the input as soon as the dialog is visible.
		in.input.Focus()
	}

	s.items = append(s.items, in)
	return in.id
}

// Confirm opens a yes/no dialog. Resolution arrives as a ResultConfirm:
// Confirmed true for the confirm button, false for cancel or dismissal.
func (s *Stack) Confirm(title, body, confirmLabel, cancelLabel string) Handle {
	if confirmLabel == "" {
		confirmLabel = "Confirm"
	}
	if cancelLabel == "" {
		cancelLabel = "Cancel"
	}
	return s.push(kindConfirm, Spec{
		Title: title,
		Body:  body,
		Size:  SizeSmall,
		Buttons: []Button{
			{Label: confirmLabel, Value: "confirm"},
			{Label: cancelLabel, Value: "cancel"},
		},
	})
}

// Alert opens a single-button acknowledgement dialog.
func (s *Stack) Alert(title, body string) Handle {
	return s.push(kindAlert, Spec{
		Title:   title,
		Body:    body,
		Size:    SizeSmall,
		Buttons: []Button{{Label: "OK", Value: "ok"}},
	})
}

// Prompt opens a one-line text entry dialog. Resolution arrives as a
// ResultPrompt: OK with the entered value, or canceled.
func (s *Stack) Prompt(title, body, placeholder, defaultValue string) Handle {
	return s.push(kindPrompt, Spec{
		Title:        title,
		Body:         body,
		Size:         SizeMedium,
		HasInput:     true,
		Placeholder:  placeholder,
		DefaultValue: defaultValue,
		Buttons: []Button{
			{Label: "OK", Value: "ok"},
			{Label: "Cancel", Value: "cancel"},
		},
	})
}

// Close tears down the dialog for h without emitting a Result. The close
// callback fires exactly once; closing an already-closed handle is a no-op.
func (s *Stack) Close(h Handle) {
	for i, in := range s.items {
		if in.id != h {
			continue
		}
		s.removeAt(i)
		return
	}
}

// SetTitle updates an open dialog's title through its handle.
func (s *Stack) SetTitle(h Handle, title string) {
	if in := s.find(h); in != nil {
		in.title = title
	}
}

// SetBody updates an open dialog's body content through its handle.
func (s *Stack) SetBody(h Handle, body string) {
	if in := s.find(h); in != nil {
		in.body = body
	}
}

func (s *Stack) find(h Handle) *instance {
	for _, in := range s.items {
		if in.id == h {
			return in
		}
	}
	return nil
}

func (s *Stack) removeAt(i int) {
	in := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	if !in.closed {
		in.closed = true
		if in.onClose != nil {
			in.onClose()
		}
	}
}

// Update feeds one message to the topmost dialog. Any dialogs resolved by the
// message are returned as Results (closed before the call returns).
func (s *Stack) Update(msg tea.Msg) (tea.Cmd, []Result) {
	if len(s.items) == 0 {
		return nil, nil
	}
	top := s.items[len(s.items)-1]

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.updateKey(top, msg)
	case tea.MouseMsg:
		if top.clickOutside && msg.Action == tea.MouseActionPress && !s.inTopBox(msg.X, msg.Y) {
			return nil, []Result{s.dismiss(top)}
		}
		return nil, nil
	}

	if top.hasInput {
		var cmd tea.Cmd
		top.input, cmd = top.input.Update(msg)
		return cmd, nil
	}
	return nil, nil
}

func (s *Stack) updateKey(top *instance, msg tea.KeyMsg) (tea.Cmd, []Result) {
	switch msg.String() {
	case "esc", "ctrl+g":
		if top.escapeCloses {
			return nil, []Result{s.dismiss(top)}
		}
		return nil, nil

	case "tab":
		top.focus = (top.focus + 1) % top.focusables()
		s.syncInputFocus(top)
		return nil, nil

	case "shift+tab":
		top.focus = (top.focus - 1 + top.focusables()) % top.focusables()
		s.syncInputFocus(top)
		return nil, nil

	case "left", "right":
		// Arrow keys cycle buttons, but never while typing in the input.
		if top.hasInput && top.focus == 0 {
			break
		}
		if msg.String() == "left" {
			top.focus = (top.focus - 1 + top.focusables()) % top.focusables()
		} else {
			top.focus = (top.focus + 1) % top.focusables()
		}
		s.syncInputFocus(top)
		return nil, nil

	case "enter":
		return nil, []Result{s.resolve(top)}
	}

	if top.hasInput && top.focus == 0 {
		var cmd tea.Cmd
		top.input, cmd = top.input.Update(msg)
		return cmd, nil
	}
	return nil, nil
}

func (s *Stack) syncInputFocus(top *instance) {
	if !top.hasInput {
		return
	}
	if top.focus == 0 {
		top.input.Focus()
	} else {
		top.input.Blur()
	}
}

// resolve closes top and produces its Result for the current focus.
func (s *Stack) resolve(top *instance) Result {
	btn, onButton := top.focusedButton()

	var res Result
	switch top.kind {
	case kindConfirm:
		res = Result{Handle: top.id, Kind: ResultConfirm, Confirmed: onButton && btn.Value == "confirm"}
	case kindAlert:
		res = Result{Handle: top.id, Kind: ResultAlert}
	case kindPrompt:
		if onButton && btn.Value == "cancel" {
			res = Result{Handle: top.id, Kind: ResultPrompt, OK: false}
		} else {
			res = Result{Handle: top.id, Kind: ResultPrompt, OK: true, Value: strings.TrimSpace(top.input.Value())}
		}
	default:
		if onButton {
			res = Result{Handle: top.id, Kind: ResultButton, Value: btn.Value, OK: true}
		} else {
			res = Result{Handle: top.id, Kind: ResultDismissed}
		}
	}

	s.Close(top.id)
	return res
}

// dismiss closes top as if canceled.
func (s *Stack) dismiss(top *instance) Result {
	var res Result
	switch top.kind {
	case kindConfirm:
		res = Result{Handle: top.id, Kind: ResultConfirm, Confirmed: false}
	case kindAlert:
		res = Result{Handle: top.id, Kind: ResultAlert}
	case kindPrompt:
		res = Result{Handle: top.id, Kind: ResultPrompt, OK: false}
	default:
		res = Result{Handle: top.id, Kind: ResultDismissed}
	}
	s.Close(top.id)
	return res
}
