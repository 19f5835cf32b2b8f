package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jasonknight/anthropide-sub001/internal/config"
	"github.com/jasonknight/anthropide-sub001/internal/dirty"
	"github.com/jasonknight/anthropide-sub001/internal/gateway"
	"github.com/jasonknight/anthropide-sub001/internal/model"
	"github.com/jasonknight/anthropide-sub001/internal/session"
	"github.com/jasonknight/anthropide-sub001/internal/store"
	"github.com/jasonknight/anthropide-sub001/internal/tui/modal"
)

type view int

const (
	viewProjects view = iota
	viewSession
)

type section int

const (
	sectionParams section = iota
	sectionSystem
	sectionTools
	sectionMessages
)

const sectionCount = 4

func (s section) name() string {
	switch s {
	case sectionSystem:
		return "system"
	case sectionTools:
		return "tools"
	case sectionMessages:
		return "messages"
	default:
		return "params"
	}
}

// sender forwards messages from controller goroutines (debounce timers, save
// completions) into the bubbletea loop. The program is attached after
// construction, so early sends are dropped rather than blocked.
type sender struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *sender) attach(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *sender) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// docBox ties one project's editor to its dirty-state controller. The mutex
// covers the editor: the TUI loop mutates it, the controller's timer
// goroutine snapshots it.
type docBox struct {
	project string

	mu     sync.Mutex
	editor *session.Editor
	ctrl   *dirty.Controller[*model.Session]
}

func newDocBox(cfg config.Config, client *gateway.Client, project string, doc *model.Session, snd *sender) *docBox {
	b := &docBox{project: project}
	b.editor = session.NewEditor(doc, func() { b.ctrl.Notify() })
	b.ctrl = dirty.New(dirty.Opts[*model.Session]{
		Debounce: cfg.Debounce,
		Snapshot: func() *model.Session {
			b.mu.Lock()
			defer b.mu.Unlock()
			return b.editor.Doc().Clone()
		},
		Save: func(ctx context.Context, doc *model.Session) error {
			return client.SaveSession(ctx, project, doc)
		},
		OnState: func(st dirty.State, err error) {
			snd.send(saveStateMsg{project: project, state: st, err: err})
		},
	})
	return b
}

// edit runs fn against the editor under the snapshot lock.
func (b *docBox) edit(fn func(*session.Editor) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.editor)
}

// snapshot returns a private copy of the document for rendering.
func (b *docBox) snapshot() *model.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editor.Doc().Clone()
}

func (b *docBox) systemKeys() []session.Key {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editor.SystemKeys()
}

func (b *docBox) messageKeys() []session.Key {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editor.MessageKeys()
}

// uiBox is the same arrangement for the persisted UI state blob.
type uiBox struct {
	mu   sync.Mutex
	st   *store.Store
	ui   *store.UIState
	ctrl *dirty.Controller[*store.UIState]
}

func newUIBox(cfg config.Config, st *store.Store, ui *store.UIState) *uiBox {
	b := &uiBox{st: st, ui: ui}
	b.ctrl = dirty.New(dirty.Opts[*store.UIState]{
		Debounce: cfg.Debounce,
		Snapshot: func() *store.UIState {
			b.mu.Lock()
			defer b.mu.Unlock()
			cp := *b.ui
			cp.Collapsed = make(map[string]bool, len(b.ui.Collapsed))
			for k, v := range b.ui.Collapsed {
				cp.Collapsed[k] = v
			}
			return &cp
		},
		Save: func(_ context.Context, ui *store.UIState) error {
			return st.SaveUIState(ui)
		},
	})
	return b
}

func (b *uiBox) set(fn func(*store.UIState)) {
	b.mu.Lock()
	fn(b.ui)
	b.mu.Unlock()
	b.ctrl.Notify()
}

func (b *uiBox) get() store.UIState {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := *b.ui
	return cp
}

// pendingIntent records why a modal was opened so its Result can be routed
// without closures over mutable state.
type intentKind int

const (
	intentNone intentKind = iota
	intentCreateProject
	intentDeleteProject
	intentNewSession
	intentEditModel
	intentEditMaxTokens
	intentEditTemperature
	intentAddSystem
	intentEditSystem
	intentAddToolName
	intentAddToolDesc
	intentEditTool
	intentAddMessage
	intentEditMessage
)

type pendingIntent struct {
	kind  intentKind
	index int
	// text carries intermediate values for chained prompts (tool name).
	text string
}

type appModel struct {
	cfg    config.Config
	client *gateway.Client
	snd    *sender

	ui *uiBox

	width  int
	height int

	view    view
	loading bool
	loadSeq int

	projectsList list.Model

	// doc is nil until a project is selected. Switching projects replaces it
	// wholesale; a pending save of the old box is deliberately discarded.
	doc *docBox

	section    section
	paramIdx   int
	sysIdx     int
	toolIdx    int
	msgIdx     int
	showPreview bool

	modals  *modal.Stack
	intents map[modal.Handle]pendingIntent

	toast     toastState
	saveState dirty.State
	saveErr   string
}

func newAppModel(cfg config.Config, snd *sender) appModel {
	st := &store.Store{}
	ui, err := st.LoadUIState()
	if err != nil || ui == nil {
		ui = &store.UIState{Version: 1}
	}
	if ui.Collapsed == nil {
		ui.Collapsed = map[string]bool{}
	}

	m := appModel{
		cfg:     cfg,
		client:  gateway.NewClient(cfg.GatewayURL),
		snd:     snd,
		ui:      newUIBox(cfg, st, ui),
		view:    viewProjects,
		modals:  modal.NewStack(),
		intents: map[modal.Handle]pendingIntent{},
	}
	m.showPreview = ui.ShowPreview

	m.projectsList = newList("Projects", "Select a project")
	return m
}

func newList(title, statusName string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName(statusName, statusName+"s")
	return l
}

type projectItem struct {
	name string
}

func (p projectItem) Title() string       { return p.name }
func (p projectItem) Description() string { return "" }
func (p projectItem) FilterValue() string { return p.name }
