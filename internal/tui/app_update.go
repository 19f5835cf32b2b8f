package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jasonknight/anthropide-sub001/internal/dirty"
	"github.com/jasonknight/anthropide-sub001/internal/gateway"
	"github.com/jasonknight/anthropide-sub001/internal/model"
	"github.com/jasonknight/anthropide-sub001/internal/session"
	"github.com/jasonknight/anthropide-sub001/internal/store"
	"github.com/jasonknight/anthropide-sub001/internal/tui/modal"
)

type saveStateMsg struct {
	project string
	state   dirty.State
	err     error
}

type projectsLoadedMsg struct {
	names []string
	err   error
}

type sessionLoadedMsg struct {
	seq     int
	project string
	doc     *model.Session
	fresh   bool
}

type sessionLoadErrMsg struct {
	seq     int
	project string
	err     error
}

type projectCreatedMsg struct {
	name string
	err  error
}

type projectDeletedMsg struct {
	name string
	err  error
}

func (m appModel) Init() tea.Cmd {
	return m.loadProjectsCmd()
}

func (m appModel) loadProjectsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		names, err := client.ListProjects(ctx)
		return projectsLoadedMsg{names: names, err: err}
	}
}

func (m appModel) loadSessionCmd(project string) tea.Cmd {
	client := m.client
	seq := m.loadSeq
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		doc, err := client.LoadSession(ctx, project)
		if err != nil {
			if gateway.IsNotFound(err) {
				return sessionLoadedMsg{seq: seq, project: project, doc: model.NewSession(), fresh: true}
			}
			return sessionLoadErrMsg{seq: seq, project: project, err: err}
		}
		return sessionLoadedMsg{seq: seq, project: project, doc: doc}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.modals.SetViewport(msg.Width, msg.Height)
		m.projectsList.SetSize(listWidth(msg.Width), listHeight(msg.Height))
		return m, nil

	case toastExpireMsg:
		m.toast.expire(msg)
		return m, nil

	case saveStateMsg:
		if m.doc == nil || msg.project != m.doc.project {
			// A save from a discarded project context; its result is ignored.
			return m, nil
		}
		m.saveState = msg.state
		m.saveErr = ""
		if msg.err != nil {
			m.saveErr = msg.err.Error()
			return m, m.toast.show("save failed: "+msg.err.Error(), toastError)
		}
		return m, nil

	case projectsLoadedMsg:
		if msg.err != nil {
			return m, m.toast.show("could not load projects: "+msg.err.Error(), toastError)
		}
		items := make([]list.Item, 0, len(msg.names))
		for _, n := range msg.names {
			items = append(items, projectItem{name: n})
		}
		m.projectsList.SetItems(items)
		if sel := m.ui.get().SelectedProject; sel != "" {
			for i, it := range items {
				if it.(projectItem).name == sel {
					m.projectsList.Select(i)
					break
				}
			}
		}
		return m, nil

	case sessionLoadedMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		m.doc = newDocBox(m.cfg, m.client, msg.project, msg.doc, m.snd)
		m.view = viewSession
		m.section = sectionParams
		m.paramIdx, m.sysIdx, m.toolIdx, m.msgIdx = 0, 0, 0, 0
		m.saveState = dirty.StateClean
		m.saveErr = ""
		m.ui.set(func(ui *store.UIState) {
			ui.View = "session"
			ui.SelectedProject = msg.project
		})
		if msg.fresh {
			return m, m.toast.show("no saved session; starting fresh", toastInfo)
		}
		return m, nil

	case sessionLoadErrMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		return m, m.toast.show("could not load session: "+msg.err.Error(), toastError)

	case projectCreatedMsg:
		if msg.err != nil {
			return m, m.toast.show("create failed: "+msg.err.Error(), toastError)
		}
		return m, tea.Batch(m.loadProjectsCmd(), m.toast.show("project created", toastSuccess))

	case projectDeletedMsg:
		if msg.err != nil {
			return m, m.toast.show("delete failed: "+msg.err.Error(), toastError)
		}
		if m.doc != nil && m.doc.project == msg.name {
			m.doc = nil
			m.view = viewProjects
		}
		return m, tea.Batch(m.loadProjectsCmd(), m.toast.show("project deleted", toastSuccess))

	case tea.KeyMsg, tea.MouseMsg:
		if m.modals.Len() > 0 {
			cmd, results := m.modals.Update(msg)
			m2, rcmd := m.handleResults(results)
			return m2, tea.Batch(cmd, rcmd)
		}
		if key, ok := msg.(tea.KeyMsg); ok {
			return m.handleKey(key)
		}
		return m, nil
	}

	// Remaining messages (blink ticks and the like) go to whichever component
	// has focus.
	if m.modals.Len() > 0 {
		cmd, results := m.modals.Update(msg)
		m2, rcmd := m.handleResults(results)
		return m2, tea.Batch(cmd, rcmd)
	}
	if m.view == viewProjects {
		var cmd tea.Cmd
		m.projectsList, cmd = m.projectsList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	}

	switch m.view {
	case viewProjects:
		return m.handleProjectsKey(msg)
	case viewSession:
		return m.handleSessionKey(msg)
	}
	return m, nil
}

func (m appModel) handleProjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.projectsList.SettingFilter() {
		var cmd tea.Cmd
		m.projectsList, cmd = m.projectsList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()

	case "r":
		return m, m.loadProjectsCmd()

	case "c":
		h := m.modals.Prompt("New project", "Name for the new project:", "project name", "")
		m.intents[h] = pendingIntent{kind: intentCreateProject}
		return m, nil

	case "D":
		it, ok := m.projectsList.SelectedItem().(projectItem)
		if !ok {
			return m, nil
		}
		h := m.modals.Confirm("Delete project",
			"Delete project "+it.name+" and its session? This cannot be undone.",
			"Delete", "Cancel")
		m.intents[h] = pendingIntent{kind: intentDeleteProject, text: it.name}
		return m, nil

	case "enter":
		it, ok := m.projectsList.SelectedItem().(projectItem)
		if !ok {
			return m, nil
		}
		m.loading = true
		m.loadSeq++
		return m, m.loadSessionCmd(it.name)
	}

	var cmd tea.Cmd
	m.projectsList, cmd = m.projectsList.Update(msg)
	return m, cmd
}

func (m appModel) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.doc == nil {
		m.view = viewProjects
		return m, nil
	}
	doc := m.doc.snapshot()

	switch msg.String() {
	case "q":
		return m.quit()

	case "esc", "backspace":
		m.view = viewProjects
		m.ui.set(func(ui *store.UIState) { ui.View = "projects" })
		return m, m.loadProjectsCmd()

	case "tab":
		m.section = (m.section + 1) % sectionCount
		return m, nil

	case "shift+tab":
		m.section = (m.section + sectionCount - 1) % sectionCount
		return m, nil

	case "up", "k":
		m.moveCursor(doc, -1)
		return m, nil

	case "down", "j":
		m.moveCursor(doc, +1)
		return m, nil

	case "K", "shift+up":
		return m.moveRow(doc, -1)

	case "J", "shift+down":
		return m.moveRow(doc, +1)

	case "enter", "e":
		return m.editFocused(doc)

	case "a":
		return m.addInSection(doc)

	case "d":
		return m.deleteFocused(doc)

	case "z":
		name := m.section.name()
		m.ui.set(func(ui *store.UIState) { ui.Collapsed[name] = !ui.Collapsed[name] })
		return m, nil

	case "p":
		m.showPreview = !m.showPreview
		m.ui.set(func(ui *store.UIState) { ui.ShowPreview = m.showPreview })
		return m, nil

	case "m":
		h := m.modals.Prompt("Model", "Model identifier:", model.DefaultModel, doc.Model)
		m.intents[h] = pendingIntent{kind: intentEditModel}
		return m, nil

	case "x":
		h := m.modals.Prompt("Max tokens",
			"Between "+strconv.Itoa(model.MinMaxTokens)+" and "+strconv.Itoa(model.MaxMaxTokens)+":",
			"", strconv.Itoa(doc.MaxTokens))
		m.intents[h] = pendingIntent{kind: intentEditMaxTokens}
		return m, nil

	case "t":
		h := m.modals.Prompt("Temperature", "Between 0.0 and 1.0:", "",
			strconv.FormatFloat(doc.Temperature, 'f', -1, 64))
		m.intents[h] = pendingIntent{kind: intentEditTemperature}
		return m, nil

	case "ctrl+s":
		m.doc.ctrl.SaveNow()
		return m, nil

	case "n":
		h := m.modals.Confirm("New session",
			"Replace the current session with a fresh one? The current session is saved first.",
			"New session", "Cancel")
		m.intents[h] = pendingIntent{kind: intentNewSession}
		return m, nil
	}

	return m, nil
}

func (m *appModel) moveCursor(doc *model.Session, delta int) {
	clamp := func(v, n int) int {
		if v < 0 {
			return 0
		}
		if n == 0 {
			return 0
		}
		if v >= n {
			return n - 1
		}
		return v
	}
	switch m.section {
	case sectionParams:
		m.paramIdx = clamp(m.paramIdx+delta, 3)
	case sectionSystem:
		m.sysIdx = clamp(m.sysIdx+delta, len(doc.System))
	case sectionTools:
		m.toolIdx = clamp(m.toolIdx+delta, len(doc.Tools))
	case sectionMessages:
		m.msgIdx = clamp(m.msgIdx+delta, len(doc.Messages))
	}
}

// moveRow swaps the focused row with its neighbor and feeds the resulting
// visual order through the reorder reconciler.
func (m appModel) moveRow(doc *model.Session, delta int) (tea.Model, tea.Cmd) {
	switch m.section {
	case sectionSystem:
		keys := m.doc.systemKeys()
		j := m.sysIdx + delta
		if m.sysIdx < 0 || m.sysIdx >= len(keys) || j < 0 || j >= len(keys) {
			return m, nil
		}
		keys[m.sysIdx], keys[j] = keys[j], keys[m.sysIdx]
		_ = m.doc.edit(func(e *session.Editor) error {
			e.ReorderSystemBlocks(keys)
			return nil
		})
		m.sysIdx = j
		return m, nil

	case sectionMessages:
		keys := m.doc.messageKeys()
		j := m.msgIdx + delta
		if m.msgIdx < 0 || m.msgIdx >= len(keys) || j < 0 || j >= len(keys) {
			return m, nil
		}
		keys[m.msgIdx], keys[j] = keys[j], keys[m.msgIdx]
		err := m.doc.edit(func(e *session.Editor) error {
			return e.ReorderMessages(keys)
		})
		if err != nil {
			return m, m.toast.show(err.Error(), toastWarning)
		}
		m.msgIdx = j
		return m, nil
	}
	return m, nil
}

func (m appModel) editFocused(doc *model.Session) (tea.Model, tea.Cmd) {
	switch m.section {
	case sectionParams:
		key := [3]string{"m", "x", "t"}[m.paramIdx]
		return m.handleSessionKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})

	case sectionSystem:
		if m.sysIdx >= len(doc.System) {
			return m, nil
		}
		h := m.modals.Prompt("Edit system block", "", "", doc.System[m.sysIdx].Text)
		m.intents[h] = pendingIntent{kind: intentEditSystem, index: m.sysIdx}
		return m, nil

	case sectionTools:
		if m.toolIdx >= len(doc.Tools) {
			return m, nil
		}
		t := doc.Tools[m.toolIdx]
		h := m.modals.Prompt("Edit tool "+t.Name, "Description:", "", t.Description)
		m.intents[h] = pendingIntent{kind: intentEditTool, index: m.toolIdx, text: t.Name}
		return m, nil

	case sectionMessages:
		if m.msgIdx >= len(doc.Messages) {
			return m, nil
		}
		msg := doc.Messages[m.msgIdx]
		h := m.modals.Prompt("Edit "+string(msg.Role)+" message", "", "", firstText(msg.Content))
		m.intents[h] = pendingIntent{kind: intentEditMessage, index: m.msgIdx}
		return m, nil
	}
	return m, nil
}

func (m appModel) addInSection(doc *model.Session) (tea.Model, tea.Cmd) {
	switch m.section {
	case sectionSystem:
		h := m.modals.Prompt("New system block", "", "You are…", "")
		m.intents[h] = pendingIntent{kind: intentAddSystem}
		return m, nil

	case sectionTools:
		h := m.modals.Prompt("New tool", "Tool name:", "get_weather", "")
		m.intents[h] = pendingIntent{kind: intentAddToolName}
		return m, nil

	case sectionMessages:
		role := model.RoleUser
		if n := len(doc.Messages); n > 0 {
			role = doc.Messages[n-1].Role.Next()
		}
		h := m.modals.Prompt("New "+string(role)+" message", "", "", "")
		m.intents[h] = pendingIntent{kind: intentAddMessage}
		return m, nil
	}
	return m, nil
}

func (m appModel) deleteFocused(doc *model.Session) (tea.Model, tea.Cmd) {
	var err error
	switch m.section {
	case sectionSystem:
		if m.sysIdx >= len(doc.System) {
			return m, nil
		}
		idx := m.sysIdx
		err = m.doc.edit(func(e *session.Editor) error {
			e.DeleteSystemBlock(idx)
			return nil
		})
		if m.sysIdx > 0 {
			m.sysIdx--
		}

	case sectionTools:
		if m.toolIdx >= len(doc.Tools) {
			return m, nil
		}
		idx := m.toolIdx
		err = m.doc.edit(func(e *session.Editor) error {
			e.DeleteTool(idx)
			return nil
		})
		if m.toolIdx > 0 {
			m.toolIdx--
		}

	case sectionMessages:
		if m.msgIdx >= len(doc.Messages) {
			return m, nil
		}
		idx := m.msgIdx
		err = m.doc.edit(func(e *session.Editor) error {
			return e.DeleteMessage(idx)
		})
		if err == nil && m.msgIdx > 0 {
			m.msgIdx--
		}
	}
	if err != nil {
		return m, m.toast.show(err.Error(), toastWarning)
	}
	return m, nil
}

// handleResults routes resolved dialogs by their recorded intent.
func (m appModel) handleResults(results []modal.Result) (appModel, tea.Cmd) {
	var cmds []tea.Cmd
	for _, res := range results {
		intent, ok := m.intents[res.Handle]
		if !ok {
			continue
		}
		delete(m.intents, res.Handle)
		if cmd := m.applyIntent(intent, res); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) applyIntent(intent pendingIntent, res modal.Result) tea.Cmd {
	switch intent.kind {
	case intentCreateProject:
		if res.Kind != modal.ResultPrompt || !res.OK || res.Value == "" {
			return nil
		}
		name := res.Value
		client := m.client
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return projectCreatedMsg{name: name, err: client.CreateProject(ctx, name)}
		}

	case intentDeleteProject:
		if res.Kind != modal.ResultConfirm || !res.Confirmed {
			return nil
		}
		name := intent.text
		client := m.client
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return projectDeletedMsg{name: name, err: client.DeleteProject(ctx, name)}
		}

	case intentNewSession:
		if res.Kind != modal.ResultConfirm || !res.Confirmed || m.doc == nil {
			return nil
		}
		// Final forced save of the outgoing document, then replace wholesale.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = m.doc.ctrl.Flush(ctx)
		cancel()
		_ = m.doc.edit(func(e *session.Editor) error {
			e.Replace(model.NewSession())
			return nil
		})
		m.doc.ctrl.Notify()
		m.section = sectionParams
		m.paramIdx, m.sysIdx, m.toolIdx, m.msgIdx = 0, 0, 0, 0
		return m.toast.show("started a new session", toastSuccess)
	}

	if m.doc == nil {
		return nil
	}

	switch intent.kind {
	case intentEditModel:
		if !res.OK {
			return nil
		}
		if err := m.doc.edit(func(e *session.Editor) error { return e.SetModel(res.Value) }); err != nil {
			return m.toast.show(err.Error(), toastWarning)
		}

	case intentEditMaxTokens:
		if !res.OK {
			return nil
		}
		// Unparsable or out-of-range input is ignored, like a half-typed
		// number in a form field.
		if v, err := strconv.Atoi(strings.TrimSpace(res.Value)); err == nil {
			_ = m.doc.edit(func(e *session.Editor) error {
				e.SetMaxTokens(v)
				return nil
			})
		}

	case intentEditTemperature:
		if !res.OK {
			return nil
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(res.Value), 64); err == nil {
			_ = m.doc.edit(func(e *session.Editor) error {
				e.SetTemperature(v)
				return nil
			})
		}

	case intentAddSystem:
		if !res.OK || res.Value == "" {
			return nil
		}
		if err := m.doc.edit(func(e *session.Editor) error {
			return e.InsertSystemBlock(model.TextBlock(res.Value))
		}); err != nil {
			return m.toast.show(err.Error(), toastWarning)
		}

	case intentEditSystem:
		if !res.OK || res.Value == "" {
			return nil
		}
		idx := intent.index
		if err := m.doc.edit(func(e *session.Editor) error {
			return e.ReplaceSystemBlock(idx, model.TextBlock(res.Value))
		}); err != nil {
			return m.toast.show(err.Error(), toastWarning)
		}

	case intentAddToolName:
		if !res.OK || res.Value == "" {
			return nil
		}
		h := m.modals.Prompt("New tool: "+res.Value, "Description:", "", "")
		m.intents[h] = pendingIntent{kind: intentAddToolDesc, text: res.Value}

	case intentAddToolDesc:
		if !res.OK {
			return nil
		}
		name, desc := intent.text, res.Value
		if err := m.doc.edit(func(e *session.Editor) error {
			return e.InsertTool(model.ToolDescriptor{Name: name, Description: desc})
		}); err != nil {
			return m.toast.show(err.Error(), toastWarning)
		}

	case intentEditTool:
		if !res.OK {
			return nil
		}
		idx, name := intent.index, intent.text
		if err := m.doc.edit(func(e *session.Editor) error {
			return e.ReplaceTool(idx, model.ToolDescriptor{Name: name, Description: res.Value})
		}); err != nil {
			return m.toast.show(err.Error(), toastWarning)
		}

	case intentAddMessage:
		if !res.OK || res.Value == "" {
			return nil
		}
		if err := m.doc.edit(func(e *session.Editor) error {
			return e.InsertMessage(model.Message{
				Role:    e.NextRole(),
				Content: []model.ContentBlock{model.TextBlock(res.Value)},
			})
		}); err != nil {
			return m.toast.show(err.Error(), toastWarning)
		}

	case intentEditMessage:
		if !res.OK || res.Value == "" {
			return nil
		}
		idx := intent.index
		if err := m.doc.edit(func(e *session.Editor) error {
			role := e.Doc().Messages[idx].Role
			return e.ReplaceMessage(idx, model.Message{
				Role:    role,
				Content: []model.ContentBlock{model.TextBlock(res.Value)},
			})
		}); err != nil {
			return m.toast.show(err.Error(), toastWarning)
		}
	}
	return nil
}

func (m appModel) quit() (tea.Model, tea.Cmd) {
	// Best-effort final flushes; unsaved edits are worth a short wait.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if m.doc != nil {
		_ = m.doc.ctrl.Flush(ctx)
	}
	_ = m.ui.ctrl.Flush(ctx)
	return m, tea.Quit
}

func firstText(blocks []model.ContentBlock) string {
	for _, b := range blocks {
		if b.Type == model.BlockText {
			return b.Text
		}
	}
	return ""
}

func listWidth(w int) int {
	if w < 40 {
		return 40
	}
	return w
}

func listHeight(h int) int {
	h -= 6
	if h < 8 {
		return 8
	}
	return h
}
