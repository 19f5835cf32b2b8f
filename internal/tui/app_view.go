package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jasonknight/anthropide-sub001/internal/dirty"
	"github.com/jasonknight/anthropide-sub001/internal/model"
)

func (m appModel) View() string {
	var body string
	switch m.view {
	case viewProjects:
		body = m.viewProjects()
	case viewSession:
		body = m.viewSession()
	}
	return m.modals.View(body)
}

func (m appModel) viewProjects() string {
	header := lipgloss.NewStyle().Bold(true).Render("anthropide — projects")
	footer := styleMuted().Render("enter: open  c: create  D: delete  r: reload  q: quit")

	body := m.projectsList.View()
	if m.loading {
		body = styleMuted().Render("loading session…")
	}

	lines := []string{header, "", body, "", m.footerLine(footer)}
	return strings.Join(lines, "\n")
}

func (m appModel) viewSession() string {
	if m.doc == nil {
		return styleMuted().Render("no session")
	}
	doc := m.doc.snapshot()
	collapsed := m.ui.get().Collapsed

	header := lipgloss.NewStyle().Bold(true).Render("anthropide — "+m.doc.project) +
		"  " + styleMuted().Render(m.saveIndicator())

	var b strings.Builder
	b.WriteString(m.renderParams(doc))
	b.WriteString("\n")
	b.WriteString(m.renderBlockSection("System prompts", sectionSystem, len(doc.System), collapsed["system"], func(i int) string {
		return truncate(doc.System[i].Text, 70)
	}))
	b.WriteString("\n")
	b.WriteString(m.renderBlockSection("Tools", sectionTools, len(doc.Tools), collapsed["tools"], func(i int) string {
		t := doc.Tools[i]
		if t.Description == "" {
			return t.Name
		}
		return t.Name + " — " + truncate(t.Description, 56)
	}))
	b.WriteString("\n")
	b.WriteString(m.renderBlockSection("Messages", sectionMessages, len(doc.Messages), collapsed["messages"], func(i int) string {
		msg := doc.Messages[i]
		return fmt.Sprintf("[%s] %s", msg.Role, truncate(firstText(msg.Content), 62))
	}))

	left := b.String()
	body := left
	if m.showPreview {
		if preview := m.renderPreview(doc); preview != "" {
			lw := m.width / 2
			if lw < 40 {
				lw = 40
			}
			pw := m.width - lw - 2
			if pw < 24 {
				pw = 24
			}
			body = lipgloss.JoinHorizontal(lipgloss.Top,
				normalizePane(left, lw, 0),
				normalizePane(preview, pw, 0))
		}
	}

	help := styleMuted().Render("tab: section  j/k: move  J/K: reorder  a: add  e: edit  d: delete  z: fold  p: preview  ctrl+s: save  n: new  esc: projects  q: quit")
	return strings.Join([]string{header, "", body, "", m.footerLine(help)}, "\n")
}

func (m appModel) renderParams(doc *model.Session) string {
	rows := []struct{ label, value string }{
		{"model", doc.Model},
		{"max_tokens", strconv.Itoa(doc.MaxTokens)},
		{"temperature", strconv.FormatFloat(doc.Temperature, 'f', -1, 64)},
	}

	var b strings.Builder
	b.WriteString(m.sectionTitle("Parameters", m.section == sectionParams))
	b.WriteString("\n")
	for i, r := range rows {
		cursor := "  "
		st := lipgloss.NewStyle()
		if m.section == sectionParams && m.paramIdx == i {
			cursor = "› "
			st = st.Foreground(colorSelectedFg).Background(colorSelectedBg)
		}
		b.WriteString(cursor + st.Render(fmt.Sprintf("%-12s %s", r.label, r.value)) + "\n")
	}
	return b.String()
}

func (m appModel) renderBlockSection(title string, sec section, n int, folded bool, row func(int) string) string {
	var b strings.Builder
	b.WriteString(m.sectionTitle(fmt.Sprintf("%s (%d)", title, n), m.section == sec))
	b.WriteString("\n")
	if folded {
		b.WriteString(styleMuted().Render("  …") + "\n")
		return b.String()
	}
	if n == 0 {
		b.WriteString(styleMuted().Render("  (empty — press a to add)") + "\n")
		return b.String()
	}

	cur := -1
	if m.section == sec {
		switch sec {
		case sectionSystem:
			cur = m.sysIdx
		case sectionTools:
			cur = m.toolIdx
		case sectionMessages:
			cur = m.msgIdx
		}
	}
	for i := 0; i < n; i++ {
		cursor := "  "
		st := lipgloss.NewStyle()
		if i == cur {
			cursor = "› "
			st = st.Foreground(colorSelectedFg).Background(colorSelectedBg)
		}
		b.WriteString(cursor + st.Render(row(i)) + "\n")
	}
	return b.String()
}

func (m appModel) sectionTitle(title string, active bool) string {
	st := lipgloss.NewStyle().Bold(true).Foreground(colorChromeFg)
	if active {
		st = st.Foreground(colorAccent)
	}
	return st.Render(title)
}

// renderPreview renders the focused block's text as markdown in the side pane.
func (m appModel) renderPreview(doc *model.Session) string {
	var text string
	switch m.section {
	case sectionSystem:
		if m.sysIdx < len(doc.System) {
			text = doc.System[m.sysIdx].Text
		}
	case sectionMessages:
		if m.msgIdx < len(doc.Messages) {
			text = firstText(doc.Messages[m.msgIdx].Content)
		}
	default:
		return ""
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	w := m.width/2 - 4
	return renderMarkdown(text, w)
}

func (m appModel) saveIndicator() string {
	switch m.saveState {
	case dirty.StatePendingSave:
		return lipgloss.NewStyle().Foreground(colorStatusSaving).Render("• unsaved")
	case dirty.StateSaving:
		return lipgloss.NewStyle().Foreground(colorStatusSaving).Render("saving…")
	case dirty.StateSaved:
		return lipgloss.NewStyle().Foreground(colorStatusSaved).Render("saved")
	case dirty.StateSaveError:
		msg := "save failed"
		if m.saveErr != "" {
			msg += ": " + m.saveErr
		}
		return lipgloss.NewStyle().Foreground(colorStatusError).Render(msg)
	default:
		return ""
	}
}

func (m appModel) footerLine(help string) string {
	if t := m.toast.view(); t != "" {
		return t + "\n" + help
	}
	return help
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
