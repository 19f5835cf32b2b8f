package modal

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Avoid borders inside the box: some terminals show background artifacts when
// nesting bordered components inside a modal with a background color.
var (
	colorModalBg     = lipgloss.AdaptiveColor{Light: "255", Dark: "235"}
	colorModalFg     = lipgloss.AdaptiveColor{Light: "235", Dark: "252"}
	colorHeaderBg    = lipgloss.AdaptiveColor{Light: "252", Dark: "237"}
	colorControlBg   = lipgloss.AdaptiveColor{Light: "252", Dark: "238"}
	colorSelectedBg  = lipgloss.AdaptiveColor{Light: "#e9e9e9", Dark: "#3a3a3a"}
	colorSelectedFg  = lipgloss.AdaptiveColor{Light: "235", Dark: "255"}
	colorMutedFg     = lipgloss.AdaptiveColor{Light: "240", Dark: "243"}
	colorModalBorder = lipgloss.AdaptiveColor{Light: "250", Dark: "243"}
)

func (s *Stack) resolveSize(size Size) (w, h int) {
	vw, vh := s.vpW, s.vpH
	switch size {
	case SizeSmall:
		w = 44
	case SizeMedium:
		w = 64
	case SizeLarge:
		w = 92
	case SizeFullscreen:
		return vw, vh
	}
	if w > vw-4 {
		w = vw - 4
	}
	if w < 20 {
		w = 20
	}
	return w, 0
}

// View renders the stack over bg. With no open dialogs bg passes through
// untouched; otherwise the topmost dialog is centered over the viewport.
// Dialogs below the top stay open but are not drawn.
func (s *Stack) View(bg string) string {
	if len(s.items) == 0 {
		return bg
	}
	top := s.items[len(s.items)-1]
	box := s.renderInstance(top)
	return lipgloss.Place(s.vpW, s.vpH, lipgloss.Center, lipgloss.Center, box)
}

func (s *Stack) renderInstance(in *instance) string {
	bodyW := in.boxW - 4
	if bodyW < 10 {
		bodyW = 10
	}

	var parts []string
	if strings.TrimSpace(in.body) != "" {
		parts = append(parts, lipgloss.NewStyle().Width(bodyW).Render(in.body))
	}
	if in.hasInput {
		parts = append(parts, "", in.input.View())
	}
	if len(in.buttons) > 0 {
		parts = append(parts, "", s.renderButtons(in))
	}
	parts = append(parts, "", s.renderHelp(in, bodyW))

	content := strings.Join(parts, "\n")
	return s.renderBox(in, content)
}

func (s *Stack) renderButtons(in *instance) string {
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorModalFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	focusOffset := 0
	if in.hasInput {
		focusOffset = 1
	}

	rendered := make([]string, 0, len(in.buttons)*2)
	for i, b := range in.buttons {
		st := btnBase
		if in.focus == i+focusOffset {
			st = btnActive
		}
		if i > 0 {
			rendered = append(rendered, " ")
		}
		rendered = append(rendered, st.Render(b.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (s *Stack) renderHelp(in *instance, width int) string {
	help := "tab: focus   enter: select"
	if in.escapeCloses {
		help += "   esc: close"
	}
	if len(s.items) > 1 {
		help += "   (+" + strconv.Itoa(len(s.items)-1) + " behind)"
	}
	return lipgloss.NewStyle().Foreground(colorMutedFg).Width(width).Render(help)
}

func (s *Stack) renderBox(in *instance, content string) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Background(colorHeaderBg).
		Foreground(colorModalFg).
		Width(in.boxW - 2).
		Padding(0, 1).
		Render(in.title)

	bodyH := 0
	if in.boxH > 0 {
		// Fullscreen: pin the content area to the resolved height.
		bodyH = in.boxH - 4
	}
	body := lipgloss.NewStyle().
		Width(in.boxW - 2).
		Padding(0, 1).
		Render(normalizeBody(content, in.boxW-4, bodyH))

	return lipgloss.NewStyle().
		Background(colorModalBg).
		Foreground(colorModalFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorModalBorder).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// inTopBox reports whether terminal cell (x, y) falls inside the rendered
// top dialog box.
func (s *Stack) inTopBox(x, y int) bool {
	if len(s.items) == 0 {
		return false
	}
	top := s.items[len(s.items)-1]
	box := s.renderInstance(top)
	bw := lipgloss.Width(box)
	bh := lipgloss.Height(box)
	x0 := (s.vpW - bw) / 2
	y0 := (s.vpH - bh) / 2
	return x >= x0 && x < x0+bw && y >= y0 && y < y0+bh
}

// normalizeBody clamps lines to width columns (ANSI-aware) and, when height
// is positive, pads/truncates to exactly that many lines.
func normalizeBody(sv string, width, height int) string {
	lines := strings.Split(sv, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w > width && width > 1 {
			lines[i] = xansi.Cut(ln, 0, width-1) + "…"
		}
	}
	return strings.Join(lines, "\n")
}
