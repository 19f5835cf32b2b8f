package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jasonknight/anthropide-sub001/internal/config"
)

// Run starts the interactive session editor.
func Run(cfg config.Config) error {
	applyColorProfilePreference()
	applyThemePreference()

	snd := &sender{}
	m := newAppModel(cfg, snd)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	snd.attach(p)
	_, err := p.Run()
	return err
}
