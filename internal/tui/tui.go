package tui

import (
	"context"

	"cardwrite/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the document in s and blocks until the user quits.
func Run(ctx context.Context, s store.Store, cfg *store.GlobalConfig) error {
	doc, err := s.Load(ctx)
	if err != nil {
		return err
	}
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(s, store.NewSession(s, doc), cfg)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	return err
}
