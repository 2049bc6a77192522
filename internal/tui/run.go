package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spent/internal/engine"
)

// RunConfirm shows the confirmation form for draft in the terminal and
// blocks until it closes. It returns the draft as last typed and whether it
// was saved. When save is nil, saved means the user accepted a valid draft.
func RunConfirm(ctx context.Context, draft engine.Draft, save SaveFunc, opts ...tea.ProgramOption) (engine.Draft, bool, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(NewConfirmModel(ctx, draft, save), opts...)

	final, err := p.Run()
	if err != nil {
		return draft, false, fmt.Errorf("confirmation form: %w", err)
	}

	m, ok := final.(ConfirmModel)
	if !ok {
		return draft, false, fmt.Errorf("confirmation form: unexpected model %T", final)
	}
	return m.Draft(), m.Saved(), nil
}
