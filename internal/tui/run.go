package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"mdslides/internal/present"
)

// Run presents on the alternate screen until the user quits.
func Run(ctx context.Context, p *present.Presenter, opts Options) error {
	opts.Context = ctx
	prog := tea.NewProgram(New(p, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
