package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// Options configures Run
type Options struct {
	Name    string
	NoColor bool
	Output  io.Writer
}

// Run starts the program and blocks until the player quits or ctx ends
func Run(ctx context.Context, backend Backend, logger *log.Logger, opts Options) error {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	m := NewModel(ctx, backend, logger, NewStyles(out, !opts.NoColor), opts.Name)

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithOutput(out))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
