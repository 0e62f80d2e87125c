package tui

import (
	"context"

	"desk-cli/internal/syncer"

	tea "github.com/charmbracelet/bubbletea"
)

// RunOptions wires the interactive client together.
type RunOptions struct {
	Coordinator *syncer.Coordinator
	Poller      *syncer.Poller
	Model       Options
}

// Run starts the Bubble Tea program alongside the coordinator and poller
// goroutines. History bootstrap happens after the program starts draining
// render messages, and the poller only begins ticking once the backlog has
// been requested.
func Run(opts RunOptions) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program := tea.NewProgram(New(opts.Model), tea.WithAltScreen())

	go opts.Coordinator.Run(ctx)
	go func() {
		opts.Coordinator.Bootstrap(ctx)
		if opts.Poller != nil {
			opts.Poller.Run(ctx)
		}
	}()

	_, err := program.Run()
	return err
}
