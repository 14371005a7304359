package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/desertthunder/sdx/internal/tasks"
	"github.com/desertthunder/sdx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive run browser.
//
// Logging moves to a file while bubbletea owns the terminal. When no login is
// cached the browser still works; only in-app collection is disabled.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	logger, err := shared.NewFileLogger("./tmp/sdx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(logger)

	db, adapter, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	var engine tasks.CollectEngine
	if err := r.authenticateUser(ctx); err != nil {
		logger.Warn("collection disabled in TUI", "error", err)
	} else {
		engine = tasks.NewCollector(r.spotify, adapter, logger, r.collectorOpts(cmd))
	}

	model := ui.NewModel(ctx, adapter, engine)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
