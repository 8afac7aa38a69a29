package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/ui"
)

// TUI downloads one track with an interactive progress display.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: download engine not initialized", shared.ErrServiceUnavailable)
	}

	req := models.DownloadRequest{
		Title:  cmd.String("title"),
		Artist: cmd.String("artist"),
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMissingArgument, err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/trackdl-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.engine, req, cmd.String("output"))
	p := tea.NewProgram(model)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if m, ok := final.(ui.Model); ok {
		r.recordHistory(req, m.Result(), m.Err())
		if m.Err() != nil {
			return m.Err()
		}
		if m.SavedPath() != "" {
			r.writePlain("Saved %s\n", m.SavedPath())
		}
	}
	return nil
}
