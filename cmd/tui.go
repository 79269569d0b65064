package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sundowner/kutx2spotify/internal/shared"
	"github.com/sundowner/kutx2spotify/internal/tasks"
	"github.com/sundowner/kutx2spotify/internal/ui"
	"github.com/urfave/cli/v3"
)

// Review matches a day's songs and opens the interactive TUI for the ones
// that need a manual decision.
func (r *Runner) Review(ctx context.Context, cmd *cli.Command) error {
	date := cmd.String("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: invalid date %q: expected YYYY-MM-DD", shared.ErrInvalidArgument, date)
	}

	if r.spotify == nil || !r.spotify.Authenticated() {
		return fmt.Errorf("%w: run 'kutx2spotify auth login' first", shared.ErrNotAuthenticated)
	}
	if r.resolutions == nil {
		return fmt.Errorf("%w: resolution cache not configured", shared.ErrInvalidConfig)
	}

	result, err := r.engine.Run(ctx, tasks.RunOptions{
		Date:    date,
		Start:   cmd.String("start"),
		End:     cmd.String("end"),
		Preview: true,
	}, nil)
	if err != nil {
		return err
	}

	pending := result.Matches.Pending()
	if len(pending) == 0 {
		r.writePlain("All %d songs matched, nothing to review\n", result.Matches.Total())
		return nil
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/kutx2spotify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(pending, r.resolutions)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	if err := model.Err(); err != nil {
		return err
	}

	decisions := model.Decisions()
	r.writePlain("Resolved %d of %d pending songs\n", len(decisions), len(pending))
	if len(decisions) > 0 {
		r.writePlain("Re-run to apply your decisions: kutx2spotify run --date %s\n", date)
	}
	return nil
}
