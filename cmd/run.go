package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sundowner/kutx2spotify/internal/formatter"
	"github.com/sundowner/kutx2spotify/internal/shared"
	"github.com/sundowner/kutx2spotify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// parseOverrides converts repeated INDEX=CHOICE flags into an override map.
func parseOverrides(raw []string) (map[int]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	overrides := make(map[int]string, len(raw))
	for _, pair := range raw {
		idx, choice, found := strings.Cut(pair, "=")
		if !found || choice == "" {
			return nil, fmt.Errorf("%w: invalid override %q: expected INDEX=CHOICE", shared.ErrInvalidArgument, pair)
		}
		n, err := strconv.Atoi(idx)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: invalid override index %q", shared.ErrInvalidArgument, idx)
		}
		overrides[n] = choice
	}
	return overrides, nil
}

// Run executes the daily pipeline: fetch, match, resolve, publish, report.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	date := cmd.String("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: invalid date %q: expected YYYY-MM-DD", shared.ErrInvalidArgument, date)
	}

	preview := cmd.Bool("preview")
	if !preview && (r.spotify == nil || !r.spotify.Authenticated()) {
		return fmt.Errorf("%w: run 'kutx2spotify auth login' first", shared.ErrNotAuthenticated)
	}

	overrides, err := parseOverrides(cmd.StringSlice("resolve"))
	if err != nil {
		return err
	}

	name := cmd.String("name")
	if name == "" {
		prefix := r.config.Playlist.NamePrefix
		if prefix == "" {
			prefix = "KUTX"
		}
		name = fmt.Sprintf("%s %s", prefix, date)
	}

	opts := tasks.RunOptions{
		Date:       date,
		Start:      cmd.String("start"),
		End:        cmd.String("end"),
		Name:       name,
		Public:     r.config.Playlist.Public && !cmd.Bool("private"),
		CachedOnly: cmd.Bool("cached"),
		Preview:    preview,
		Overrides:  overrides,
	}

	runID := shared.GenerateID()
	logger := shared.WithLogger(r.logger, "run_id", runID, "date", date)
	logger.Info("starting run")

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	result, runErr := r.engine.Run(ctx, opts, progress)
	close(progress)
	<-done

	if result != nil && result.Matches != nil {
		r.writePlain("%s", formatter.RenderReport(result.Matches, date))

		if path := cmd.String("csv"); path != "" {
			written, err := formatter.WriteCSVExport(result.Matches, date, path)
			if err != nil {
				return err
			}
			r.writePlain("CSV report: %s\n", written)
		}
		if path := cmd.String("markdown"); path != "" {
			playlistURL := ""
			if result.Published != nil {
				playlistURL = result.Published.URL
			}
			written, err := formatter.WriteMarkdownExport(result.Matches, date, playlistURL, path)
			if err != nil {
				return err
			}
			r.writePlain("Markdown report: %s\n", written)
		}
	}

	if runErr != nil {
		return runErr
	}

	if result.Published != nil {
		r.writePlainln("✓ Playlist created: %s", result.Published.Playlist.Name)
		r.writePlain("  Tracks added: %d\n", result.Published.Added)
		r.writePlain("  %s\n", result.Published.URL)
	} else if preview {
		r.writePlainln("Preview only, no playlist created")
	}

	if pending := result.Matches.Pending(); len(pending) > 0 {
		r.writePlain("\n%d songs need review: kutx2spotify review --date %s\n", len(pending), date)
	}

	logger.Info("run complete", "matched", result.Matches.Found(), "total", result.Matches.Total())
	return nil
}
