package main

import (
	"context"
	"fmt"

	"github.com/sundowner/kutx2spotify/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheShow prints the cached broadcast log for a date.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	date := cmd.String("date")

	if r.playlists == nil {
		return fmt.Errorf("%w: playlist cache not configured", shared.ErrInvalidConfig)
	}

	snapshot, err := r.playlists.Get(date)
	if err != nil {
		return err
	}
	if snapshot == nil {
		r.writePlain("No cached playlist for %s\n", date)
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, true)
	}

	r.writePlain("KUTX %s (%d songs)\n\n", snapshot.Date, len(snapshot.Songs))
	for i, song := range snapshot.Songs {
		r.writePlain("%2d. %s  %s - %s", i+1, song.PlayedAt.Format("15:04"), song.Artist, song.Title)
		if song.Album != "" {
			r.writePlain(" (%s)", song.Album)
		}
		r.writePlain("\n")
	}
	return nil
}

// CacheClear removes one or all cached broadcast logs.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if r.playlists == nil {
		return fmt.Errorf("%w: playlist cache not configured", shared.ErrInvalidConfig)
	}

	if date := cmd.String("date"); date != "" {
		removed, err := r.playlists.Clear(date)
		if err != nil {
			return err
		}
		if removed {
			r.logger.Infof("cleared cached playlist for %s", date)
			return r.writePlain("✓ Cleared cached playlist for %s\n", date)
		}
		return r.writePlain("No cached playlist for %s\n", date)
	}

	count, err := r.playlists.ClearAll()
	if err != nil {
		return err
	}
	r.logger.Infof("cleared %d cached playlists", count)
	return r.writePlain("✓ Cleared %d cached playlists\n", count)
}
