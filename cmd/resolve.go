package main

import (
	"context"
	"fmt"

	"github.com/sundowner/kutx2spotify/internal/shared"
	"github.com/urfave/cli/v3"
)

// ResolveList prints every saved match decision.
func (r *Runner) ResolveList(ctx context.Context, cmd *cli.Command) error {
	if r.resolutions == nil {
		return fmt.Errorf("%w: resolution cache not configured", shared.ErrInvalidConfig)
	}

	entries := r.resolutions.Entries()
	if len(entries) == 0 {
		r.writePlain("No saved decisions\n")
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlain("%d saved decisions:\n\n", len(entries))
	for fingerprint, entry := range entries {
		if entry.Skip {
			r.writePlain("  %s → skip\n", fingerprint)
			continue
		}
		r.writePlain("  %s → %s (%s)\n", fingerprint, entry.TrackID, entry.Tier)
	}
	return nil
}

// ResolveRemove deletes the decision for one song fingerprint.
func (r *Runner) ResolveRemove(ctx context.Context, cmd *cli.Command) error {
	fingerprint := cmd.StringArg("fingerprint")
	if fingerprint == "" {
		return fmt.Errorf("%w: fingerprint argument is required", shared.ErrInvalidArgument)
	}

	if r.resolutions == nil {
		return fmt.Errorf("%w: resolution cache not configured", shared.ErrInvalidConfig)
	}

	removed, err := r.resolutions.Remove(fingerprint)
	if err != nil {
		return err
	}
	if !removed {
		return r.writePlain("No decision found for %s\n", fingerprint)
	}

	r.logger.Infof("removed decision for %s", fingerprint)
	return r.writePlain("✓ Removed decision for %s\n", fingerprint)
}

// ResolveClear deletes every saved decision.
func (r *Runner) ResolveClear(ctx context.Context, cmd *cli.Command) error {
	if r.resolutions == nil {
		return fmt.Errorf("%w: resolution cache not configured", shared.ErrInvalidConfig)
	}

	if !cmd.Bool("force") {
		return fmt.Errorf("%w: pass --force to clear all %d saved decisions", shared.ErrInvalidArgument, r.resolutions.Len())
	}

	count, err := r.resolutions.Clear()
	if err != nil {
		return err
	}
	r.logger.Infof("cleared %d decisions", count)
	return r.writePlain("✓ Cleared %d saved decisions\n", count)
}
