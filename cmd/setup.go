package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sundowner/kutx2spotify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates a starter config.toml and the cache directory.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.writePlain("Config already exists at %s\n", configPath)
	} else {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
		r.writePlain("✓ Created %s\n", configPath)
		r.writePlain("Fill in your Spotify client_id and client_secret, then run: kutx2spotify auth login\n")
	}

	cacheDir, err := r.config.Cache.Directory()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	r.writePlain("✓ Cache directory: %s\n", cacheDir)

	return nil
}
