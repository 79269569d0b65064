package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/sundowner/kutx2spotify/internal/cache"
	"github.com/sundowner/kutx2spotify/internal/services"
	"github.com/sundowner/kutx2spotify/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to load config, using defaults: %v", err)
		}
	}

	cacheDir, err := config.Cache.Directory()
	if err != nil {
		logger.Fatalf("failed to resolve cache directory: %v", err)
	}

	resolutions := cache.NewResolutionCache(filepath.Join(cacheDir, cache.ResolutionsFile))
	if err := resolutions.Load(); err != nil {
		logger.Warnf("resolution cache reset: %v", err)
	}
	playlists := cache.NewPlaylistCache(
		filepath.Join(cacheDir, "playlists"),
		time.Duration(config.Cache.PlaylistTTLHours)*time.Hour,
	)

	kutx := services.NewKUTXClient(config.KUTX.BaseURL, config.KUTX.WidgetID, nil)

	var spotify *services.SpotifyClient
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		client, err := services.NewSpotifyClient(config.Credentials.Spotify)
		if err != nil {
			logger.Warnf("spotify client unavailable: %v", err)
		} else {
			spotify = client
			if token, err := services.LoadToken(filepath.Join(cacheDir, services.TokenFile)); err == nil && token != nil {
				spotify.Authenticate(context.Background(), token)
			}
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		ConfigPath:  configPath,
		KUTX:        kutx,
		Spotify:     spotify,
		Resolutions: resolutions,
		Playlists:   playlists,
		Logger:      logger,
	})

	app := &cli.Command{
		Name:     "kutx2spotify",
		Usage:    "Build Spotify playlists from the KUTX daily broadcast log",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not authenticated, run: kutx2spotify auth login")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
