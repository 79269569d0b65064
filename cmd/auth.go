package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sundowner/kutx2spotify/internal/server"
	"github.com/sundowner/kutx2spotify/internal/services"
	"github.com/sundowner/kutx2spotify/internal/shared"
	"github.com/urfave/cli/v3"
)

const authTimeout = 5 * time.Minute

// tokenPath returns where the Spotify token is persisted.
func (r *Runner) tokenPath() (string, error) {
	dir, err := r.config.Cache.Directory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, services.TokenFile), nil
}

// AuthLogin performs the OAuth2 authorization-code flow for Spotify.
//
// Starts a local HTTP server on the configured redirect URI, opens the
// browser for user authorization, and persists the exchanged token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	state := shared.GenerateID()
	authURL := r.spotify.AuthURL(state)

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n\n%s\n\n", authURL)
	} else if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser: %v", err)
		r.writePlain("Open this URL in your browser:\n\n%s\n\n", authURL)
	}

	r.logger.Info("waiting for authorization callback")

	token, err := server.WaitForCallback(ctx, r.spotify.OAuthConfig(), state, authTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.spotify.Authenticate(ctx, token)

	path, err := r.tokenPath()
	if err != nil {
		return err
	}
	if err := services.SaveToken(path, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", path)
	r.writePlain("You can now use: kutx2spotify run\n")

	return nil
}

// AuthStatus checks the current authentication state against the Spotify API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		r.writePlain("✗ No Spotify credentials configured\n")
		return nil
	}
	if !r.spotify.Authenticated() {
		r.writePlain("✗ Not authenticated\nRun: kutx2spotify auth login\n")
		return nil
	}

	profile, err := r.spotify.UserProfile(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	r.writePlain("✓ Authenticated\n")
	name := profile.DisplayName
	if name == "" {
		name = profile.ID
	}
	r.writePlain("User: %s\n", name)
	return nil
}
