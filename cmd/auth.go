package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/gmcculloug/mixtape/internal/server"
	"github.com/gmcculloug/mixtape/internal/services"
	"github.com/gmcculloug/mixtape/internal/shared"
)

// AuthSpotify performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// persists the exchanged token to the configured token path.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	spotify := r.config.Credentials.Spotify
	if spotify.ClientID == "" || spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingConfig)
	}

	svc, err := services.NewSpotifyService(spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := svc.GetAuthURL(state)
	handler := server.NewOAuthHandler(svc.OAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.logger.Info("starting OAuth callback server", "addr", addr)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	result, err := server.ServeCallback(waitCtx, addr, router, handler)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if result.Error() != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	tokenPath := expandPath(spotify.TokenPath)
	if err := saveToken(tokenPath, result.Token); err != nil {
		return err
	}

	r.logger.Info("token saved", "path", tokenPath)

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", tokenPath)
	r.writePlain("You can now use: mixtape sync --service spotify <playlist name>\n")

	return nil
}

// AuthStatus reports which services have stored credentials.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	r.writePlain("Spotify:\n")
	spotifyToken := expandPath(r.config.Credentials.Spotify.TokenPath)
	if token, err := loadToken(spotifyToken); err != nil {
		r.writePlain("  ✗ Not authenticated (%s)\n", spotifyToken)
	} else if !token.Expiry.IsZero() && token.Expiry.Before(time.Now()) {
		r.writePlain("  ⚠ Token expired at %s, run 'mixtape auth spotify'\n", token.Expiry.Format(time.RFC3339))
	} else {
		r.writePlain("  ✓ Token present (%s)\n", spotifyToken)
	}

	r.writePlain("YouTube:\n")
	youtubeToken := expandPath(r.config.Credentials.YouTube.TokenPath)
	if _, err := os.Stat(youtubeToken); err != nil {
		r.writePlain("  ✗ No token file (%s)\n", youtubeToken)
	} else {
		r.writePlain("  ✓ Token file present (%s)\n", youtubeToken)
	}

	return nil
}
