package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/sdx/internal/server"
	"github.com/desertthunder/sdx/internal/services"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization flow and caches the token.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens, which land in the token file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if r.config.Credentials.Spotify.ClientID == "" || r.config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: set client_id and client_secret in %s or export SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET",
			shared.ErrMissingCredentials, r.configPath)
	}

	svc, ok := r.spotify.(*services.SpotifyService)
	if !ok {
		created, err := services.NewSpotifyService(r.config.Credentials.Spotify)
		if err != nil {
			return fmt.Errorf("failed to create Spotify service: %w", err)
		}
		svc = created
		r.spotify = svc
	}

	token, err := r.doOAuth(svc)
	if err != nil {
		return err
	}

	tokenPath, err := services.ResolveTokenPath(r.config.Credentials.Spotify)
	if err != nil {
		return err
	}
	if err := services.SaveToken(tokenPath, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	svc.UseToken(ctx, token)

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", tokenPath)
	r.writePlain("You can now use: sdx collect\n")

	return nil
}

// AuthStatus reports the cached token's state and probes the API with it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	tokenPath, err := services.ResolveTokenPath(r.config.Credentials.Spotify)
	if err != nil {
		return err
	}

	token, err := services.LoadToken(tokenPath)
	if err != nil {
		r.writePlain("✗ No cached login: %v\n", err)
		r.writePlain("Run 'sdx auth login' to authenticate.\n")
		return nil
	}

	r.writePlain("Token file: %s\n", tokenPath)
	switch {
	case token.Expiry.IsZero():
		r.writePlain("Expiry:     none recorded\n")
	case time.Now().After(token.Expiry):
		r.writePlain("Expiry:     %s (expired; refreshed on next use)\n", token.Expiry.Format(time.RFC3339))
	default:
		r.writePlain("Expiry:     %s\n", token.Expiry.Format(time.RFC3339))
	}
	if token.RefreshToken != "" {
		r.writePlain("Refresh:    present\n")
	} else {
		r.writePlain("Refresh:    missing (login again when the token expires)\n")
	}

	if r.spotify == nil {
		r.writePlain("⚠ Spotify credentials not configured; skipping API probe\n")
		return nil
	}

	if err := r.spotify.Authenticate(ctx, map[string]string{"token_file": tokenPath}); err != nil {
		r.writePlain("✗ API probe failed: %v\n", err)
		return nil
	}

	profile, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		r.writePlain("✗ API probe failed: %v\n", err)
		return nil
	}

	r.writePlain("✓ Logged in as %s (%s)\n", profile.DisplayName, profile.ID)
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(svc *services.SpotifyService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := svc.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(svc.Authenticator(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
