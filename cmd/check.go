package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/sdx/internal/services"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Check probes credentials and API endpoints step by step.
//
// Each step reports pass or fail independently; failed API probes print a
// copy-pasteable cURL command with the Authorization header redacted.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)
	trackID := cmd.String("id")

	r.writePlainHeader("API Diagnostics")

	failed := 0
	pass := func(name string) { r.writePlain("✓ %s\n", name) }
	fail := func(name string, err error) {
		failed++
		r.writePlain("✗ %s: %v\n", name, err)
	}

	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		fail("credentials", fmt.Errorf("client_id/client_secret not set in %s or environment", r.configPath))
		return fmt.Errorf("%w: cannot probe the API without credentials", shared.ErrMissingCredentials)
	}
	pass("credentials")

	// Prefer the cached login; its token unlocks the /me probe. Fall back to
	// the app grant so catalog probes still run without a login.
	userToken := false
	if tokenPath, err := services.ResolveTokenPath(creds); err == nil {
		if _, err := services.LoadToken(tokenPath); err == nil {
			userToken = true
		}
	}

	var err error
	if userToken {
		err = r.authenticateUser(ctx)
	} else {
		err = r.authenticateApp(ctx)
	}
	if err != nil {
		fail("token acquisition", err)
		return fmt.Errorf("%w: token acquisition failed", shared.ErrAuthFailed)
	}
	if userToken {
		pass("token acquisition (cached login)")
	} else {
		pass("token acquisition (client credentials)")
	}

	if userToken {
		if profile, err := r.spotify.CurrentUser(ctx); err != nil {
			fail("current user", err)
			r.printCurlRepro("https://api.spotify.com/v1/me")
		} else {
			pass(fmt.Sprintf("current user (%s)", profile.ID))
		}
	} else {
		r.writePlain("- current user: skipped (no cached login; app tokens carry no user scope)\n")
	}

	if track, err := r.spotify.Track(ctx, trackID); err != nil {
		fail("track lookup", err)
		r.printCurlRepro("https://api.spotify.com/v1/tracks/" + trackID)
	} else {
		pass(fmt.Sprintf("track lookup (%s)", track.Name))
	}

	features, err := r.spotify.AudioFeatures(ctx, []string{trackID})
	switch {
	case err != nil:
		fail("audio features", err)
		r.printCurlRepro("https://api.spotify.com/v1/audio-features?ids=" + trackID)
	case len(features) == 0 || features[0] == nil:
		fail("audio features", fmt.Errorf("no record for %s", trackID))
	default:
		pass(fmt.Sprintf("audio features (tempo %.1f)", features[0].Tempo))
	}

	if svc, ok := r.spotify.(*services.SpotifyService); ok {
		if tempo, err := svc.AnalysisTempo(ctx, trackID); err != nil {
			fail("audio analysis", err)
			r.printCurlRepro("https://api.spotify.com/v1/audio-analysis/" + trackID)
		} else {
			pass(fmt.Sprintf("audio analysis (tempo %.1f)", tempo))
		}
	}

	if failed > 0 {
		r.writePlain("\n%d check(s) failed\n", failed)
		return fmt.Errorf("%w: %d diagnostic step(s) failed", shared.ErrAPIRequest, failed)
	}

	r.writePlain("\nAll checks passed\n")
	return nil
}

// printCurlRepro prints a reproduction command for a failed probe. The
// rendered Authorization header is redacted, so the output is safe to share.
func (r *Runner) printCurlRepro(url string) {
	req := &shared.CurlRequest{
		Method: http.MethodGet,
		URL:    url,
		Headers: map[string]string{
			"Authorization": "Bearer " + r.accessToken(),
		},
	}
	r.writePlain("  repro: %s\n", req.String())
}

// accessToken returns the token currently backing the Spotify client.
func (r *Runner) accessToken() string {
	if svc, ok := r.spotify.(*services.SpotifyService); ok {
		if token := svc.Token(); token != nil {
			return token.AccessToken
		}
	}
	return ""
}
