// package services defines interface Service for talking to music data APIs
//
// Spotify (zmb3/spotify over oauth2)
package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/sdx/internal/models"
)

// Service defines the interface for music data providers that supply the
// collector with listening history, audio features, and recommendations.
type Service interface {
	// Authenticate prepares the API client from the given credentials.
	// Accepts "access_token" (raw bearer token), "token_file" (cached token
	// JSON path), or neither to fall back to the client-credentials grant.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*models.Profile, error)

	// TopTracks retrieves the user's top tracks for a time range, ranked from 1.
	TopTracks(ctx context.Context, timeRange string, limit int) ([]models.TopTrack, error)

	// TopArtists retrieves the user's top artists for a time range, ranked from 1.
	TopArtists(ctx context.Context, timeRange string, limit int) ([]models.TopArtist, error)

	// SavedTracks retrieves the user's saved library, following pagination.
	// A limit of zero or less fetches everything.
	SavedTracks(ctx context.Context, limit int) ([]models.SavedTrack, error)

	// Track retrieves a single track by ID.
	Track(ctx context.Context, id string) (*models.TopTrack, error)

	// AudioFeatures retrieves audio features for one chunk of ids.
	// The returned slice is positional and preserves the provider's nulls:
	// ids the provider does not recognize come back as nil entries.
	AudioFeatures(ctx context.Context, ids []string) ([]*models.AudioFeature, error)

	// GenreSeeds retrieves the genre names accepted as recommendation seeds.
	GenreSeeds(ctx context.Context) ([]string, error)

	// Recommendations retrieves recommended tracks for the given seed genres.
	Recommendations(ctx context.Context, genres []string, limit int) ([]models.Recommendation, error)

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}

// ProviderError is a non-fatal rejection signaled by the provider API for a
// single call. Batch operations record it against the failed chunk and keep
// going; it never aborts a collection run.
type ProviderError struct {
	StatusCode int    // HTTP status from the API, zero when the call never got a response
	Message    string // One-line reason suitable for failure maps
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}
