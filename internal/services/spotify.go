// Spotify API implementation of [Service]
//
// Endpoint coverage based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultRedirectURI = "http://127.0.0.1:9090/callback"
	defaultLimit       = 20

	maxTopLimit        = 50  // top-items and saved-tracks page cap
	maxRecLimit        = 100 // recommendations cap
	maxSeedGenres      = 5   // recommendation seed cap
	maxAudioFeatureIDs = 100 // audio-features ids per call
	maxTracksPerLookup = 50  // several-tracks ids per call
)

// collectorScopes is the scope set requested during interactive login.
var collectorScopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
}

// SpotifyService implements the Service interface over the zmb3/spotify client.
// Uses [oauth2] for authentication; the wrapped transport refreshes tokens as needed.
type SpotifyService struct {
	auth   *spotifyauth.Authenticator
	creds  shared.SpotifyConfig
	client *spotify.Client
	token  *oauth2.Token
}

// NewSpotifyService creates a new Spotify service from the given credentials.
func NewSpotifyService(creds shared.SpotifyConfig) (*SpotifyService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = defaultRedirectURI
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(creds.ClientID),
		spotifyauth.WithClientSecret(creds.ClientSecret),
		spotifyauth.WithRedirectURL(creds.RedirectURI),
		spotifyauth.WithScopes(collectorScopes...),
	)

	return &SpotifyService{auth: auth, creds: creds}, nil
}

// Authenticate prepares the underlying API client.
//
// Credential resolution order: an explicit "access_token", then a cached
// "token_file", then the client-credentials grant. App tokens carry no user
// scope, so endpoints under /me reject them.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.UseToken(ctx, &oauth2.Token{AccessToken: accessToken})
		return nil
	}

	if tokenFile, ok := credentials["token_file"]; ok && tokenFile != "" {
		token, err := LoadToken(tokenFile)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
		}
		s.UseToken(ctx, token)
		return nil
	}

	conf := &clientcredentials.Config{
		ClientID:     s.creds.ClientID,
		ClientSecret: s.creds.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := conf.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	s.UseToken(ctx, token)
	return nil
}

// UseToken installs an already-acquired token on the service, replacing any
// existing client. The callback server hands tokens here after login.
func (s *SpotifyService) UseToken(ctx context.Context, token *oauth2.Token) {
	s.token = token
	s.client = spotify.New(s.auth.Client(ctx, token))
}

// Token returns the token currently backing the client, nil before Authenticate.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// Authenticator exposes the OAuth2 authenticator for the login flow
// (authorization URL generation and code exchange in the callback handler).
func (s *SpotifyService) Authenticator() *spotifyauth.Authenticator {
	return s.auth
}

// AuthURL returns the authorization URL for interactive login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.auth.AuthURL(state)
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// api guards against use before Authenticate.
func (s *SpotifyService) api() (*spotify.Client, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return s.client, nil
}

// CurrentUser retrieves the authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.Profile, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	user, err := api.CurrentUser(ctx)
	if err != nil {
		return nil, translateError(err)
	}

	return &models.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
	}, nil
}

// TopTracks retrieves the user's top tracks for a time range, ranked from 1.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.TopTrack, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	rng, err := timerangeOption(timeRange)
	if err != nil {
		return nil, err
	}

	page, err := api.CurrentUsersTopTracks(ctx, spotify.Limit(clampLimit(limit, maxTopLimit)), rng)
	if err != nil {
		return nil, translateError(err)
	}

	tracks := make([]models.TopTrack, 0, len(page.Tracks))
	for i, t := range page.Tracks {
		tracks = append(tracks, topTrackFromFull(i+1, t))
	}
	return tracks, nil
}

// TopArtists retrieves the user's top artists for a time range, ranked from 1.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.TopArtist, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	rng, err := timerangeOption(timeRange)
	if err != nil {
		return nil, err
	}

	page, err := api.CurrentUsersTopArtists(ctx, spotify.Limit(clampLimit(limit, maxTopLimit)), rng)
	if err != nil {
		return nil, translateError(err)
	}

	artists := make([]models.TopArtist, 0, len(page.Artists))
	for i, a := range page.Artists {
		artists = append(artists, models.TopArtist{
			Rank:       i + 1,
			ID:         a.ID.String(),
			Name:       a.Name,
			Genres:     a.Genres,
			Popularity: int(a.Popularity),
			Followers:  int(a.Followers.Count),
		})
	}
	return artists, nil
}

// SavedTracks retrieves the user's saved library, following pagination until
// the provider reports no more pages or the limit is reached.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit int) ([]models.SavedTrack, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	pageSize := maxTopLimit
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}

	page, err := api.CurrentUsersTracks(ctx, spotify.Limit(pageSize))
	if err != nil {
		return nil, translateError(err)
	}

	var saved []models.SavedTrack
	for {
		for _, item := range page.Tracks {
			saved = append(saved, savedTrackFromItem(item))
			if limit > 0 && len(saved) >= limit {
				return saved, nil
			}
		}

		err = api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			return saved, nil
		}
		if err != nil {
			return saved, translateError(err)
		}
	}
}

// Track retrieves a single track by ID. Rank is zero for bare lookups.
func (s *SpotifyService) Track(ctx context.Context, id string) (*models.TopTrack, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	full, err := api.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, translateError(err)
	}

	track := topTrackFromFull(0, *full)
	return &track, nil
}

// AudioFeatures retrieves audio features for one chunk of ids.
//
// The returned slice is positional: entry i belongs to ids[i], and ids the
// provider does not recognize stay nil rather than becoming failures.
func (s *SpotifyService) AudioFeatures(ctx context.Context, ids []string) ([]*models.AudioFeature, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > maxAudioFeatureIDs {
		return nil, fmt.Errorf("%w: at most %d ids per call, got %d", shared.ErrInvalidArgument, maxAudioFeatureIDs, len(ids))
	}

	spotifyIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		spotifyIDs[i] = spotify.ID(id)
	}

	features, err := api.GetAudioFeatures(ctx, spotifyIDs...)
	if err != nil {
		return nil, translateError(err)
	}

	records := make([]*models.AudioFeature, len(features))
	for i, f := range features {
		if f == nil {
			continue
		}
		records[i] = &models.AudioFeature{
			ID:               f.ID.String(),
			Danceability:     f.Danceability,
			Energy:           f.Energy,
			Key:              int(f.Key),
			Loudness:         f.Loudness,
			Mode:             int(f.Mode),
			Speechiness:      f.Speechiness,
			Acousticness:     f.Acousticness,
			Instrumentalness: f.Instrumentalness,
			Liveness:         f.Liveness,
			Valence:          f.Valence,
			Tempo:            f.Tempo,
		}
	}
	return records, nil
}

// GenreSeeds retrieves the genre names accepted as recommendation seeds.
func (s *SpotifyService) GenreSeeds(ctx context.Context) ([]string, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	seeds, err := api.GetAvailableGenreSeeds(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return seeds, nil
}

// Recommendations retrieves recommended tracks for the given seed genres.
// At most five seeds are sent; extras are dropped.
func (s *SpotifyService) Recommendations(ctx context.Context, genres []string, limit int) ([]models.Recommendation, error) {
	api, err := s.api()
	if err != nil {
		return nil, err
	}

	if len(genres) == 0 {
		return nil, shared.ErrNoSeedGenres
	}
	if len(genres) > maxSeedGenres {
		genres = genres[:maxSeedGenres]
	}

	recs, err := api.GetRecommendations(ctx, spotify.Seeds{Genres: genres}, nil, spotify.Limit(clampLimit(limit, maxRecLimit)))
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]models.Recommendation, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		rec := models.Recommendation{
			ID:   t.ID.String(),
			Name: t.Name,
		}
		if len(t.Artists) > 0 {
			rec.Artist = t.Artists[0].Name
			rec.ArtistID = t.Artists[0].ID.String()
		}
		out = append(out, rec)
	}

	if err := s.enrichRecommendations(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// enrichRecommendations backfills album and popularity through a full-track
// lookup. The recommendations endpoint returns simplified tracks without either.
func (s *SpotifyService) enrichRecommendations(ctx context.Context, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	index := make(map[string]int, len(recs))
	ids := make([]spotify.ID, 0, len(recs))
	for i, r := range recs {
		index[r.ID] = i
		ids = append(ids, spotify.ID(r.ID))
	}

	for start := 0; start < len(ids); start += maxTracksPerLookup {
		end := min(start+maxTracksPerLookup, len(ids))

		full, err := s.client.GetTracks(ctx, ids[start:end])
		if err != nil {
			return translateError(err)
		}

		for _, t := range full {
			if t == nil {
				continue
			}
			if i, ok := index[t.ID.String()]; ok {
				recs[i].Album = t.Album.Name
				recs[i].Popularity = int(t.Popularity)
			}
		}
	}
	return nil
}

// AnalysisTempo fetches the analyzed tempo for a single track. Diagnostics
// compare it against the features value for the same id.
func (s *SpotifyService) AnalysisTempo(ctx context.Context, id string) (float64, error) {
	api, err := s.api()
	if err != nil {
		return 0, err
	}

	analysis, err := api.GetAudioAnalysis(ctx, spotify.ID(id))
	if err != nil {
		return 0, translateError(err)
	}
	return analysis.Track.Tempo, nil
}

func topTrackFromFull(rank int, t spotify.FullTrack) models.TopTrack {
	track := models.TopTrack{
		Rank:       rank,
		ID:         t.ID.String(),
		Name:       t.Name,
		Album:      t.Album.Name,
		Popularity: int(t.Popularity),
		DurationMS: int(t.Duration),
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
		track.ArtistID = t.Artists[0].ID.String()
	}
	return track
}

func savedTrackFromItem(t spotify.SavedTrack) models.SavedTrack {
	track := models.SavedTrack{
		AddedAt:    t.AddedAt,
		ID:         t.ID.String(),
		Name:       t.Name,
		Album:      t.Album.Name,
		Popularity: int(t.Popularity),
		DurationMS: int(t.Duration),
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
		track.ArtistID = t.Artists[0].ID.String()
	}
	return track
}

// timerangeOption maps a config time range onto the client's request option.
// An empty string falls back to medium_term, matching the API default.
func timerangeOption(timeRange string) (spotify.RequestOption, error) {
	switch timeRange {
	case "short_term":
		return spotify.Timerange(spotify.ShortTermRange), nil
	case "", "medium_term":
		return spotify.Timerange(spotify.MediumTermRange), nil
	case "long_term":
		return spotify.Timerange(spotify.LongTermRange), nil
	default:
		return nil, fmt.Errorf("%w: time range %q", shared.ErrInvalidArgument, timeRange)
	}
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > max {
		return max
	}
	return limit
}

// translateError maps client errors onto the collector's taxonomy. Auth
// rejections wrap the fatal sentinels; everything else the provider signals
// becomes a *ProviderError that batch operations downgrade to a failed chunk.
// Context cancellation passes through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", shared.ErrTokenExpired, apiErr.Message)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", shared.ErrAuthFailed, apiErr.Message)
		default:
			return &ProviderError{StatusCode: apiErr.Status, Message: apiErr.Message}
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: token endpoint returned %s", shared.ErrAuthFailed, retrieveErr.Response.Status)
	}

	return &ProviderError{Message: err.Error()}
}
