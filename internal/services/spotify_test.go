package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// roundTripFunc adapts a function into an [http.RoundTripper]
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testCredentials() shared.SpotifyConfig {
	return shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
	}
}

// transportContext injects the transport into the oauth2 stack so every API
// and token call the service makes goes through it.
func transportContext(transport http.RoundTripper) context.Context {
	return context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: transport})
}

// authedService builds a SpotifyService whose HTTP stack is the given transport.
func authedService(t *testing.T, transport http.RoundTripper) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService(testCredentials())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := srv.Authenticate(transportContext(transport), map[string]string{"access_token": "test_access_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return srv
}

func noCallTransport(t *testing.T) roundTripFunc {
	return func(r *http.Request) (*http.Response, error) {
		t.Errorf("unexpected HTTP call to %s", r.URL)
		return jsonResponse(http.StatusInternalServerError, `{}`), nil
	}
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientSecret: "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !strings.Contains(srv.AuthURL("s"), "127.0.0.1%3A9090") {
				t.Errorf("expected default redirect URI in auth URL, got %s", srv.AuthURL("s"))
			}
		})
	})

	t.Run("AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.AuthURL("test_state")
		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "user-top-read"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q, got %s", want, authURL)
			}
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("With Access Token", func(t *testing.T) {
			srv := authedService(t, noCallTransport(t))

			if srv.Token() == nil || srv.Token().AccessToken != "test_access_token" {
				t.Errorf("expected access token to be installed, got %+v", srv.Token())
			}
		})

		t.Run("With Token File", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			if err := SaveToken(path, &oauth2.Token{AccessToken: "cached_token", RefreshToken: "refresh"}); err != nil {
				t.Fatalf("failed to save token: %v", err)
			}

			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			if err := srv.Authenticate(context.Background(), map[string]string{"token_file": path}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Token().AccessToken != "cached_token" {
				t.Errorf("expected cached token, got %s", srv.Token().AccessToken)
			}
		})

		t.Run("With Missing Token File", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			err = srv.Authenticate(context.Background(), map[string]string{"token_file": filepath.Join(t.TempDir(), "missing.json")})
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Client Credentials Fallback", func(t *testing.T) {
			var tokenRequests int
			transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
				if r.URL.Host != "accounts.spotify.com" {
					t.Errorf("expected token endpoint call, got %s", r.URL)
				}
				tokenRequests++
				return jsonResponse(http.StatusOK, `{"access_token":"app_token","token_type":"Bearer","expires_in":3600}`), nil
			})

			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			if err := srv.Authenticate(transportContext(transport), map[string]string{}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tokenRequests != 1 {
				t.Errorf("expected 1 token request, got %d", tokenRequests)
			}
			if srv.Token().AccessToken != "app_token" {
				t.Errorf("expected app token, got %s", srv.Token().AccessToken)
			}
		})

		t.Run("Client Credentials Failure", func(t *testing.T) {
			transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadRequest, `{"error":"invalid_client"}`), nil
			})

			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			err = srv.Authenticate(transportContext(transport), map[string]string{})
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})
	})

	t.Run("Unauthenticated Calls", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if _, err := srv.CurrentUser(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if _, err := srv.AudioFeatures(context.Background(), []string{"a"}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("CurrentUser", func(t *testing.T) {
		srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/v1/me" {
				t.Errorf("expected /v1/me, got %s", r.URL.Path)
			}
			return jsonResponse(http.StatusOK, `{"id":"user1","display_name":"Test User","email":"user@example.com","country":"US","product":"premium"}`), nil
		}))

		profile, err := srv.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if profile.ID != "user1" || profile.DisplayName != "Test User" {
			t.Errorf("unexpected profile: %+v", profile)
		}
		if profile.Country != "US" || profile.Product != "premium" {
			t.Errorf("unexpected profile details: %+v", profile)
		}
	})

	t.Run("TopTracks", func(t *testing.T) {
		t.Run("Maps Ranked Rows", func(t *testing.T) {
			srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				if r.URL.Path != "/v1/me/top/tracks" {
					t.Errorf("expected /v1/me/top/tracks, got %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("time_range"); got != "long_term" {
					t.Errorf("expected time_range long_term, got %s", got)
				}
				if got := r.URL.Query().Get("limit"); got != "10" {
					t.Errorf("expected limit 10, got %s", got)
				}
				return jsonResponse(http.StatusOK, `{"items":[
					{"id":"t1","name":"Song One","artists":[{"id":"a1","name":"Artist One"},{"id":"a2","name":"Artist Two"}],"album":{"id":"al1","name":"Album One"},"duration_ms":201000,"popularity":81},
					{"id":"t2","name":"Song Two","artists":[{"id":"a3","name":"Artist Three"}],"album":{"id":"al2","name":"Album Two"},"duration_ms":180000,"popularity":64}
				],"limit":10,"offset":0,"total":2}`), nil
			}))

			tracks, err := srv.TopTracks(context.Background(), "long_term", 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}
			want := models.TopTrack{
				Rank: 1, ID: "t1", Name: "Song One",
				Artist: "Artist One", ArtistID: "a1",
				Album: "Album One", Popularity: 81, DurationMS: 201000,
			}
			if tracks[0] != want {
				t.Errorf("expected %+v, got %+v", want, tracks[0])
			}
			if tracks[1].Rank != 2 {
				t.Errorf("expected rank 2, got %d", tracks[1].Rank)
			}
		})

		t.Run("Invalid Time Range", func(t *testing.T) {
			srv := authedService(t, noCallTransport(t))

			_, err := srv.TopTracks(context.Background(), "all_time", 10)
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("Limit Clamped", func(t *testing.T) {
			cases := []struct {
				name  string
				limit int
				want  string
			}{
				{"Above Maximum", 500, "50"},
				{"Zero Defaults", 0, "20"},
				{"Negative Defaults", -3, "20"},
			}

			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
						if got := r.URL.Query().Get("limit"); got != tc.want {
							t.Errorf("expected limit %s, got %s", tc.want, got)
						}
						return jsonResponse(http.StatusOK, `{"items":[]}`), nil
					}))

					if _, err := srv.TopTracks(context.Background(), "medium_term", tc.limit); err != nil {
						t.Fatalf("expected no error, got %v", err)
					}
				})
			}
		})
	})

	t.Run("TopArtists", func(t *testing.T) {
		srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/v1/me/top/artists" {
				t.Errorf("expected /v1/me/top/artists, got %s", r.URL.Path)
			}
			return jsonResponse(http.StatusOK, `{"items":[
				{"id":"ar1","name":"Artist One","genres":["indie rock","shoegaze"],"popularity":72,"followers":{"total":91500}}
			]}`), nil
		}))

		artists, err := srv.TopArtists(context.Background(), "short_term", 5)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(artists) != 1 {
			t.Fatalf("expected 1 artist, got %d", len(artists))
		}
		a := artists[0]
		if a.Rank != 1 || a.ID != "ar1" || a.Name != "Artist One" {
			t.Errorf("unexpected artist: %+v", a)
		}
		if len(a.Genres) != 2 || a.Genres[0] != "indie rock" {
			t.Errorf("unexpected genres: %v", a.Genres)
		}
		if a.Popularity != 72 || a.Followers != 91500 {
			t.Errorf("unexpected popularity/followers: %+v", a)
		}
	})

	t.Run("SavedTracks", func(t *testing.T) {
		pageOne := `{"items":[
			{"added_at":"2024-03-01T09:00:00Z","track":{"id":"s1","name":"Saved One","artists":[{"id":"a1","name":"Artist One"}],"album":{"name":"Album One"},"duration_ms":200000,"popularity":40}},
			{"added_at":"2024-02-01T09:00:00Z","track":{"id":"s2","name":"Saved Two","artists":[{"id":"a2","name":"Artist Two"}],"album":{"name":"Album Two"},"duration_ms":210000,"popularity":50}}
		],"limit":2,"offset":0,"total":3,"next":"https://api.spotify.com/v1/me/tracks?offset=2&limit=2"}`
		pageTwo := `{"items":[
			{"added_at":"2024-01-01T09:00:00Z","track":{"id":"s3","name":"Saved Three","artists":[{"id":"a3","name":"Artist Three"}],"album":{"name":"Album Three"},"duration_ms":190000,"popularity":60}}
		],"limit":2,"offset":2,"total":3,"next":""}`

		t.Run("Follows Pagination", func(t *testing.T) {
			var calls int
			srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				calls++
				if r.URL.Query().Get("offset") == "2" {
					return jsonResponse(http.StatusOK, pageTwo), nil
				}
				return jsonResponse(http.StatusOK, pageOne), nil
			}))

			saved, err := srv.SavedTracks(context.Background(), 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if calls != 2 {
				t.Errorf("expected 2 page fetches, got %d", calls)
			}
			if len(saved) != 3 {
				t.Fatalf("expected 3 saved tracks, got %d", len(saved))
			}
			if saved[0].AddedAt != "2024-03-01T09:00:00Z" || saved[0].ID != "s1" {
				t.Errorf("unexpected first row: %+v", saved[0])
			}
			if saved[2].ID != "s3" {
				t.Errorf("expected s3 last, got %s", saved[2].ID)
			}
		})

		t.Run("Honors Limit", func(t *testing.T) {
			var calls int
			srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				calls++
				return jsonResponse(http.StatusOK, pageOne), nil
			}))

			saved, err := srv.SavedTracks(context.Background(), 1)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(saved) != 1 {
				t.Errorf("expected 1 saved track, got %d", len(saved))
			}
			if calls != 1 {
				t.Errorf("expected a single page fetch, got %d", calls)
			}
		})
	})

	t.Run("AudioFeatures", func(t *testing.T) {
		t.Run("Preserves Positional Nulls", func(t *testing.T) {
			srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				if r.URL.Path != "/v1/audio-features" {
					t.Errorf("expected /v1/audio-features, got %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("ids"); got != "f1,gone,f3" {
					t.Errorf("expected ids f1,gone,f3, got %s", got)
				}
				return jsonResponse(http.StatusOK, `{"audio_features":[
					{"id":"f1","danceability":0.52,"energy":0.81,"key":7,"loudness":-5.2,"mode":1,"speechiness":0.04,"acousticness":0.12,"instrumentalness":0.0,"liveness":0.33,"valence":0.76,"tempo":118.02},
					null,
					{"id":"f3","danceability":0.61,"energy":0.42,"key":2,"loudness":-9.1,"mode":0,"speechiness":0.03,"acousticness":0.56,"instrumentalness":0.85,"liveness":0.1,"valence":0.2,"tempo":92.5}
				]}`), nil
			}))

			records, err := srv.AudioFeatures(context.Background(), []string{"f1", "gone", "f3"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(records) != 3 {
				t.Fatalf("expected positional slice of 3, got %d", len(records))
			}
			if records[1] != nil {
				t.Errorf("expected nil for unknown id, got %+v", records[1])
			}
			if records[0] == nil || records[0].ID != "f1" {
				t.Fatalf("unexpected first record: %+v", records[0])
			}
			if records[0].Key != 7 || records[0].Mode != 1 {
				t.Errorf("unexpected key/mode: %+v", records[0])
			}
			if records[0].Tempo != 118.02 {
				t.Errorf("expected tempo 118.02, got %v", records[0].Tempo)
			}
			if records[2] == nil || records[2].Instrumentalness != 0.85 {
				t.Errorf("unexpected third record: %+v", records[2])
			}
		})

		t.Run("Empty Input", func(t *testing.T) {
			srv := authedService(t, noCallTransport(t))

			records, err := srv.AudioFeatures(context.Background(), nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if records != nil {
				t.Errorf("expected nil records, got %v", records)
			}
		})

		t.Run("Too Many IDs", func(t *testing.T) {
			srv := authedService(t, noCallTransport(t))

			ids := make([]string, 101)
			for i := range ids {
				ids[i] = "x"
			}

			_, err := srv.AudioFeatures(context.Background(), ids)
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("Provider Rejection", func(t *testing.T) {
			srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{"error":{"status":429,"message":"API rate limit exceeded"}}`), nil
			}))

			_, err := srv.AudioFeatures(context.Background(), []string{"f1"})

			var provErr *ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if provErr.StatusCode != http.StatusTooManyRequests {
				t.Errorf("expected status 429, got %d", provErr.StatusCode)
			}
			if provErr.Message == "" {
				t.Error("expected a one-line reason")
			}
		})

		t.Run("Expired Token", func(t *testing.T) {
			srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusUnauthorized, `{"error":{"status":401,"message":"The access token expired"}}`), nil
			}))

			_, err := srv.AudioFeatures(context.Background(), []string{"f1"})
			if !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrTokenExpired, got %v", err)
			}
		})
	})

	t.Run("GenreSeeds", func(t *testing.T) {
		srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if !strings.HasSuffix(r.URL.Path, "available-genre-seeds") {
				t.Errorf("expected available-genre-seeds, got %s", r.URL.Path)
			}
			return jsonResponse(http.StatusOK, `{"genres":["acoustic","indie","rock"]}`), nil
		}))

		seeds, err := srv.GenreSeeds(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(seeds) != 3 || seeds[1] != "indie" {
			t.Errorf("unexpected seeds: %v", seeds)
		}
	})

	t.Run("Recommendations", func(t *testing.T) {
		recommendationsBody := `{"tracks":[
			{"id":"r1","name":"Rec One","artists":[{"id":"ra1","name":"Rec Artist"}]},
			{"id":"r2","name":"Rec Two","artists":[{"id":"ra2","name":"Other Artist"}]}
		]}`
		tracksBody := `{"tracks":[
			{"id":"r1","name":"Rec One","artists":[{"id":"ra1","name":"Rec Artist"}],"album":{"name":"Rec Album"},"popularity":55},
			{"id":"r2","name":"Rec Two","artists":[{"id":"ra2","name":"Other Artist"}],"album":{"name":"Other Album"},"popularity":31}
		]}`

		t.Run("Enriches Album And Popularity", func(t *testing.T) {
			srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				switch r.URL.Path {
				case "/v1/recommendations":
					if got := r.URL.Query().Get("seed_genres"); got != "rock,indie" {
						t.Errorf("expected seed_genres rock,indie, got %s", got)
					}
					return jsonResponse(http.StatusOK, recommendationsBody), nil
				case "/v1/tracks":
					if got := r.URL.Query().Get("ids"); got != "r1,r2" {
						t.Errorf("expected ids r1,r2, got %s", got)
					}
					return jsonResponse(http.StatusOK, tracksBody), nil
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
					return jsonResponse(http.StatusNotFound, `{}`), nil
				}
			}))

			recs, err := srv.Recommendations(context.Background(), []string{"rock", "indie"}, 20)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(recs) != 2 {
				t.Fatalf("expected 2 recommendations, got %d", len(recs))
			}
			want := models.Recommendation{ID: "r1", Name: "Rec One", Artist: "Rec Artist", ArtistID: "ra1", Album: "Rec Album", Popularity: 55}
			if recs[0] != want {
				t.Errorf("expected %+v, got %+v", want, recs[0])
			}
			if recs[1].Popularity != 31 {
				t.Errorf("expected enriched popularity 31, got %d", recs[1].Popularity)
			}
		})

		t.Run("No Seeds", func(t *testing.T) {
			srv := authedService(t, noCallTransport(t))

			_, err := srv.Recommendations(context.Background(), nil, 20)
			if !errors.Is(err, shared.ErrNoSeedGenres) {
				t.Errorf("expected ErrNoSeedGenres, got %v", err)
			}
		})

		t.Run("Caps Seeds At Five", func(t *testing.T) {
			srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				if r.URL.Path == "/v1/recommendations" {
					if got := r.URL.Query().Get("seed_genres"); got != "g1,g2,g3,g4,g5" {
						t.Errorf("expected five seeds, got %s", got)
					}
					return jsonResponse(http.StatusOK, `{"tracks":[]}`), nil
				}
				t.Errorf("unexpected path %s", r.URL.Path)
				return jsonResponse(http.StatusNotFound, `{}`), nil
			}))

			if _, err := srv.Recommendations(context.Background(), []string{"g1", "g2", "g3", "g4", "g5", "g6"}, 10); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})

	t.Run("AnalysisTempo", func(t *testing.T) {
		srv := authedService(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/v1/audio-analysis/t1" {
				t.Errorf("expected /v1/audio-analysis/t1, got %s", r.URL.Path)
			}
			return jsonResponse(http.StatusOK, `{"track":{"tempo":128.3}}`), nil
		}))

		tempo, err := srv.AnalysisTempo(context.Background(), "t1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tempo != 128.3 {
			t.Errorf("expected tempo 128.3, got %v", tempo)
		}
	})

	t.Run("Service Interface", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ Service = srv
	})
}

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want func(error) bool
	}{
		{"Nil Passes Through", nil, func(err error) bool { return err == nil }},
		{"Unauthorized Is Fatal", spotify.Error{Status: http.StatusUnauthorized, Message: "expired"}, func(err error) bool {
			return errors.Is(err, shared.ErrTokenExpired)
		}},
		{"Forbidden Is Fatal", spotify.Error{Status: http.StatusForbidden, Message: "denied"}, func(err error) bool {
			return errors.Is(err, shared.ErrAuthFailed)
		}},
		{"Rate Limit Is Provider Error", spotify.Error{Status: http.StatusTooManyRequests, Message: "slow down"}, func(err error) bool {
			var provErr *ProviderError
			return errors.As(err, &provErr) && provErr.StatusCode == http.StatusTooManyRequests
		}},
		{"Cancellation Passes Through", context.Canceled, func(err error) bool {
			return errors.Is(err, context.Canceled)
		}},
		{"Transport Failure Is Provider Error", errors.New("connection refused"), func(err error) bool {
			var provErr *ProviderError
			return errors.As(err, &provErr) && provErr.StatusCode == 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := translateError(tc.in); !tc.want(got) {
				t.Errorf("unexpected translation: %v", got)
			}
		})
	}
}

func TestProviderError(t *testing.T) {
	t.Run("With Status", func(t *testing.T) {
		err := &ProviderError{StatusCode: 502, Message: "bad gateway"}
		if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "bad gateway") {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("Without Status", func(t *testing.T) {
		err := &ProviderError{Message: "connection reset"}
		if strings.Contains(err.Error(), "status") {
			t.Errorf("expected no status segment, got %s", err.Error())
		}
	})
}
