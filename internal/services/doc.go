// Package services defines the [Service] interface for music data providers and implements it for the Spotify Web API.
//
// # Service Interface
//
// The collector consumes providers through a common abstraction, keeping the
// collection engine and CLI layers provider-neutral.
//
// # Spotify Implementation
//
// [SpotifyService] wraps the zmb3/spotify client. Tokens come from the OAuth2
// authorization-code flow (interactive login through the local callback server)
// or from the client-credentials grant for commands that need no user scope.
//
// The [oauth2] transport underneath refreshes expired tokens automatically.
// Interactive tokens are cached on disk (default ~/.sdx/token.json) so later
// commands skip the browser round-trip.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token rejected, reauthorization needed
//   - [shared.ErrAuthFailed] : credential acquisition failed
//
// Every other provider rejection surfaces as a [*ProviderError] carrying the
// HTTP status and the API's one-line message. The batch feature fetcher
// downgrades those to failed-chunk entries instead of aborting a run.
//
// # API Mappings
//
// Provider responses convert to the flat rows the formatter writes:
//   - Top items: ranked [models.TopTrack] and [models.TopArtist], rank starting at 1
//   - Features: [models.AudioFeature] records with per-id nulls preserved as nil entries
//   - Recommendations: [models.Recommendation] rows enriched with album and popularity via a follow-up full-track lookup
package services
