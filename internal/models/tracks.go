package models

// Profile is the authenticated user's account metadata.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
}

// TopTrack is one row of a user's ranked top tracks. Rank starts at 1.
type TopTrack struct {
	Rank       int    `json:"rank"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	ArtistID   string `json:"artist_id"`
	Album      string `json:"album"`
	Popularity int    `json:"popularity"`
	DurationMS int    `json:"duration_ms"`
}

// TopArtist is one row of a user's ranked top artists.
type TopArtist struct {
	Rank       int      `json:"rank"`
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Followers  int      `json:"followers"`
}

// AudioFeature holds the per-track audio attributes produced by the features endpoint.
//
// Values are never constructed locally; float fields mirror the API's 32-bit precision.
type AudioFeature struct {
	ID               string  `json:"id"`
	Danceability     float32 `json:"danceability"`
	Energy           float32 `json:"energy"`
	Key              int     `json:"key"`
	Loudness         float32 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float32 `json:"speechiness"`
	Acousticness     float32 `json:"acousticness"`
	Instrumentalness float32 `json:"instrumentalness"`
	Liveness         float32 `json:"liveness"`
	Valence          float32 `json:"valence"`
	Tempo            float32 `json:"tempo"`
}

// TrackWithFeatures pairs a top track with its fetched audio features, joined on track id.
type TrackWithFeatures struct {
	Track   TopTrack     `json:"track"`
	Feature AudioFeature `json:"feature"`
}

// Recommendation is one recommended track derived from seed genres.
type Recommendation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	ArtistID   string `json:"artist_id"`
	Album      string `json:"album"`
	Popularity int    `json:"popularity"`
}

// SavedTrack is one row of the user's saved library.
type SavedTrack struct {
	AddedAt    string `json:"added_at"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	ArtistID   string `json:"artist_id"`
	Album      string `json:"album"`
	Popularity int    `json:"popularity"`
	DurationMS int    `json:"duration_ms"`
}
