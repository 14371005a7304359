// package formatter renders collected listening data as CSV and JSON files
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/shared"
)

// Output filenames written under the configured data directory.
const (
	TopTracksFilename       = "top_tracks.csv"
	TopArtistsFilename      = "top_artists.csv"
	MergedFilename          = "tracks_with_features.csv"
	RecommendationsFilename = "recommendations.csv"
	SavedTracksFilename     = "saved_tracks.csv"
)

// ExportTopTracksCSV converts ranked top tracks to CSV with columns:
// rank, id, name, artist, artist_id, album, popularity, duration_ms
func ExportTopTracksCSV(tracks []models.TopTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"rank", "id", "name", "artist", "artist_id", "album", "popularity", "duration_ms"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		if err := writer.Write(topTrackRecord(track)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportTopArtistsCSV converts ranked top artists to CSV with columns:
// rank, id, name, genres, popularity, followers
//
// Genre lists are joined with ";" so the field stays a single CSV column.
func ExportTopArtistsCSV(artists []models.TopArtist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"rank", "id", "name", "genres", "popularity", "followers"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, artist := range artists {
		record := []string{
			strconv.Itoa(artist.Rank),
			artist.ID,
			artist.Name,
			strings.Join(artist.Genres, ";"),
			strconv.Itoa(artist.Popularity),
			strconv.Itoa(artist.Followers),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportMergedCSV converts track-with-feature rows to CSV. Columns are the
// top-track columns followed by the audio-feature columns; the feature id is
// omitted since the merge already joined on it.
func ExportMergedCSV(rows []models.TrackWithFeatures) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{
		"rank", "id", "name", "artist", "artist_id", "album", "popularity", "duration_ms",
		"danceability", "energy", "key", "loudness", "mode", "speechiness",
		"acousticness", "instrumentalness", "liveness", "valence", "tempo",
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := append(topTrackRecord(row.Track),
			formatFloat(row.Feature.Danceability),
			formatFloat(row.Feature.Energy),
			strconv.Itoa(row.Feature.Key),
			formatFloat(row.Feature.Loudness),
			strconv.Itoa(row.Feature.Mode),
			formatFloat(row.Feature.Speechiness),
			formatFloat(row.Feature.Acousticness),
			formatFloat(row.Feature.Instrumentalness),
			formatFloat(row.Feature.Liveness),
			formatFloat(row.Feature.Valence),
			formatFloat(row.Feature.Tempo),
		)
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportRecommendationsCSV converts recommended tracks to CSV with columns:
// id, name, artist, artist_id, album, popularity
func ExportRecommendationsCSV(recs []models.Recommendation) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"id", "name", "artist", "artist_id", "album", "popularity"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range recs {
		record := []string{
			rec.ID,
			rec.Name,
			rec.Artist,
			rec.ArtistID,
			rec.Album,
			strconv.Itoa(rec.Popularity),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportSavedTracksCSV converts library rows to CSV with columns:
// added_at, id, name, artist, artist_id, album, popularity, duration_ms
func ExportSavedTracksCSV(saved []models.SavedTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"added_at", "id", "name", "artist", "artist_id", "album", "popularity", "duration_ms"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range saved {
		record := []string{
			track.AddedAt,
			track.ID,
			track.Name,
			track.Artist,
			track.ArtistID,
			track.Album,
			strconv.Itoa(track.Popularity),
			strconv.Itoa(track.DurationMS),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToJSON generates an indented JSON representation of any export payload
func ToJSON(v any) ([]byte, error) {
	return shared.MarshalJSON(v, true)
}

// WriteTopTracksCSV writes top tracks to {dir}/top_tracks.csv and returns the path.
func WriteTopTracksCSV(tracks []models.TopTrack, dir string) (string, error) {
	data, err := ExportTopTracksCSV(tracks)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}
	return writeOutput(dir, TopTracksFilename, data)
}

// WriteTopArtistsCSV writes top artists to {dir}/top_artists.csv and returns the path.
func WriteTopArtistsCSV(artists []models.TopArtist, dir string) (string, error) {
	data, err := ExportTopArtistsCSV(artists)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}
	return writeOutput(dir, TopArtistsFilename, data)
}

// WriteMergedCSV writes merged track-and-feature rows to
// {dir}/tracks_with_features.csv and returns the path.
func WriteMergedCSV(rows []models.TrackWithFeatures, dir string) (string, error) {
	data, err := ExportMergedCSV(rows)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}
	return writeOutput(dir, MergedFilename, data)
}

// WriteRecommendationsCSV writes recommendations to {dir}/recommendations.csv
// and returns the path.
func WriteRecommendationsCSV(recs []models.Recommendation, dir string) (string, error) {
	data, err := ExportRecommendationsCSV(recs)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}
	return writeOutput(dir, RecommendationsFilename, data)
}

// WriteSavedTracksCSV writes library rows to {dir}/saved_tracks.csv and
// returns the path.
func WriteSavedTracksCSV(saved []models.SavedTrack, dir string) (string, error) {
	data, err := ExportSavedTracksCSV(saved)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}
	return writeOutput(dir, SavedTracksFilename, data)
}

// topTrackRecord renders the shared track columns used by the top-tracks and
// merged exports.
func topTrackRecord(track models.TopTrack) []string {
	return []string{
		strconv.Itoa(track.Rank),
		track.ID,
		track.Name,
		track.Artist,
		track.ArtistID,
		track.Album,
		strconv.Itoa(track.Popularity),
		strconv.Itoa(track.DurationMS),
	}
}

// formatFloat renders a feature value with the fewest digits that round-trip
// its 32-bit precision, matching how the API serializes them.
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

// writeOutput creates dir if needed and writes name under it with mode 0644.
func writeOutput(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "data"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}
