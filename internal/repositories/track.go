package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/shared"
)

// CachedTrackRepository implements models.Repository[*models.CachedTrack] for per-run track caching.
//
// Rows are unique per (run_id, spotify_id); the run-cache adapter maps that
// constraint onto [shared.ErrAlreadyCached].
type CachedTrackRepository struct {
	db *sql.DB
}

// NewCachedTrackRepository creates a new CachedTrackRepository with the given database connection
func NewCachedTrackRepository(db *sql.DB) *CachedTrackRepository {
	return &CachedTrackRepository{db: db}
}

// Create inserts a new [models.CachedTrack] into the database with generated ID and sequence
func (r *CachedTrackRepository) Create(track *models.CachedTrack) error {
	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	track.SetID(id)

	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	row := track.Track()
	query := `
		INSERT INTO tracks (id, sequence, run_id, spotify_id, name, artist, artist_id, album, popularity, duration_ms, rank, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		track.RunID(),
		row.ID,
		row.Name,
		row.Artist,
		row.ArtistID,
		row.Album,
		row.Popularity,
		row.DurationMS,
		row.Rank,
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a track by ID, excluding soft-deleted tracks
func (r *CachedTrackRepository) Get(id string) (*models.CachedTrack, error) {
	query := `
		SELECT id, sequence, run_id, spotify_id, name, artist, artist_id, album, popularity, duration_ms, rank, created_at, updated_at, deleted_at
		FROM tracks
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySpotifyID retrieves a track cached for a specific run by its Spotify id
func (r *CachedTrackRepository) GetBySpotifyID(runID, spotifyID string) (*models.CachedTrack, error) {
	query := `
		SELECT id, sequence, run_id, spotify_id, name, artist, artist_id, album, popularity, duration_ms, rank, created_at, updated_at, deleted_at
		FROM tracks
		WHERE run_id = ? AND spotify_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, runID, spotifyID))
}

// Update modifies an existing track in the database
func (r *CachedTrackRepository) Update(track *models.CachedTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	track.SetUpdatedAt(now)

	row := track.Track()
	query := `
		UPDATE tracks
		SET name = ?, artist = ?, artist_id = ?, album = ?, popularity = ?, duration_ms = ?, rank = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		row.Name,
		row.Artist,
		row.ArtistID,
		row.Album,
		row.Popularity,
		row.DurationMS,
		row.Rank,
		now,
		track.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("track not found or already deleted: %s", track.ID())
	}

	return nil
}

// Delete soft-deletes a track by ID
func (r *CachedTrackRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("track not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all tracks matching the given criteria, excluding soft-deleted
// tracks, in rank order.
func (r *CachedTrackRepository) List(criteria map[string]any) ([]*models.CachedTrack, error) {
	query := `
		SELECT id, sequence, run_id, spotify_id, name, artist, artist_id, album, popularity, duration_ms, rank, created_at, updated_at, deleted_at
		FROM tracks
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	query += " ORDER BY rank ASC, sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.CachedTrack
	for rows.Next() {
		track, err := scanCachedTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// DeleteByRun soft-deletes every track cached for a run.
func (r *CachedTrackRepository) DeleteByRun(runID string) (int, error) {
	result, err := r.db.Exec(`UPDATE tracks SET deleted_at = ? WHERE run_id = ? AND deleted_at IS NULL`, time.Now(), runID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete run tracks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

// scanOne scans a single [sql.Row] into a [models.CachedTrack]
func (r *CachedTrackRepository) scanOne(row *sql.Row) (*models.CachedTrack, error) {
	track, err := scanCachedTrack(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("track not found")
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

// scanCachedTrack scans a tracks row into a [models.CachedTrack]
func scanCachedTrack(row rowScanner) (*models.CachedTrack, error) {
	var (
		id         string
		sequence   int
		runID      string
		spotifyID  string
		name       string
		artist     string
		artistID   string
		album      string
		popularity int
		durationMS int
		rank       int
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &runID, &spotifyID, &name, &artist, &artistID, &album, &popularity, &durationMS, &rank, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	dto := models.TopTrack{
		Rank:       rank,
		ID:         spotifyID,
		Name:       name,
		Artist:     artist,
		ArtistID:   artistID,
		Album:      album,
		Popularity: popularity,
		DurationMS: durationMS,
	}

	track := models.NewCachedTrack(sequence, runID, dto)
	track.SetID(id)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		track.SetDeletedAt(&deletedAt.Time)
	}

	return track, nil
}
