package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/shared"
)

// CachedFeatureRepository implements models.Repository[*models.CachedFeature] for per-run feature caching.
type CachedFeatureRepository struct {
	db *sql.DB
}

// NewCachedFeatureRepository creates a new CachedFeatureRepository with the given database connection
func NewCachedFeatureRepository(db *sql.DB) *CachedFeatureRepository {
	return &CachedFeatureRepository{db: db}
}

// Create inserts a new [models.CachedFeature] into the database with generated ID and sequence
func (r *CachedFeatureRepository) Create(feature *models.CachedFeature) error {
	sequence, err := NextSequence(r.db, "features")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	feature.SetID(id)

	if err := feature.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	row := feature.Feature()
	query := `
		INSERT INTO features (id, sequence, run_id, spotify_id, danceability, energy, key, loudness, mode, speechiness, acousticness, instrumentalness, liveness, valence, tempo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		feature.RunID(),
		row.ID,
		row.Danceability,
		row.Energy,
		row.Key,
		row.Loudness,
		row.Mode,
		row.Speechiness,
		row.Acousticness,
		row.Instrumentalness,
		row.Liveness,
		row.Valence,
		row.Tempo,
		feature.CreatedAt(),
		feature.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feature: %w", err)
	}

	return nil
}

// Get retrieves a feature by ID, excluding soft-deleted features
func (r *CachedFeatureRepository) Get(id string) (*models.CachedFeature, error) {
	query := `
		SELECT id, sequence, run_id, spotify_id, danceability, energy, key, loudness, mode, speechiness, acousticness, instrumentalness, liveness, valence, tempo, created_at, updated_at, deleted_at
		FROM features
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySpotifyID retrieves a feature cached for a specific run by its track id
func (r *CachedFeatureRepository) GetBySpotifyID(runID, spotifyID string) (*models.CachedFeature, error) {
	query := `
		SELECT id, sequence, run_id, spotify_id, danceability, energy, key, loudness, mode, speechiness, acousticness, instrumentalness, liveness, valence, tempo, created_at, updated_at, deleted_at
		FROM features
		WHERE run_id = ? AND spotify_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, runID, spotifyID))
}

// Update modifies an existing feature in the database
func (r *CachedFeatureRepository) Update(feature *models.CachedFeature) error {
	if err := feature.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	feature.SetUpdatedAt(now)

	row := feature.Feature()
	query := `
		UPDATE features
		SET danceability = ?, energy = ?, key = ?, loudness = ?, mode = ?, speechiness = ?, acousticness = ?, instrumentalness = ?, liveness = ?, valence = ?, tempo = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		row.Danceability,
		row.Energy,
		row.Key,
		row.Loudness,
		row.Mode,
		row.Speechiness,
		row.Acousticness,
		row.Instrumentalness,
		row.Liveness,
		row.Valence,
		row.Tempo,
		now,
		feature.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update feature: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("feature not found or already deleted: %s", feature.ID())
	}

	return nil
}

// Delete soft-deletes a feature by ID
func (r *CachedFeatureRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE features
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete feature: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("feature not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all features matching the given criteria, excluding soft-deleted features
func (r *CachedFeatureRepository) List(criteria map[string]any) ([]*models.CachedFeature, error) {
	query := `
		SELECT id, sequence, run_id, spotify_id, danceability, energy, key, loudness, mode, speechiness, acousticness, instrumentalness, liveness, valence, tempo, created_at, updated_at, deleted_at
		FROM features
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer rows.Close()

	var features []*models.CachedFeature
	for rows.Next() {
		feature, err := scanCachedFeature(rows)
		if err != nil {
			return nil, err
		}
		features = append(features, feature)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return features, nil
}

// DeleteByRun soft-deletes every feature cached for a run.
func (r *CachedFeatureRepository) DeleteByRun(runID string) (int, error) {
	result, err := r.db.Exec(`UPDATE features SET deleted_at = ? WHERE run_id = ? AND deleted_at IS NULL`, time.Now(), runID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete run features: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

// scanOne scans a single [sql.Row] into a [models.CachedFeature]
func (r *CachedFeatureRepository) scanOne(row *sql.Row) (*models.CachedFeature, error) {
	feature, err := scanCachedFeature(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("feature not found")
	}
	if err != nil {
		return nil, err
	}
	return feature, nil
}

// scanCachedFeature scans a features row into a [models.CachedFeature]
func scanCachedFeature(row rowScanner) (*models.CachedFeature, error) {
	var (
		id        string
		sequence  int
		runID     string
		spotifyID string
		dto       models.AudioFeature
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &runID, &spotifyID,
		&dto.Danceability, &dto.Energy, &dto.Key, &dto.Loudness, &dto.Mode,
		&dto.Speechiness, &dto.Acousticness, &dto.Instrumentalness, &dto.Liveness,
		&dto.Valence, &dto.Tempo,
		&createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan feature: %w", err)
	}

	dto.ID = spotifyID

	feature := models.NewCachedFeature(sequence, runID, dto)
	feature.SetID(id)
	feature.SetCreatedAt(createdAt)
	feature.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		feature.SetDeletedAt(&deletedAt.Time)
	}

	return feature, nil
}
