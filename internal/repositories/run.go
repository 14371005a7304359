package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/shared"
)

// RunRepository implements models.Repository[*models.CollectionRun] for run history.
//
// Handles collection-run CRUD with soft delete support; runs are listed most
// recent first so the cache and TUI surface the latest collection on top.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated sequence.
//
// A run id already set on the model is kept, so the in-memory run id from a
// collection pass and the cached row stay the same; otherwise one is generated.
func (r *RunRepository) Create(run *models.CollectionRun) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, time_range, top_limit, status, tracks_total, features_fetched, features_failed, error_message, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(),
		sequence,
		run.TimeRange(),
		run.TopLimit(),
		run.Status(),
		run.TracksTotal(),
		run.FeaturesFetched(),
		run.FeaturesFailed(),
		run.ErrorMessage(),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.CollectionRun, error) {
	query := `
		SELECT id, sequence, time_range, top_limit, status, tracks_total, features_fetched, features_failed, error_message, started_at, completed_at, created_at, updated_at, deleted_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.CollectionRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET status = ?, tracks_total = ?, features_fetched = ?, features_failed = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Status(),
		run.TracksTotal(),
		run.FeaturesFetched(),
		run.FeaturesFailed(),
		run.ErrorMessage(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List retrieves all runs matching the given criteria, excluding soft-deleted
// runs, most recent first.
func (r *RunRepository) List(criteria map[string]any) ([]*models.CollectionRun, error) {
	query := `
		SELECT id, sequence, time_range, top_limit, status, tracks_total, features_fetched, features_failed, error_message, started_at, completed_at, created_at, updated_at, deleted_at
		FROM runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if timeRange, ok := criteria["time_range"].(string); ok && timeRange != "" {
		query += " AND time_range = ?"
		args = append(args, timeRange)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.CollectionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanOne scans a single row into a [models.CollectionRun]
func (r *RunRepository) scanOne(row *sql.Row) (*models.CollectionRun, error) {
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// rowScanner abstracts sql.Row and sql.Rows so one scan routine serves both.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun scans a runs row into a [models.CollectionRun]
func scanRun(row rowScanner) (*models.CollectionRun, error) {
	var (
		id              string
		sequence        int
		timeRange       string
		topLimit        int
		status          string
		tracksTotal     int
		featuresFetched int
		featuresFailed  int
		errorMessage    sql.NullString
		startedAt       sql.NullTime
		completedAt     sql.NullTime
		createdAt       time.Time
		updatedAt       time.Time
		deletedAt       sql.NullTime
	)

	err := row.Scan(&id, &sequence, &timeRange, &topLimit, &status, &tracksTotal, &featuresFetched, &featuresFailed, &errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewCollectionRun(sequence, timeRange, topLimit)
	run.SetID(id)
	run.SetStatus(status)
	run.SetTracksTotal(tracksTotal)
	run.SetFeaturesFetched(featuresFetched)
	run.SetFeaturesFailed(featuresFailed)
	if errorMessage.Valid {
		run.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
