package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/desertthunder/sdx/internal/tasks"
)

var _ tasks.RunCache = (*RunCacheAdapter)(nil)

// RunCacheAdapter implements tasks.RunCache over the run, track, and feature repositories.
//
// One adapter persists a finished collection run as a run row plus its cached
// track and feature rows. Duplicate (run_id, spotify_id) inserts surface as
// [shared.ErrAlreadyCached] and are skipped during a save, so retried saves
// never double-cache.
type RunCacheAdapter struct {
	runs     *RunRepository
	tracks   *CachedTrackRepository
	features *CachedFeatureRepository
}

// NewRunCacheAdapter creates a RunCacheAdapter over the given database connection
func NewRunCacheAdapter(db *sql.DB) *RunCacheAdapter {
	return &RunCacheAdapter{
		runs:     NewRunRepository(db),
		tracks:   NewCachedTrackRepository(db),
		features: NewCachedFeatureRepository(db),
	}
}

// SaveRun persists a finished collection run with its tracks and features.
//
// The run row keeps the collection's own run id. Already-cached rows are
// skipped; any other row failure aborts the save so a partial cache is visible
// to the caller.
func (a *RunCacheAdapter) SaveRun(ctx context.Context, result *tasks.CollectionResult) error {
	if result == nil {
		return fmt.Errorf("%w: nil result", shared.ErrInvalidInput)
	}

	run := models.NewCollectionRun(0, result.TimeRange, result.Limit)
	run.SetID(result.RunID)
	run.SetStatus(result.Status)
	run.SetTracksTotal(len(result.Tracks))
	run.SetFeaturesFetched(len(result.Features))
	run.SetFeaturesFailed(len(result.FailedFeatures))
	if !result.StartedAt.IsZero() {
		started := result.StartedAt
		run.SetStartedAt(&started)
	}
	if !result.CompletedAt.IsZero() {
		completed := result.CompletedAt
		run.SetCompletedAt(&completed)
	}

	if err := a.runs.Create(run); err != nil {
		return fmt.Errorf("failed to cache run: %w", err)
	}

	for _, track := range result.Tracks {
		if err := a.CacheTrack(result.RunID, track); err != nil && !isAlreadyCached(err) {
			return err
		}
	}

	for _, feature := range result.Features {
		if err := a.CacheFeature(result.RunID, feature); err != nil && !isAlreadyCached(err) {
			return err
		}
	}

	return nil
}

// CacheTrack caches one top-track row under a run.
// A duplicate (run, track) insert returns [shared.ErrAlreadyCached].
func (a *RunCacheAdapter) CacheTrack(runID string, track models.TopTrack) error {
	err := a.tracks.Create(models.NewCachedTrack(0, runID, track))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: track %s in run %s", shared.ErrAlreadyCached, track.ID, runID)
		}
		return fmt.Errorf("failed to cache track: %w", err)
	}

	return nil
}

// CacheFeature caches one audio-feature row under a run.
// A duplicate (run, track) insert returns [shared.ErrAlreadyCached].
func (a *RunCacheAdapter) CacheFeature(runID string, feature models.AudioFeature) error {
	err := a.features.Create(models.NewCachedFeature(0, runID, feature))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: feature %s in run %s", shared.ErrAlreadyCached, feature.ID, runID)
		}
		return fmt.Errorf("failed to cache feature: %w", err)
	}

	return nil
}

// ListRuns lists cached runs, most recent first.
func (a *RunCacheAdapter) ListRuns() ([]*models.CollectionRun, error) {
	return a.runs.List(map[string]any{})
}

// Run retrieves one cached run by id.
func (a *RunCacheAdapter) Run(id string) (*models.CollectionRun, error) {
	return a.runs.Get(id)
}

// RunTracks returns the top-track rows cached for a run, in rank order.
func (a *RunCacheAdapter) RunTracks(runID string) ([]models.TopTrack, error) {
	cached, err := a.tracks.List(map[string]any{"run_id": runID})
	if err != nil {
		return nil, err
	}

	tracks := make([]models.TopTrack, 0, len(cached))
	for _, c := range cached {
		tracks = append(tracks, c.Track())
	}
	return tracks, nil
}

// RunFeatures returns the audio-feature rows cached for a run.
func (a *RunCacheAdapter) RunFeatures(runID string) ([]models.AudioFeature, error) {
	cached, err := a.features.List(map[string]any{"run_id": runID})
	if err != nil {
		return nil, err
	}

	features := make([]models.AudioFeature, 0, len(cached))
	for _, c := range cached {
		features = append(features, c.Feature())
	}
	return features, nil
}

// ClearRun soft-deletes a run and every row cached under it, returning the
// number of track and feature rows removed.
func (a *RunCacheAdapter) ClearRun(runID string) (int, error) {
	if _, err := a.runs.Get(runID); err != nil {
		return 0, err
	}

	tracks, err := a.tracks.DeleteByRun(runID)
	if err != nil {
		return 0, err
	}

	features, err := a.features.DeleteByRun(runID)
	if err != nil {
		return tracks, err
	}

	if err := a.runs.Delete(runID); err != nil {
		return tracks + features, err
	}

	return tracks + features, nil
}

func isAlreadyCached(err error) bool {
	return err != nil && strings.Contains(err.Error(), shared.ErrAlreadyCached.Error())
}
