package models

import (
	"fmt"
	"time"
)

// Run statuses for [CollectionRun].
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

var (
	_ Model = (*CollectionRun)(nil)
	_ Model = (*CachedTrack)(nil)
	_ Model = (*CachedFeature)(nil)
)

// CollectionRun tracks one end-to-end collection through its phases.
type CollectionRun struct {
	id              string
	sequence        int
	timeRange       string
	topLimit        int
	status          string
	tracksTotal     int
	featuresFetched int
	featuresFailed  int
	errorMessage    string
	startedAt       *time.Time
	completedAt     *time.Time
	createdAt       time.Time
	updatedAt       time.Time
	deletedAt       *time.Time
}

// NewCollectionRun creates a pending run for the given top-items window.
func NewCollectionRun(sequence int, timeRange string, topLimit int) *CollectionRun {
	now := time.Now()
	return &CollectionRun{
		sequence:  sequence,
		timeRange: timeRange,
		topLimit:  topLimit,
		status:    RunStatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *CollectionRun) ID() string              { return r.id }
func (r *CollectionRun) Sequence() int           { return r.sequence }
func (r *CollectionRun) TimeRange() string       { return r.timeRange }
func (r *CollectionRun) TopLimit() int           { return r.topLimit }
func (r *CollectionRun) Status() string          { return r.status }
func (r *CollectionRun) TracksTotal() int        { return r.tracksTotal }
func (r *CollectionRun) FeaturesFetched() int    { return r.featuresFetched }
func (r *CollectionRun) FeaturesFailed() int     { return r.featuresFailed }
func (r *CollectionRun) ErrorMessage() string    { return r.errorMessage }
func (r *CollectionRun) StartedAt() *time.Time   { return r.startedAt }
func (r *CollectionRun) CompletedAt() *time.Time { return r.completedAt }
func (r *CollectionRun) CreatedAt() time.Time    { return r.createdAt }
func (r *CollectionRun) UpdatedAt() time.Time    { return r.updatedAt }
func (r *CollectionRun) DeletedAt() *time.Time   { return r.deletedAt }

func (r *CollectionRun) SetID(id string)             { r.id = id }
func (r *CollectionRun) SetStatus(status string)     { r.status = status }
func (r *CollectionRun) SetTracksTotal(n int)        { r.tracksTotal = n }
func (r *CollectionRun) SetFeaturesFetched(n int)    { r.featuresFetched = n }
func (r *CollectionRun) SetFeaturesFailed(n int)     { r.featuresFailed = n }
func (r *CollectionRun) SetErrorMessage(msg string)  { r.errorMessage = msg }
func (r *CollectionRun) SetStartedAt(t *time.Time)   { r.startedAt = t }
func (r *CollectionRun) SetCompletedAt(t *time.Time) { r.completedAt = t }
func (r *CollectionRun) SetCreatedAt(t time.Time)    { r.createdAt = t }
func (r *CollectionRun) SetUpdatedAt(t time.Time)    { r.updatedAt = t }
func (r *CollectionRun) SetDeletedAt(t *time.Time)   { r.deletedAt = t }

// Validate checks run invariants before persistence.
func (r *CollectionRun) Validate() error {
	if !IsTimeRange(r.timeRange) {
		return fmt.Errorf("invalid time range: %s", r.timeRange)
	}
	if r.topLimit < 1 || r.topLimit > 50 {
		return fmt.Errorf("top limit must be 1..50, got %d", r.topLimit)
	}
	switch r.status {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed:
	default:
		return fmt.Errorf("invalid run status: %s", r.status)
	}
	return nil
}

// CachedTrack is a top-track row cached for one run.
type CachedTrack struct {
	id        string
	sequence  int
	runID     string
	track     TopTrack
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedTrack wraps a [TopTrack] for persistence under the given run.
func NewCachedTrack(sequence int, runID string, track TopTrack) *CachedTrack {
	now := time.Now()
	return &CachedTrack{
		sequence:  sequence,
		runID:     runID,
		track:     track,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *CachedTrack) ID() string            { return t.id }
func (t *CachedTrack) Sequence() int         { return t.sequence }
func (t *CachedTrack) RunID() string         { return t.runID }
func (t *CachedTrack) Track() TopTrack       { return t.track }
func (t *CachedTrack) SpotifyID() string     { return t.track.ID }
func (t *CachedTrack) CreatedAt() time.Time  { return t.createdAt }
func (t *CachedTrack) UpdatedAt() time.Time  { return t.updatedAt }
func (t *CachedTrack) DeletedAt() *time.Time { return t.deletedAt }

func (t *CachedTrack) SetID(id string)            { t.id = id }
func (t *CachedTrack) SetCreatedAt(ts time.Time)  { t.createdAt = ts }
func (t *CachedTrack) SetUpdatedAt(ts time.Time)  { t.updatedAt = ts }
func (t *CachedTrack) SetDeletedAt(ts *time.Time) { t.deletedAt = ts }

// Validate checks track invariants before persistence.
func (t *CachedTrack) Validate() error {
	if t.runID == "" {
		return fmt.Errorf("run id is required")
	}
	if t.track.ID == "" {
		return fmt.Errorf("track id is required")
	}
	if t.track.Name == "" {
		return fmt.Errorf("track name is required")
	}
	return nil
}

// CachedFeature is an audio-feature row cached for one run.
type CachedFeature struct {
	id        string
	sequence  int
	runID     string
	feature   AudioFeature
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedFeature wraps an [AudioFeature] for persistence under the given run.
func NewCachedFeature(sequence int, runID string, feature AudioFeature) *CachedFeature {
	now := time.Now()
	return &CachedFeature{
		sequence:  sequence,
		runID:     runID,
		feature:   feature,
		createdAt: now,
		updatedAt: now,
	}
}

func (f *CachedFeature) ID() string            { return f.id }
func (f *CachedFeature) Sequence() int         { return f.sequence }
func (f *CachedFeature) RunID() string         { return f.runID }
func (f *CachedFeature) Feature() AudioFeature { return f.feature }
func (f *CachedFeature) SpotifyID() string     { return f.feature.ID }
func (f *CachedFeature) CreatedAt() time.Time  { return f.createdAt }
func (f *CachedFeature) UpdatedAt() time.Time  { return f.updatedAt }
func (f *CachedFeature) DeletedAt() *time.Time { return f.deletedAt }

func (f *CachedFeature) SetID(id string)            { f.id = id }
func (f *CachedFeature) SetCreatedAt(ts time.Time)  { f.createdAt = ts }
func (f *CachedFeature) SetUpdatedAt(ts time.Time)  { f.updatedAt = ts }
func (f *CachedFeature) SetDeletedAt(ts *time.Time) { f.deletedAt = ts }

// Validate checks feature invariants before persistence.
func (f *CachedFeature) Validate() error {
	if f.runID == "" {
		return fmt.Errorf("run id is required")
	}
	if f.feature.ID == "" {
		return fmt.Errorf("feature track id is required")
	}
	return nil
}
