// package tasks implements listening-data collection runs against music services.
//
// The core abstraction is CollectEngine, which orchestrates top-item fetches, chunked
// audio-feature retrieval, and seed-derived recommendations. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdx/internal/formatter"
	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/services"
	"github.com/desertthunder/sdx/internal/shared"
	"golang.org/x/time/rate"
)

// Run status values recorded on collection results and cached runs.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// collectSteps is the number of phases a full collection run walks through.
const collectSteps = 8

// CollectorOpts contains configuration for a collection run.
type CollectorOpts struct {
	TimeRange string        // Listening window: short_term, medium_term, long_term (default: medium_term)
	Limit     int           // Top-item count, capped at 50 (default: 50)
	ChunkSize int           // Audio-feature ids per request (default: 20)
	Delay     time.Duration // Pause between feature chunks (default: none)
	SeedCap   int           // Max seed genres for recommendations, capped at 5
	RecLimit  int           // Recommendation count, capped at 100 (default: 100)
	OutputDir string        // CSV destination directory (default: data)
	Limiter   *rate.Limiter // Optional shared limiter for pacing across runs
}

// CollectionResult contains all data from a full collection run.
type CollectionResult struct {
	RunID           string                     // Unique id for this run
	TimeRange       string                     // Listening window the run covered
	Limit           int                        // Top-item count requested
	Status          string                     // running, completed, or failed
	StartedAt       time.Time                  // When the run began
	CompletedAt     time.Time                  // When the run reached a terminal status
	Tracks          []models.TopTrack          // Ranked top tracks
	Artists         []models.TopArtist         // Ranked top artists
	Features        []models.AudioFeature      // Audio features that came back
	Merged          []models.TrackWithFeatures // Tracks joined with their features on id
	Recommendations []models.Recommendation    // Seed-derived recommendations
	SeedGenres      []string                   // Genres used to seed recommendations
	FailedFeatures  map[string]string          // Track ids whose feature chunk failed, with reasons
	FeatureChunks   int                        // Provider calls the feature fetch made
	Files           []string                   // Paths of CSV files written
}

// LibraryResult contains the user's saved tracks and the file they were written to.
type LibraryResult struct {
	Tracks []models.SavedTrack
	File   string
}

// outputOperation pairs a CSV filename with the writer that produces it.
type outputOperation struct {
	name  string
	rows  int
	write func(dir string) (string, error)
}

// CollectEngine defines operations for collecting a user's listening data.
type CollectEngine interface {
	// Run performs a full collection pass by fetching top items, audio features, and seed-derived recommendations, then writing CSV output.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*CollectionResult, error)

	// Library exports the user's saved tracks to CSV.
	Library(ctx context.Context, progress chan<- ProgressUpdate, limit int) (*LibraryResult, error)
}

// RunCache persists finished collection runs.
// Implementations are optional; cache failures are logged, never returned.
type RunCache interface {
	SaveRun(ctx context.Context, result *CollectionResult) error
}

// Collector implements CollectEngine against a single music service.
// Contains dependencies on the catalog service and an optional run cache.
type Collector struct {
	service services.Service
	cache   RunCache
	logger  *log.Logger
	opts    CollectorOpts
}

// NewCollector creates a Collector with the provided service, cache, and options.
// Out-of-range option values are clamped to their defaults.
func NewCollector(service services.Service, cache RunCache, logger *log.Logger, opts CollectorOpts) *Collector {
	if opts.TimeRange == "" {
		opts.TimeRange = "medium_term"
	}
	if opts.Limit <= 0 || opts.Limit > 50 {
		opts.Limit = 50
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.SeedCap <= 0 || opts.SeedCap > 5 {
		opts.SeedCap = 5
	}
	if opts.RecLimit <= 0 || opts.RecLimit > 100 {
		opts.RecLimit = 100
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "data"
	}
	if logger == nil {
		logger = shared.NewLogger(os.Stderr)
	}

	return &Collector{
		service: service,
		cache:   cache,
		logger:  logger,
		opts:    opts,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full collection pass for the configured time range.
//
// Top-item failures abort the run. Feature chunk failures are recorded and the
// run continues; seed and recommendation failures skip those phases. The run is
// cached on both completion and failure so the history stays inspectable.
func (c *Collector) Run(ctx context.Context, progress chan<- ProgressUpdate) (*CollectionResult, error) {
	if c.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}
	if !models.IsTimeRange(c.opts.TimeRange) {
		return nil, fmt.Errorf("%w: invalid time range %q (want one of %s)",
			shared.ErrInvalidArgument, c.opts.TimeRange, strings.Join(models.TimeRanges, ", "))
	}

	result := &CollectionResult{
		RunID:          shared.GenerateID(),
		TimeRange:      c.opts.TimeRange,
		Limit:          c.opts.Limit,
		Status:         RunStatusRunning,
		StartedAt:      time.Now().UTC(),
		FailedFeatures: map[string]string{},
	}

	sendProgress(progress, fetchTopTracksUpdate(1, collectSteps, c.opts.TimeRange))
	tracks, err := c.service.TopTracks(ctx, c.opts.TimeRange, c.opts.Limit)
	if err != nil {
		return c.fail(ctx, result, progress, fmt.Errorf("fetching top tracks: %w", err))
	}
	result.Tracks = tracks

	sendProgress(progress, fetchTopArtistsUpdate(2, collectSteps, c.opts.TimeRange))
	artists, err := c.service.TopArtists(ctx, c.opts.TimeRange, c.opts.Limit)
	if err != nil {
		return c.fail(ctx, result, progress, fmt.Errorf("fetching top artists: %w", err))
	}
	result.Artists = artists

	fetcher := NewFeatureFetcher(c.service, c.opts.ChunkSize, c.opts.Delay)
	if c.opts.Limiter != nil {
		fetcher.UseLimiter(c.opts.Limiter)
	}

	batch, err := fetcher.Fetch(ctx, trackIDs(result.Tracks), progress)
	result.Features = batch.Features
	result.FailedFeatures = batch.Failed
	result.FeatureChunks = batch.Chunks
	if err != nil {
		return c.fail(ctx, result, progress, fmt.Errorf("fetching audio features: %w", err))
	}

	sendProgress(progress, mergeUpdate(4, collectSteps))
	result.Merged = mergeFeatures(result.Tracks, result.Features)

	sendProgress(progress, deriveSeedsUpdate(5, collectSteps))
	available, err := c.service.GenreSeeds(ctx)
	if err != nil {
		if isFatal(err) {
			return c.fail(ctx, result, progress, fmt.Errorf("fetching genre seeds: %w", err))
		}
		sendProgress(progress, seedsFailedUpdate(5, collectSteps, err))
	}
	result.SeedGenres = deriveSeeds(result.Artists, available, c.opts.SeedCap)

	if len(result.SeedGenres) == 0 {
		sendProgress(progress, skipRecommendationsUpdate(6, collectSteps))
	} else {
		sendProgress(progress, seedsDerivedUpdate(5, collectSteps, result.SeedGenres))
		sendProgress(progress, fetchRecommendationsUpdate(6, collectSteps, len(result.SeedGenres)))

		recs, err := c.service.Recommendations(ctx, result.SeedGenres, c.opts.RecLimit)
		if err != nil {
			if isFatal(err) {
				return c.fail(ctx, result, progress, fmt.Errorf("fetching recommendations: %w", err))
			}
			sendProgress(progress, recommendationsFailedUpdate(6, collectSteps, err))
		} else {
			result.Recommendations = recs
		}
	}

	if err := c.writeOutput(result, progress); err != nil {
		return c.fail(ctx, result, progress, err)
	}

	result.Status = RunStatusCompleted
	result.CompletedAt = time.Now().UTC()
	c.cacheRun(ctx, result, progress)
	sendProgress(progress, runCompletedUpdate(collectSteps, collectSteps, result))
	return result, nil
}

// Library exports the user's saved tracks to CSV.
func (c *Collector) Library(ctx context.Context, progress chan<- ProgressUpdate, limit int) (*LibraryResult, error) {
	if c.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, fetchLibraryUpdate(1, 2))
	saved, err := c.service.SavedTracks(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching saved tracks: %w", err)
	}

	result := &LibraryResult{Tracks: saved}

	sendProgress(progress, writeOutputUpdate(2, 2, c.opts.OutputDir))
	path, err := formatter.WriteSavedTracksCSV(saved, c.opts.OutputDir)
	if err != nil {
		return result, fmt.Errorf("writing %s: %w", formatter.SavedTracksFilename, err)
	}
	result.File = path

	sendProgress(progress, fileWrittenUpdate(2, 2, formatter.SavedTracksFilename, len(saved)))
	return result, nil
}

// writeOutput writes the run's CSV files and records their paths on result.
//
// The merged file is only written when at least one track has features, and
// the recommendations file only when seed genres survived derivation, matching
// what downstream analysis expects to find.
func (c *Collector) writeOutput(result *CollectionResult, progress chan<- ProgressUpdate) error {
	sendProgress(progress, writeOutputUpdate(7, collectSteps, c.opts.OutputDir))

	outputs := []outputOperation{
		{name: formatter.TopTracksFilename, rows: len(result.Tracks), write: func(dir string) (string, error) {
			return formatter.WriteTopTracksCSV(result.Tracks, dir)
		}},
		{name: formatter.TopArtistsFilename, rows: len(result.Artists), write: func(dir string) (string, error) {
			return formatter.WriteTopArtistsCSV(result.Artists, dir)
		}},
	}

	if len(result.Merged) > 0 {
		outputs = append(outputs, outputOperation{name: formatter.MergedFilename, rows: len(result.Merged), write: func(dir string) (string, error) {
			return formatter.WriteMergedCSV(result.Merged, dir)
		}})
	}

	if len(result.SeedGenres) > 0 {
		outputs = append(outputs, outputOperation{name: formatter.RecommendationsFilename, rows: len(result.Recommendations), write: func(dir string) (string, error) {
			return formatter.WriteRecommendationsCSV(result.Recommendations, dir)
		}})
	}

	for _, op := range outputs {
		path, err := op.write(c.opts.OutputDir)
		if err != nil {
			return fmt.Errorf("writing %s: %w", op.name, err)
		}

		result.Files = append(result.Files, path)
		sendProgress(progress, fileWrittenUpdate(7, collectSteps, op.name, op.rows))
	}

	return nil
}

// cacheRun saves the run best-effort. Failures are logged and swallowed so a
// dead cache never takes a finished run down with it.
func (c *Collector) cacheRun(ctx context.Context, result *CollectionResult, progress chan<- ProgressUpdate) {
	if c.cache == nil {
		return
	}

	sendProgress(progress, cacheRunUpdate(collectSteps, collectSteps))
	if err := c.cache.SaveRun(ctx, result); err != nil {
		c.logger.Warn("failed to cache run", "run_id", result.RunID, "error", err)
	}
}

// fail marks the run failed, caches what was collected, and returns the
// partial result alongside err.
func (c *Collector) fail(ctx context.Context, result *CollectionResult, progress chan<- ProgressUpdate, err error) (*CollectionResult, error) {
	result.Status = RunStatusFailed
	result.CompletedAt = time.Now().UTC()
	c.cacheRun(ctx, result, progress)
	sendProgress(progress, runFailedUpdate(collectSteps, collectSteps, result.TimeRange, err))
	return result, err
}

// trackIDs extracts ids from ranked tracks, preserving rank order.
func trackIDs(tracks []models.TopTrack) []string {
	ids := make([]string, 0, len(tracks))
	for _, track := range tracks {
		ids = append(ids, track.ID)
	}
	return ids
}

// mergeFeatures joins tracks with their features on track id, keeping track
// order. Tracks without a fetched feature are left out.
func mergeFeatures(tracks []models.TopTrack, features []models.AudioFeature) []models.TrackWithFeatures {
	byID := make(map[string]models.AudioFeature, len(features))
	for _, feature := range features {
		byID[feature.ID] = feature
	}

	merged := make([]models.TrackWithFeatures, 0, len(features))
	for _, track := range tracks {
		feature, ok := byID[track.ID]
		if !ok {
			continue
		}

		merged = append(merged, models.TrackWithFeatures{Track: track, Feature: feature})
	}

	return merged
}

// DeriveSeedGenres builds recommendation seeds from top-artist genre frequency,
// keeping only genres the provider accepts. Exposed for commands that seed
// recommendations outside a full collection run.
func DeriveSeedGenres(artists []models.TopArtist, available []string, limit int) []string {
	return deriveSeeds(artists, available, limit)
}

// deriveSeeds builds seed genres from top-artist genre frequency: count every
// genre, keep the ones the provider accepts as seeds, order by count with ties
// alphabetical, and cap the list at limit.
func deriveSeeds(artists []models.TopArtist, available []string, limit int) []string {
	counts := make(map[string]int)
	for _, artist := range artists {
		for _, genre := range artist.Genres {
			genre = strings.ToLower(strings.TrimSpace(genre))
			if genre == "" {
				continue
			}

			counts[genre]++
		}
	}

	valid := make(map[string]bool, len(available))
	for _, seed := range available {
		valid[strings.ToLower(strings.TrimSpace(seed))] = true
	}

	seeds := make([]string, 0, len(counts))
	for genre := range counts {
		if valid[genre] {
			seeds = append(seeds, genre)
		}
	}

	sort.Slice(seeds, func(i, j int) bool {
		if counts[seeds[i]] != counts[seeds[j]] {
			return counts[seeds[i]] > counts[seeds[j]]
		}
		return seeds[i] < seeds[j]
	})

	if limit > 0 && len(seeds) > limit {
		seeds = seeds[:limit]
	}

	return seeds
}
