// Package tasks orchestrates listening-data collection runs with real-time progress reporting.
//
// # Core Operations
//
// The [CollectEngine] interface defines two operations:
//
//  1. [Collector.Run] : Full collection pass for one listening window
//     - Fetches ranked top tracks and top artists
//     - Retrieves audio features through the chunked [FeatureFetcher]
//     - Merges tracks with features and derives seed genres for recommendations
//     - Writes CSV output and caches the run
//
//  2. [Collector.Library] : Saved-track export
//     - Follows pagination through the user's library
//     - Writes saved_tracks.csv
//
// [BulkCollect] runs every time range through a worker pool sharing one rate
// limiter, so concurrent runs stay inside a single request budget.
//
// # Batch Feature Fetching
//
// [FeatureFetcher.Fetch] drops empty and duplicate ids, partitions the rest into
// order-preserving chunks, and calls the provider once per chunk with a
// configurable pause between requests. A failed chunk records every id in it
// with a one-line reason and the walk continues; only credential errors and
// context cancellation stop a fetch early, and even then the partial result is
// returned alongside the error.
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run Caching
//
// The optional [RunCache] interface persists finished runs, successes and failures alike
//
// Cache errors are logged and swallowed so a dead database never takes a finished run down.
//
// # Implementation
//
// [Collector] implements [CollectEngine] with dependencies on:
//   - [services.Service] : catalog API client providing top items, features, and recommendations
//   - [RunCache] : optional persistence layer (repositories.RunCache)
package tasks
