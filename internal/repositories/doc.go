// Package repositories implements SQLite persistence for collection runs and their cached rows.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RunRepository] : Collection-run history with status and feature counts
//   - [CachedTrackRepository] : Top-track rows cached per run
//   - [CachedFeatureRepository] : Audio-feature rows cached per run
//   - [RunCacheAdapter] : tasks.RunCache implementation persisting a whole finished run
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
