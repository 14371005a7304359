// Package models defines domain entities and persistence interfaces for the listening-data collector.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing Spotify API data
//   - [Profile] : The authenticated user's account metadata
//   - [TopTrack] / [TopArtist] : Ranked top-items rows
//   - [AudioFeature] : Per-track audio attributes from the features endpoint
//   - [TrackWithFeatures] : A top track joined with its audio features
//   - [Recommendation] : A recommended track row derived from seed genres
//   - [SavedTrack] : A library row with its added-at timestamp
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CollectionRun] : One end-to-end collection run with phase counts and status
//   - [CachedTrack] : Top-track rows cached per run
//   - [CachedFeature] : Audio-feature rows cached per run
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
