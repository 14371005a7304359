package tasks

import (
	"fmt"
	"strings"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchTopTracks
	FetchTopArtists
	FetchFeatures
	MergeFeatures
	DeriveSeeds
	FetchRecommendations
	WriteOutput
	CacheRun
	FetchLibrary
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case FetchTopArtists:
		return "fetch_top_artists"
	case FetchFeatures:
		return "fetch_features"
	case MergeFeatures:
		return "merge_features"
	case DeriveSeeds:
		return "derive_seeds"
	case FetchRecommendations:
		return "fetch_recommendations"
	case WriteOutput:
		return "write_output"
	case CacheRun:
		return "cache_run"
	case FetchLibrary:
		return "fetch_library"
	default:
		return ""
	}
}

func fetchTopTracksUpdate(step, total int, timeRange string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTopTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching top tracks (%s)...", timeRange),
	}
}

func fetchTopArtistsUpdate(step, total int, timeRange string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTopArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching top artists (%s)...", timeRange),
	}
}

func fetchChunkUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching audio features (%d tracks)...", step, total, size),
	}
}

func chunkDoneUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %d features", step, total, count),
	}
}

func chunkFailedUpdate(step, total int, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ Chunk failed: %s", step, total, reason),
	}
}

func mergeUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MergeFeatures,
		Step:    step,
		Total:   total,
		Message: "Merging tracks with audio features...",
	}
}

func deriveSeedsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeriveSeeds,
		Step:    step,
		Total:   total,
		Message: "Deriving seed genres from top artists...",
	}
}

func seedsDerivedUpdate(step, total int, genres []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeriveSeeds,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Seed genres: %s", strings.Join(genres, ", ")),
		Data:    genres,
	}
}

func seedsFailedUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeriveSeeds,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ Seed lookup failed: %v", err),
	}
}

func skipRecommendationsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecommendations,
		Step:    step,
		Total:   total,
		Message: "Skipping recommendations: no seed genres found",
	}
}

func fetchRecommendationsUpdate(step, total, seeds int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecommendations,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching recommendations (%d seeds)...", seeds),
	}
}

func recommendationsFailedUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecommendations,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ Recommendations failed: %v", err),
	}
}

func fetchLibraryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    step,
		Total:   total,
		Message: "Fetching saved tracks...",
	}
}

func writeOutputUpdate(step, total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteOutput,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing CSV files to %s...", dir),
	}
}

func fileWrittenUpdate(step, total int, name string, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteOutput,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ %s (%d rows)", name, rows),
	}
}

func cacheRunUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheRun,
		Step:    step,
		Total:   total,
		Message: "Caching run to database...",
	}
}

func runCompletedUpdate(step, total int, result *CollectionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheRun,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ Run %s completed (%d tracks, %d recommendations)", result.RunID, len(result.Tracks), len(result.Recommendations)),
		Data:    result,
	}
}

func runFailedUpdate(step, total int, timeRange string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheRun,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ Run (%s) failed: %v", timeRange, err),
	}
}
