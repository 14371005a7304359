package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/services"
	"github.com/desertthunder/sdx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// DefaultChunkSize is used when a caller passes a non-positive chunk size.
	DefaultChunkSize = 20
	// MaxChunkSize caps chunks at the audio-features endpoint's per-request id limit.
	MaxChunkSize = 100
)

// FeatureProvider is the slice of [services.Service] the fetcher needs. A
// single call returns one record per requested id, in order, with nil entries
// for ids the catalog has no features for.
type FeatureProvider interface {
	AudioFeatures(ctx context.Context, ids []string) ([]*models.AudioFeature, error)
}

// BatchResult carries everything a feature fetch produced, successes and
// failures side by side.
type BatchResult struct {
	// Features holds the records that came back, in request order.
	Features []models.AudioFeature
	// Failed maps each id from a failed chunk to a one-line reason.
	Failed map[string]string
	// Chunks counts provider calls actually made.
	Chunks int
}

// FailureCount returns how many ids ended up in the failure map.
func (r *BatchResult) FailureCount() int {
	return len(r.Failed)
}

// FeatureFetcher retrieves audio features for large id sets by splitting them
// into provider-sized chunks, pacing requests, and keeping going when a chunk
// fails. One bad chunk never discards the records fetched before it.
type FeatureFetcher struct {
	provider  FeatureProvider
	chunkSize int
	limiter   *rate.Limiter
}

// NewFeatureFetcher builds a fetcher over provider. Chunk sizes outside
// [1, MaxChunkSize] are clamped, and delay sets the minimum spacing between
// chunk requests (zero disables pacing).
func NewFeatureFetcher(provider FeatureProvider, chunkSize int, delay time.Duration) *FeatureFetcher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	if chunkSize > MaxChunkSize {
		chunkSize = MaxChunkSize
	}

	f := &FeatureFetcher{provider: provider, chunkSize: chunkSize}
	if delay > 0 {
		f.limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	return f
}

// UseLimiter swaps in a shared limiter so several fetchers can pace against
// one request budget.
func (f *FeatureFetcher) UseLimiter(limiter *rate.Limiter) {
	f.limiter = limiter
}

// ChunkSize reports the effective chunk size after clamping.
func (f *FeatureFetcher) ChunkSize() int {
	return f.chunkSize
}

// Fetch retrieves features for ids, reporting per-chunk progress on ch when
// non-nil. Empty and duplicate ids are dropped before chunking. Failed chunks
// record every id in the failure map and the walk continues; only
// authentication errors and context cancellation stop it early, returning the
// partial result alongside the error.
func (f *FeatureFetcher) Fetch(ctx context.Context, ids []string, ch chan<- ProgressUpdate) (*BatchResult, error) {
	result := &BatchResult{Failed: make(map[string]string)}

	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return result, nil
	}

	chunks := chunkIDs(unique, f.chunkSize)
	seen := make(map[string]bool, len(unique))

	for i, chunk := range chunks {
		// The limiter starts with a stored token, so the first chunk goes out
		// immediately and each later wait spaces requests by the configured delay.
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}

				return result, err
			}
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		sendProgress(ch, fetchChunkUpdate(i+1, len(chunks), len(chunk)))

		records, err := f.provider.AudioFeatures(ctx, chunk)
		result.Chunks++

		if err != nil {
			if isFatal(err) {
				return result, err
			}

			reason := failureReason(err)
			for _, id := range chunk {
				result.Failed[id] = reason
			}

			sendProgress(ch, chunkFailedUpdate(i+1, len(chunks), reason))
			continue
		}

		got := 0
		for _, record := range records {
			if record == nil || seen[record.ID] {
				continue
			}

			seen[record.ID] = true
			result.Features = append(result.Features, *record)
			got++
		}

		sendProgress(ch, chunkDoneUpdate(i+1, len(chunks), got))
	}

	return result, nil
}

// dedupeIDs drops empty strings and repeats while keeping first-seen order.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))

	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}

		seen[id] = true
		unique = append(unique, id)
	}

	return unique
}

// chunkIDs splits ids into runs of at most size, preserving order.
func chunkIDs(ids []string, size int) [][]string {
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}

	return chunks
}

// isFatal reports whether err should stop a fetch instead of failing the
// current chunk. Credential problems poison every later chunk the same way,
// and context errors mean the caller is done waiting.
func isFatal(err error) bool {
	return errors.Is(err, shared.ErrAuthFailed) ||
		errors.Is(err, shared.ErrNotAuthenticated) ||
		errors.Is(err, shared.ErrTokenExpired) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// failureReason flattens err into a one-line reason for the failure map.
func failureReason(err error) string {
	var provErr *services.ProviderError
	if errors.As(err, &provErr) {
		return provErr.Error()
	}

	return err.Error()
}
