package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/sdx/internal/formatter"
	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/services"
	"github.com/desertthunder/sdx/internal/shared"
)

func TestBulkCollect_AllRanges(t *testing.T) {
	tempDir := t.TempDir()
	mockSvc := collectorMockService()
	cache := &mockRunCache{}

	progressCh := make(chan ProgressUpdate, 200)
	go func() {
		for range progressCh {
			// Drain progress channel
		}
	}()

	opts := BulkCollectOpts{
		Collector:  CollectorOpts{OutputDir: tempDir, ChunkSize: 2},
		NumWorkers: 2,
		RateLimit:  100,
	}

	result, err := BulkCollect(context.Background(), progressCh, mockSvc, cache, quietLogger(), opts)
	close(progressCh)

	if err != nil {
		t.Fatalf("BulkCollect() error = %v", err)
	}

	if result.TotalRanges != 3 {
		t.Errorf("TotalRanges = %d, want 3", result.TotalRanges)
	}
	if result.SuccessfulRuns != 3 {
		t.Errorf("SuccessfulRuns = %d, want 3", result.SuccessfulRuns)
	}
	if result.FailedRuns != 0 {
		t.Errorf("FailedRuns = %d, want 0", result.FailedRuns)
	}

	seen := make(map[string]bool)
	for _, res := range result.Results {
		if res.Error != nil {
			t.Errorf("range %s failed: %v", res.TimeRange, res.Error)
		}
		seen[res.TimeRange] = true
	}
	for _, timeRange := range models.TimeRanges {
		if !seen[timeRange] {
			t.Errorf("missing result for %s", timeRange)
		}

		csvPath := filepath.Join(tempDir, timeRange, formatter.TopTracksFilename)
		if _, err := os.Stat(csvPath); os.IsNotExist(err) {
			t.Errorf("per-range output not created: %s", csvPath)
		}
	}

	if len(cache.saved) != 3 {
		t.Errorf("cache received %d runs, want 3", len(cache.saved))
	}
}

func TestBulkCollect_PartialFailure(t *testing.T) {
	mockSvc := collectorMockService()
	mockSvc.topTracksErrFor = map[string]error{
		"long_term": &services.ProviderError{StatusCode: 500, Message: "upstream down"},
	}

	opts := BulkCollectOpts{
		Collector:  CollectorOpts{OutputDir: t.TempDir()},
		NumWorkers: 1,
		RateLimit:  100,
	}

	result, err := BulkCollect(context.Background(), nil, mockSvc, nil, quietLogger(), opts)
	if err != nil {
		t.Fatalf("BulkCollect() error = %v, one range's failure must not abort the pass", err)
	}

	if result.SuccessfulRuns != 2 {
		t.Errorf("SuccessfulRuns = %d, want 2", result.SuccessfulRuns)
	}
	if result.FailedRuns != 1 {
		t.Errorf("FailedRuns = %d, want 1", result.FailedRuns)
	}

	var failed *RangeResult
	for i := range result.Results {
		if result.Results[i].Error != nil {
			failed = &result.Results[i]
			break
		}
	}
	if failed == nil {
		t.Fatal("expected one failed range result")
	}
	if failed.TimeRange != "long_term" {
		t.Errorf("failed range = %s, want long_term", failed.TimeRange)
	}
	if failed.Result == nil || failed.Result.Status != RunStatusFailed {
		t.Error("failed range should carry its partial run result")
	}
}

func TestBulkCollect_NilService(t *testing.T) {
	_, err := BulkCollect(context.Background(), nil, nil, nil, quietLogger(), BulkCollectOpts{})
	if !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("BulkCollect() error = %v, want ErrServiceUnavailable", err)
	}
}

func TestBulkCollect_CustomRanges(t *testing.T) {
	mockSvc := collectorMockService()

	opts := BulkCollectOpts{
		Collector:  CollectorOpts{OutputDir: t.TempDir()},
		TimeRanges: []string{"short_term"},
		NumWorkers: 5, // Clamped to the range count
		RateLimit:  100,
	}

	result, err := BulkCollect(context.Background(), nil, mockSvc, nil, quietLogger(), opts)
	if err != nil {
		t.Fatalf("BulkCollect() error = %v", err)
	}

	if result.TotalRanges != 1 {
		t.Errorf("TotalRanges = %d, want 1", result.TotalRanges)
	}
	if len(result.Results) != 1 || result.Results[0].TimeRange != "short_term" {
		t.Errorf("Results = %+v, want a single short_term run", result.Results)
	}
}

func TestBulkCollect_SharedRateLimit(t *testing.T) {
	mockSvc := collectorMockService()

	// Three ranges at chunk size 2 over 3 tracks is 6 feature calls, so five
	// waits on the shared budget.
	interval := 20 * time.Millisecond
	opts := BulkCollectOpts{
		Collector:  CollectorOpts{OutputDir: t.TempDir(), ChunkSize: 2},
		NumWorkers: 3,
		RateLimit:  50, // One request per 20ms
	}

	start := time.Now()
	result, err := BulkCollect(context.Background(), nil, mockSvc, nil, quietLogger(), opts)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("BulkCollect() error = %v", err)
	}
	if result.SuccessfulRuns != 3 {
		t.Fatalf("SuccessfulRuns = %d, want 3", result.SuccessfulRuns)
	}
	if elapsed < 5*interval-10*time.Millisecond {
		t.Errorf("elapsed = %v, want at least ~%v from the shared limiter", elapsed, 5*interval)
	}
}

func TestBulkCollect_ContextCancellation(t *testing.T) {
	mockSvc := collectorMockService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	opts := BulkCollectOpts{
		Collector:  CollectorOpts{OutputDir: t.TempDir()},
		NumWorkers: 1,
		RateLimit:  100,
	}

	result, err := BulkCollect(ctx, nil, mockSvc, nil, quietLogger(), opts)
	if err != nil {
		t.Fatalf("BulkCollect() should aggregate instead of failing, got %v", err)
	}
	if result == nil {
		t.Fatal("result should not be nil")
	}
	if result.SuccessfulRuns != 0 {
		t.Errorf("SuccessfulRuns = %d, want 0 after cancellation", result.SuccessfulRuns)
	}
}
