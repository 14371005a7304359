package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdx/internal/models"
	"github.com/desertthunder/sdx/internal/services"
	"github.com/desertthunder/sdx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkCollectOpts contains configuration for collecting several time ranges in one pass.
type BulkCollectOpts struct {
	Collector  CollectorOpts // Base per-run options; TimeRange, OutputDir, and Limiter are set per job
	TimeRanges []string      // Listening windows to collect (default: all three)
	NumWorkers int           // Concurrent workers (default: 1)
	RateLimit  float64       // Feature requests per second shared across workers (default: 2)
}

// RangeResult pairs one time range's collection outcome with its error.
type RangeResult struct {
	TimeRange string
	Result    *CollectionResult
	Error     error
}

// BulkCollectResult aggregates per-range outcomes from a bulk collection.
type BulkCollectResult struct {
	TotalRanges    int
	SuccessfulRuns int
	FailedRuns     int
	Results        []RangeResult
}

// BulkCollect runs a collection for every requested time range through a worker pool.
//
// All workers share a single rate limiter so concurrent feature fetches stay
// inside one request budget. Each range writes into its own subdirectory of
// the base output dir. One range's failure never aborts the others; per-range
// errors land in the aggregated result instead.
func BulkCollect(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	service services.Service,
	cache RunCache,
	logger *log.Logger,
	opts BulkCollectOpts,
) (*BulkCollectResult, error) {
	if service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	ranges := opts.TimeRanges
	if len(ranges) == 0 {
		ranges = append([]string(nil), models.TimeRanges...)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 1
	}
	if opts.NumWorkers > len(ranges) {
		opts.NumWorkers = len(ranges)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	result := &BulkCollectResult{
		TotalRanges: len(ranges),
		Results:     make([]RangeResult, 0, len(ranges)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(ranges))
	results := make(chan RangeResult, len(ranges))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go collectWorker(ctx, &wg, jobs, results, service, cache, logger, opts.Collector, limiter, prog)
	}

	for _, timeRange := range ranges {
		jobs <- timeRange
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Results = append(result.Results, res)

		if res.Error != nil {
			result.FailedRuns++
		} else {
			result.SuccessfulRuns++
		}
	}

	return result, nil
}

// collectWorker is a worker goroutine that collects time ranges from the jobs channel.
func collectWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan string,
	results chan<- RangeResult,
	service services.Service,
	cache RunCache,
	logger *log.Logger,
	base CollectorOpts,
	limiter *rate.Limiter,
	prog chan<- ProgressUpdate,
) {
	defer wg.Done()

	for timeRange := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		opts := base
		opts.TimeRange = timeRange
		opts.Limiter = limiter
		if base.OutputDir == "" {
			base.OutputDir = "data"
		}
		opts.OutputDir = filepath.Join(base.OutputDir, timeRange)

		run, err := NewCollector(service, cache, logger, opts).Run(ctx, prog)
		results <- RangeResult{TimeRange: timeRange, Result: run, Error: err}
	}
}
