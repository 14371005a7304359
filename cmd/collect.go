package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/sdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Collect performs a full collection pass: top items, chunked audio features,
// seed-derived recommendations, and CSV output, cached to the database.
//
// With --all, every listening window is collected through a worker pool that
// shares one rate limiter.
func (r *Runner) Collect(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)
	if err := r.authenticateUser(ctx); err != nil {
		return err
	}

	opts := r.collectorOpts(cmd)

	var cache tasks.RunCache
	if !cmd.Bool("no-cache") {
		db, adapter, err := r.openCache()
		if err != nil {
			r.logger.Warn("run cache unavailable, continuing without it", "error", err)
		} else {
			defer db.Close()
			cache = adapter
		}
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	if cmd.Bool("all") {
		workers := cmd.Int("workers")
		if workers <= 0 {
			workers = r.config.Collector.Workers
		}

		bulk, err := tasks.BulkCollect(ctx, progress, r.spotify, cache, r.logger, tasks.BulkCollectOpts{
			Collector:  opts,
			NumWorkers: workers,
		})
		close(progress)
		<-done

		if err != nil {
			return fmt.Errorf("bulk collection failed: %w", err)
		}

		r.writePlainHeader("Bulk Collection Summary")
		for _, res := range bulk.Results {
			if res.Error != nil {
				r.writePlain("✗ %-11s %v\n", res.TimeRange, res.Error)
				continue
			}
			r.writePlain("✓ %-11s %d tracks, %d features, %d recommendations\n",
				res.TimeRange, len(res.Result.Tracks), len(res.Result.Features), len(res.Result.Recommendations))
		}
		r.writePlain("\n%d/%d ranges collected\n", bulk.SuccessfulRuns, bulk.TotalRanges)

		if bulk.FailedRuns > 0 {
			return fmt.Errorf("%d of %d range(s) failed", bulk.FailedRuns, bulk.TotalRanges)
		}
		return nil
	}

	collector := tasks.NewCollector(r.spotify, cache, r.logger, opts)
	result, err := collector.Run(ctx, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}

	r.printRunSummary(result)
	return nil
}

// printRunSummary renders a finished run's totals and output files.
func (r *Runner) printRunSummary(result *tasks.CollectionResult) {
	r.writePlainHeader(fmt.Sprintf("Run %s (%s)", result.RunID, result.TimeRange))
	r.writePlain("Tracks:          %d\n", len(result.Tracks))
	r.writePlain("Artists:         %d\n", len(result.Artists))
	r.writePlain("Features:        %d fetched, %d failed (%d chunks)\n",
		len(result.Features), len(result.FailedFeatures), result.FeatureChunks)
	r.writePlain("Recommendations: %d\n", len(result.Recommendations))

	if len(result.Files) > 0 {
		r.writePlain("\nFiles:\n")
		for _, file := range result.Files {
			r.writePlain("  %s\n", file)
		}
	}
}
