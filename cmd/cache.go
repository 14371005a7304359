package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/sdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// runSummary is the JSON shape for a cached run listing.
type runSummary struct {
	ID              string `json:"id"`
	TimeRange       string `json:"time_range"`
	Status          string `json:"status"`
	TracksTotal     int    `json:"tracks_total"`
	FeaturesFetched int    `json:"features_fetched"`
	FeaturesFailed  int    `json:"features_failed"`
	ErrorMessage    string `json:"error_message,omitempty"`
	StartedAt       string `json:"started_at,omitempty"`
	CompletedAt     string `json:"completed_at,omitempty"`
}

// CacheRuns lists cached collection runs, most recent first.
func (r *Runner) CacheRuns(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, adapter, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := adapter.ListRuns()
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if cmd.Bool("json") {
		summaries := make([]runSummary, 0, len(runs))
		for _, run := range runs {
			summary := runSummary{
				ID:              run.ID(),
				TimeRange:       run.TimeRange(),
				Status:          run.Status(),
				TracksTotal:     run.TracksTotal(),
				FeaturesFetched: run.FeaturesFetched(),
				FeaturesFailed:  run.FeaturesFailed(),
				ErrorMessage:    run.ErrorMessage(),
			}
			if t := run.StartedAt(); t != nil {
				summary.StartedAt = t.Format(time.RFC3339)
			}
			if t := run.CompletedAt(); t != nil {
				summary.CompletedAt = t.Format(time.RFC3339)
			}
			summaries = append(summaries, summary)
		}
		return r.writeJSON(summaries, true)
	}

	if len(runs) == 0 {
		r.writePlain("No cached runs. Run 'sdx collect' to create one.\n")
		return nil
	}

	r.writePlainHeader("Cached Collection Runs")
	for _, run := range runs {
		r.writePlain("%s  %-11s %-9s %2d tracks, %2d features",
			run.ID(), run.TimeRange(), run.Status(), run.TracksTotal(), run.FeaturesFetched())
		if run.FeaturesFailed() > 0 {
			r.writePlain(" (%d failed)", run.FeaturesFailed())
		}
		r.writePlain("\n")
	}

	return nil
}

// CacheClear removes a cached run together with its tracks and features.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	runID := cmd.StringArg("id")
	if runID == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	db, adapter, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := adapter.ClearRun(runID)
	if err != nil {
		return fmt.Errorf("clearing run %s: %w", runID, err)
	}

	r.writePlain("✓ Cleared run %s (%d cached rows removed)\n", runID, removed)
	return nil
}
