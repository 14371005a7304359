package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/sdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Library exports the user's saved tracks.
//
// The default path writes saved_tracks.csv through the collector so progress
// reporting matches a collection run; --json prints the rows instead.
func (r *Runner) Library(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)
	if err := r.authenticateUser(ctx); err != nil {
		return err
	}

	limit := cmd.Int("limit")

	if cmd.Bool("json") {
		saved, err := r.spotify.SavedTracks(ctx, limit)
		if err != nil {
			return fmt.Errorf("fetching saved tracks: %w", err)
		}
		return r.writeJSON(saved, cmd.Bool("pretty"))
	}

	if !cmd.Bool("csv") {
		saved, err := r.spotify.SavedTracks(ctx, limit)
		if err != nil {
			return fmt.Errorf("fetching saved tracks: %w", err)
		}

		r.writePlainHeader("Saved Tracks")
		for i, track := range saved {
			r.writePlain("%3d. %s - %s (added %s)\n", i+1, track.Artist, track.Name, track.AddedAt)
		}
		return nil
	}

	collector := tasks.NewCollector(r.spotify, nil, r.logger, r.collectorOpts(cmd))

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	result, err := collector.Library(ctx, progress, limit)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("exporting library: %w", err)
	}

	r.writePlain("✓ %d saved tracks written to %s\n", len(result.Tracks), result.File)
	return nil
}
