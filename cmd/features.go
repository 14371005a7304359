package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/desertthunder/sdx/internal/shared"
	"github.com/desertthunder/sdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Features fetches audio features for track ids in chunks.
//
// Ids come from the argument list, or from the user's current top tracks with
// --from-top. Failed chunks are reported and never discard fetched records.
func (r *Runner) Features(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	ids := cmd.Args().Slice()
	fromTop := cmd.Bool("from-top")

	if len(ids) == 0 && !fromTop {
		return fmt.Errorf("%w: pass track ids or --from-top", shared.ErrMissingArgument)
	}

	if fromTop {
		if err := r.authenticateUser(ctx); err != nil {
			return err
		}

		timeRange := cmd.String("time-range")
		tracks, err := r.spotify.TopTracks(ctx, timeRange, r.config.Collector.TopLimit)
		if err != nil {
			return fmt.Errorf("fetching top tracks: %w", err)
		}
		for _, track := range tracks {
			ids = append(ids, track.ID)
		}
	} else if err := r.authenticateApp(ctx); err != nil {
		return err
	}

	chunkSize := cmd.Int("chunk-size")
	if chunkSize <= 0 {
		chunkSize = r.config.Collector.ChunkSize
	}

	delay := time.Duration(cmd.Int("delay")) * time.Millisecond
	if delay <= 0 {
		delay = r.config.Collector.ChunkDelay()
	}

	fetcher := tasks.NewFeatureFetcher(r.spotify, chunkSize, delay)
	r.logger.Infof("fetching audio features for %d ids (chunk size %d)", len(ids), fetcher.ChunkSize())

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	batch, err := fetcher.Fetch(ctx, ids, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("fetching audio features: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(batch, cmd.Bool("pretty"))
	}

	r.writePlainln("✓ %d features fetched in %d chunk(s)", len(batch.Features), batch.Chunks)

	if batch.FailureCount() > 0 {
		failed := make([]string, 0, len(batch.Failed))
		for id := range batch.Failed {
			failed = append(failed, id)
		}
		sort.Strings(failed)

		r.writePlain("✗ %d id(s) failed:\n", len(failed))
		for _, id := range failed {
			r.writePlain("  %s: %s\n", id, batch.Failed[id])
		}
	}

	return nil
}
