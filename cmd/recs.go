package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/sdx/internal/formatter"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/desertthunder/sdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Recs fetches recommendations from seed genres.
//
// Without --genres, seeds are derived from the user's top artists the same way
// a collection run derives them; that path needs a cached login.
func (r *Runner) Recs(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	genres := cmd.StringSlice("genres")
	limit := cmd.Int("limit")

	if len(genres) == 0 {
		if err := r.authenticateUser(ctx); err != nil {
			return err
		}

		artists, err := r.spotify.TopArtists(ctx, r.config.Collector.TimeRange, r.config.Collector.TopLimit)
		if err != nil {
			return fmt.Errorf("fetching top artists: %w", err)
		}

		available, err := r.spotify.GenreSeeds(ctx)
		if err != nil {
			return fmt.Errorf("fetching genre seeds: %w", err)
		}

		genres = tasks.DeriveSeedGenres(artists, available, r.config.Collector.SeedCap)
		if len(genres) == 0 {
			return fmt.Errorf("%w: none of your top artists' genres are accepted as seeds; pass --genres", shared.ErrNoSeedGenres)
		}

		r.writePlain("Seed genres: %s\n\n", strings.Join(genres, ", "))
	} else if err := r.authenticateApp(ctx); err != nil {
		return err
	}

	recs, err := r.spotify.Recommendations(ctx, genres, limit)
	if err != nil {
		return fmt.Errorf("fetching recommendations: %w", err)
	}

	if cmd.Bool("csv") {
		path, err := formatter.WriteRecommendationsCSV(recs, r.config.Output.Dir)
		if err != nil {
			return fmt.Errorf("writing %s: %w", formatter.RecommendationsFilename, err)
		}
		r.writePlain("✓ %s (%d rows)\n", path, len(recs))
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(recs, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Recommendations")
	for i, rec := range recs {
		r.writePlain("%2d. %s\n", i+1, rec.Name)
		r.writePlain("    %s | %s | popularity %d\n", rec.Artist, rec.Album, rec.Popularity)
	}

	return nil
}
