package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/sdx/internal/formatter"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// TopTracks lists the user's most played tracks for a listening window.
func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)
	if err := r.authenticateUser(ctx); err != nil {
		return err
	}

	timeRange := cmd.String("time-range")
	limit := cmd.Int("limit")

	r.logger.Infof("fetching top tracks (%s, limit %d)", timeRange, limit)

	tracks, err := r.spotify.TopTracks(ctx, timeRange, limit)
	if err != nil {
		return fmt.Errorf("fetching top tracks: %w", err)
	}

	if cmd.Bool("save") {
		if err := r.saveJSON("top_tracks.json", tracks); err != nil {
			r.logger.Warn("failed to save JSON", "error", err)
		}
	}

	if cmd.Bool("csv") {
		path, err := formatter.WriteTopTracksCSV(tracks, r.config.Output.Dir)
		if err != nil {
			return fmt.Errorf("writing %s: %w", formatter.TopTracksFilename, err)
		}
		r.writePlain("✓ %s (%d rows)\n", path, len(tracks))
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Top Tracks (%s)", timeRange))
	for _, track := range tracks {
		r.writePlain("%2d. %s\n", track.Rank, track.Name)
		r.writePlain("    %s | %s | popularity %d\n", track.Artist, track.Album, track.Popularity)
	}

	return nil
}

// TopArtists lists the user's most played artists for a listening window.
func (r *Runner) TopArtists(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)
	if err := r.authenticateUser(ctx); err != nil {
		return err
	}

	timeRange := cmd.String("time-range")
	limit := cmd.Int("limit")

	r.logger.Infof("fetching top artists (%s, limit %d)", timeRange, limit)

	artists, err := r.spotify.TopArtists(ctx, timeRange, limit)
	if err != nil {
		return fmt.Errorf("fetching top artists: %w", err)
	}

	if cmd.Bool("save") {
		if err := r.saveJSON("top_artists.json", artists); err != nil {
			r.logger.Warn("failed to save JSON", "error", err)
		}
	}

	if cmd.Bool("csv") {
		path, err := formatter.WriteTopArtistsCSV(artists, r.config.Output.Dir)
		if err != nil {
			return fmt.Errorf("writing %s: %w", formatter.TopArtistsFilename, err)
		}
		r.writePlain("✓ %s (%d rows)\n", path, len(artists))
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Top Artists (%s)", timeRange))
	for _, artist := range artists {
		r.writePlain("%2d. %s\n", artist.Rank, artist.Name)
		if len(artist.Genres) > 0 {
			r.writePlain("    %s\n", strings.Join(artist.Genres, ", "))
		}
	}

	return nil
}

// saveJSON writes an indented JSON snapshot into the output directory.
func (r *Runner) saveJSON(name string, v any) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	dir := r.config.Output.Dir
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	r.logger.Info("saved JSON snapshot", "file", path)
	return nil
}
