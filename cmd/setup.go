package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/sdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase opens the configured database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, _, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	return nil
}

// SetupConfig creates a config.toml from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Edit it to add your Spotify client_id and client_secret, then run 'sdx auth login'.\n")
	return nil
}
