package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdx/internal/repositories"
	"github.com/desertthunder/sdx/internal/services"
	"github.com/desertthunder/sdx/internal/shared"
	"github.com/desertthunder/sdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.Service
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.Service
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, topCommand, featuresCommand, collectCommand, recsCommand, libraryCommand, cacheCommand, checkCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig re-reads configuration when the command points at a different
// config file than the one loaded at startup. The Spotify service is rebuilt
// from the new credentials when that succeeds.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warnf("failed to load config %s, keeping current: %v", path, err)
		return
	}

	r.config = config
	r.configPath = path
	if svc, err := services.NewSpotifyService(config.Credentials.Spotify); err == nil {
		r.spotify = svc
	}
}

// authenticateUser installs the cached login token on the Spotify service.
// Commands that read /me endpoints need this; fails when no login is cached.
func (r *Runner) authenticateUser(ctx context.Context) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized (set credentials in %s or SPOTIFY_CLIENT_ID/SECRET)", shared.ErrServiceUnavailable, r.configPath)
	}

	tokenPath, err := services.ResolveTokenPath(r.config.Credentials.Spotify)
	if err != nil {
		return err
	}

	if err := r.spotify.Authenticate(ctx, map[string]string{"token_file": tokenPath}); err != nil {
		return fmt.Errorf("%w (run 'sdx auth login' first)", err)
	}
	return nil
}

// authenticateApp acquires an app token via the client-credentials grant.
// Enough for commands that take explicit ids or genres and never touch /me.
func (r *Runner) authenticateApp(ctx context.Context) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized (set credentials in %s or SPOTIFY_CLIENT_ID/SECRET)", shared.ErrServiceUnavailable, r.configPath)
	}
	return r.spotify.Authenticate(ctx, map[string]string{})
}

// openCache opens the configured database and wraps it in the run-cache adapter.
// The caller owns closing the returned handle.
func (r *Runner) openCache() (*sql.DB, *repositories.RunCacheAdapter, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, repositories.NewRunCacheAdapter(db), nil
}

// collectorOpts builds CollectorOpts from config defaults overlaid with command flags.
func (r *Runner) collectorOpts(cmd *cli.Command) tasks.CollectorOpts {
	opts := tasks.CollectorOpts{
		TimeRange: r.config.Collector.TimeRange,
		Limit:     r.config.Collector.TopLimit,
		ChunkSize: r.config.Collector.ChunkSize,
		Delay:     r.config.Collector.ChunkDelay(),
		SeedCap:   r.config.Collector.SeedCap,
		RecLimit:  r.config.Collector.RecLimit,
		OutputDir: r.config.Output.Dir,
	}

	if timeRange := cmd.String("time-range"); timeRange != "" {
		opts.TimeRange = timeRange
	}
	if limit := cmd.Int("limit"); limit > 0 {
		opts.Limit = limit
	}
	if output := cmd.String("output"); output != "" {
		opts.OutputDir = output
	}

	return opts
}

// printProgress consumes progress updates onto the output writer until the
// channel closes, then signals done.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	for update := range progress {
		r.writePlain("%s\n", update.Message)
	}
	close(done)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
