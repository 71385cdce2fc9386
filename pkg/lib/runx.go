package lib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	apphistory "github.com/slok/runx/internal/app/history"
	apprun "github.com/slok/runx/internal/app/run"
	"github.com/slok/runx/internal/log"
	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/storage"
	"github.com/slok/runx/internal/storage/sqlite"
)

const (
	defaultDataDir = ".runx"
	defaultDBFile  = "runx.db"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} will use ~/.runx/runx.db for the run history.
type Config struct {
	// DBPath is the SQLite run history database path.
	// Default: ~/.runx/runx.db.
	DBPath string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = filepath.Join(home, defaultDataDir, defaultDBFile)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client executes commands with history recording and queries the recorded
// runs.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo    storage.Repository
	logger  log.Logger
	closeFn func() error
}

// New creates a new SDK client backed by a SQLite run history database.
//
// The caller must call [Client.Close] when done to release the database
// connection.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return &Client{
		repo:    repo,
		logger:  cfg.Logger,
		closeFn: repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database
// connection. After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// RunOpts configures a recorded command execution.
type RunOpts struct {
	// WorkingDir is the working directory for the command.
	WorkingDir string
	// Env are extra environment variables for the command.
	Env map[string]string
	// EnvClear drops the inherited host environment.
	EnvClear bool
	// Redact are secrets to mask in output and progress updates.
	Redact []string
	// Stdin, when non-nil, is fed to the command's standard input.
	Stdin *string
	// AllowNonZero treats any exit code as success.
	AllowNonZero bool
	// StderrToProgress routes stderr lines to the progress line.
	StderrToProgress bool
	// Sink receives live progress updates.
	Sink ProgressSink
}

// Run executes a command and records the outcome in the run history.
//
// Behaves like [Command.Execute] otherwise: cancellation kills the child and
// the error matches [ErrCancelled], a disallowed non-zero exit returns a
// *[ExitError].
func (c *Client) Run(ctx context.Context, program string, args []string, opts *RunOpts) (*Result, error) {
	if opts == nil {
		opts = &RunOpts{}
	}

	svc, err := apprun.NewService(apprun.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	result, err := svc.Run(ctx, apprun.Request{
		Spec: model.RunSpec{
			Program:           program,
			Args:              args,
			WorkingDir:        opts.WorkingDir,
			Env:               opts.Env,
			EnvClear:          opts.EnvClear,
			Redact:            opts.Redact,
			Stdin:             opts.Stdin,
			AllowNonZero:      opts.AllowNonZero,
			ShowStderrOnError: true,
			StderrToProgress:  opts.StderrToProgress,
		},
		Sink: opts.Sink,
	})
	if err != nil {
		var exitErr *model.ExitError
		if errors.As(err, &exitErr) {
			return nil, fromInternalExitError(exitErr)
		}
		return nil, mapError(err)
	}

	r := fromInternalResult(*result)
	return &r, nil
}

// ListRunsOpts configures a run history query.
type ListRunsOpts struct {
	// Status only returns runs with this final status.
	Status *RunStatus
	// Limit caps the number of returned runs, 0 means no limit.
	Limit int
}

// ListRuns returns recorded runs, newest first.
func (c *Client) ListRuns(ctx context.Context, opts *ListRunsOpts) ([]Run, error) {
	svc, err := apphistory.NewService(apphistory.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := apphistory.ListRequest{}
	if opts != nil {
		req.Limit = opts.Limit
		if opts.Status != nil {
			s := model.RunStatus(*opts.Status)
			req.StatusFilter = &s
		}
	}

	runs, err := svc.List(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalRunList(runs), nil
}

// GetRun returns a single recorded run by ID.
//
// Returns [ErrNotFound] if no run with that ID was recorded.
func (c *Client) GetRun(ctx context.Context, id string) (*Run, error) {
	run, err := c.repo.GetRun(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	r := fromInternalRun(*run)
	return &r, nil
}

// ClearHistory deletes every recorded run.
func (c *Client) ClearHistory(ctx context.Context) error {
	svc, err := apphistory.NewService(apphistory.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	return mapError(svc.Clear(ctx))
}
