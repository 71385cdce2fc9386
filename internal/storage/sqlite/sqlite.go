package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/runx/internal/log"
	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository that persists
// the run history across process invocations.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository, creating and migrating the
// database if needed.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// DB returns the underlying database handle so other repositories can share
// the connection.
func (r *Repository) DB() *sql.DB { return r.db }

// CreateRun stores a new run record.
func (r *Repository) CreateRun(ctx context.Context, run model.Run) error {
	args, err := json.Marshal(run.Args)
	if err != nil {
		return fmt.Errorf("could not encode args: %w", err)
	}

	query := `
		INSERT INTO runs (
			id, program, args, working_dir,
			status, exit_code, output_bytes,
			created_at, duration_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		run.ID,
		run.Program,
		string(args),
		run.WorkingDir,
		run.Status,
		run.ExitCode,
		run.OutputBytes,
		run.CreatedAt.Unix(),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("could not insert run: %w", err)
	}

	r.logger.Debugf("Recorded run: %s", run.ID)
	return nil
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.Run, error) {
	query := `
		SELECT id, program, args, working_dir, status, exit_code, output_bytes, created_at, duration_ms
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	return run, nil
}

// ListRuns returns runs sorted newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	query := `
		SELECT id, program, args, working_dir, status, exit_code, output_bytes, created_at, duration_ms
		FROM runs
		ORDER BY created_at DESC, id DESC
	`
	queryArgs := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		queryArgs = append(queryArgs, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate runs: %w", err)
	}

	return runs, nil
}

// DeleteRuns removes every recorded run.
func (r *Repository) DeleteRuns(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return fmt.Errorf("could not delete runs: %w", err)
	}

	r.logger.Debugf("Cleared run history")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run        model.Run
		args       string
		createdAt  int64
		durationMS int64
	)

	err := row.Scan(
		&run.ID,
		&run.Program,
		&args,
		&run.WorkingDir,
		&run.Status,
		&run.ExitCode,
		&run.OutputBytes,
		&createdAt,
		&durationMS,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(args), &run.Args); err != nil {
		return nil, fmt.Errorf("could not decode args: %w", err)
	}
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	run.Duration = time.Duration(durationMS) * time.Millisecond

	return &run, nil
}
