package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/runx/internal/log"
	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/storage/sqlite"
)

func runFixture(id string, createdAt time.Time) model.Run {
	return model.Run{
		ID:          id,
		Program:     "sh",
		Args:        []string{"-c", "echo hello"},
		WorkingDir:  "/workspace",
		Status:      model.RunStatusDone,
		ExitCode:    0,
		OutputBytes: 6,
		CreatedAt:   createdAt,
		Duration:    120 * time.Millisecond,
	}
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	// Second resolution, the column stores Unix seconds.
	now := time.Now().UTC().Truncate(time.Second)

	run := runFixture("run-1", now)
	require.NoError(t, repo.CreateRun(ctx, run))

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, *got)

	_, err = repo.GetRun(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryListRuns(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	now := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		run := runFixture(fmt.Sprintf("run-%d", i), now.Add(time.Duration(i)*time.Second))
		run.ExitCode = i
		require.NoError(t, repo.CreateRun(ctx, run))
	}

	runs, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 5)
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-0", runs[4].ID)

	limited, err := repo.ListRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, "run-4", limited[0].ID)
}

func TestRepositoryDeleteRuns(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.CreateRun(ctx, runFixture("run-1", time.Now().UTC())))
	require.NoError(t, repo.DeleteRuns(ctx))

	runs, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRepositoryPersistsAcrossConnections(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	now := time.Now().UTC().Truncate(time.Second)

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath, Logger: log.Noop})
	require.NoError(t, err)
	require.NoError(t, repo.CreateRun(ctx, runFixture("run-1", now)))
	require.NoError(t, repo.Close())

	repo2, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath, Logger: log.Noop})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo2.Close() })

	got, err := repo2.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"-c", "echo hello"}, got.Args)
}

func TestRepositoryConfigValidation(t *testing.T) {
	_, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{})
	assert.Error(t, err)
}
