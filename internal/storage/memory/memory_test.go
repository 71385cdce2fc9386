package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/storage/memory"
)

func runFixture(id string, createdAt time.Time) model.Run {
	return model.Run{
		ID:          id,
		Program:     "echo",
		Args:        []string{"hello"},
		WorkingDir:  "/tmp",
		Status:      model.RunStatusDone,
		ExitCode:    0,
		OutputBytes: 6,
		CreatedAt:   createdAt,
		Duration:    25 * time.Millisecond,
	}
}

func newRepo(t *testing.T) *memory.Repository {
	t.Helper()
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	return repo
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	now := time.Now().UTC()

	run := runFixture("run-1", now)
	require.NoError(t, repo.CreateRun(ctx, run))

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, *got)

	// Duplicated IDs are rejected.
	err = repo.CreateRun(ctx, run)
	assert.True(t, errors.Is(err, model.ErrNotValid))

	// Missing runs are not found.
	_, err = repo.GetRun(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryListRunsSortsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		run := runFixture(fmt.Sprintf("run-%d", i), now.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.CreateRun(ctx, run))
	}

	runs, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 5)
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-0", runs[4].ID)

	limited, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
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

func TestRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	run := runFixture("run-1", time.Now().UTC())
	require.NoError(t, repo.CreateRun(ctx, run))

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	got.Args[0] = "mutated"

	again, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", again.Args[0])
}
