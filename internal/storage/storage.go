package storage

import (
	"context"

	"github.com/slok/runx/internal/model"
)

// Repository is the interface for run history persistence.
type Repository interface {
	CreateRun(ctx context.Context, r model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	// ListRuns returns runs sorted newest first. A non positive limit
	// returns everything.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	DeleteRuns(ctx context.Context) error
}
