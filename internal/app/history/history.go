package history

import (
	"context"
	"fmt"

	"github.com/slok/runx/internal/log"
	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.History"})
	return nil
}

// Service queries and maintains the recorded run history.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// ListRequest represents the list request parameters.
type ListRequest struct {
	// StatusFilter is an optional filter to only show runs with this status.
	StatusFilter *model.RunStatus
	// Limit caps the number of returned runs, 0 means no limit.
	Limit int
}

// List returns recorded runs newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, req ListRequest) ([]model.Run, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit cannot be negative: %w", model.ErrNotValid)
	}

	// The status filter is applied after the query, so fetch everything and
	// trim at the end to keep the limit meaningful.
	queryLimit := req.Limit
	if req.StatusFilter != nil {
		queryLimit = 0
	}

	runs, err := s.repo.ListRuns(ctx, queryLimit)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	if req.StatusFilter != nil {
		filtered := make([]model.Run, 0, len(runs))
		for _, r := range runs {
			if r.Status == *req.StatusFilter {
				filtered = append(filtered, r)
			}
		}
		runs = filtered
		if req.Limit > 0 && len(runs) > req.Limit {
			runs = runs[:req.Limit]
		}
	}

	s.logger.Debugf("found %d runs", len(runs))
	return runs, nil
}

// Clear deletes the whole run history.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.DeleteRuns(ctx); err != nil {
		return fmt.Errorf("could not clear run history: %w", err)
	}

	s.logger.Infof("Run history cleared")
	return nil
}
