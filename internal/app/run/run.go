package run

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/runx/internal/log"
	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/progress"
	"github.com/slok/runx/internal/runner"
	"github.com/slok/runx/internal/storage"
)

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Repository storage.Repository
	Registry   *runner.PIDRegistry
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Registry == nil {
		c.Registry = runner.DefaultRegistry()
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Run"})
	return nil
}

// Service executes commands and records their outcome in the run history.
type Service struct {
	repo     storage.Repository
	registry *runner.PIDRegistry
	logger   log.Logger
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:     cfg.Repository,
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}, nil
}

// Request contains the parameters for executing a command.
type Request struct {
	Spec model.RunSpec
	// Sink receives live progress updates. Optional.
	Sink progress.Sink
}

// Run executes the command described by the request spec, streaming progress
// to the sink and recording the outcome. The returned error preserves the
// runner semantics: a failed or cancelled run yields a *model.ExitError that
// still carries the captured result.
func (s *Service) Run(ctx context.Context, req Request) (*model.RunResult, error) {
	if req.Spec.Program == "" {
		return nil, fmt.Errorf("program cannot be empty: %w", model.ErrNotValid)
	}

	cmd := runner.New(req.Spec.Program).
		Args(req.Spec.Args...).
		Redact(req.Spec.Redact...).
		AllowNonZero(req.Spec.AllowNonZero).
		ShowStderrOnError(req.Spec.ShowStderrOnError).
		StderrToProgress(req.Spec.StderrToProgress).
		WithRegistry(s.registry).
		WithLogger(s.logger)

	if req.Spec.WorkingDir != "" {
		cmd = cmd.WorkingDir(req.Spec.WorkingDir)
	}
	if req.Spec.EnvClear {
		cmd = cmd.EnvClear()
	}
	if len(req.Spec.Env) > 0 {
		cmd = cmd.Envs(req.Spec.Env)
	}
	if req.Spec.Stdin != nil {
		cmd = cmd.StdinString(*req.Spec.Stdin)
	}
	if req.Sink != nil {
		cmd = cmd.WithProgress(req.Sink)
	}

	start := time.Now().UTC()
	result, err := cmd.Execute(ctx)
	duration := time.Since(start)

	// Runs that never produced an exit status (spawn failures, bad setup)
	// don't belong in the history.
	var exitErr *model.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, err
	}

	record := model.Run{
		ID:         ulid.MustNew(ulid.Timestamp(start), rand.Reader).String(),
		Program:    req.Spec.Program,
		Args:       req.Spec.Args,
		WorkingDir: req.Spec.WorkingDir,
		Status:     model.RunStatusDone,
		CreatedAt:  start,
		Duration:   duration,
	}
	switch {
	case exitErr != nil && exitErr.Cancelled:
		record.Status = model.RunStatusCancelled
	case exitErr != nil:
		record.Status = model.RunStatusFailed
	}
	if exitErr != nil {
		record.ExitCode = exitErr.Result.ExitStatus.Code
		record.OutputBytes = len(exitErr.Result.Combined)
	} else {
		record.ExitCode = result.ExitStatus.Code
		record.OutputBytes = len(result.Combined)
	}

	// Recording is best effort, a history write failure never masks the
	// outcome of the run itself. Cancelled runs still get recorded, so the
	// write uses a detached context.
	if recErr := s.repo.CreateRun(context.WithoutCancel(ctx), record); recErr != nil {
		s.logger.Warningf("Could not record run %s: %v", record.ID, recErr)
	}

	return result, err
}
