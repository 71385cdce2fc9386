package lib

import (
	"errors"

	"github.com/slok/runx/internal/model"
)

var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned on invalid input or operations.
	ErrNotValid = errors.New("not valid")
	// ErrNonZeroExit is returned when a command exits with a disallowed
	// non-zero status.
	ErrNonZeroExit = errors.New("non-zero exit")
	// ErrCancelled is returned when a command was killed because its context
	// was cancelled.
	ErrCancelled = errors.New("cancelled")
)

// mapError translates internal errors to the SDK sentinels while keeping the
// original message and chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrCancelled):
		return joinErrors(err, ErrCancelled)
	case errors.Is(err, model.ErrNonZeroExit):
		return joinErrors(err, ErrNonZeroExit)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
