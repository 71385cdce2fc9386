package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrInternal is returned when a run breaks an internal invariant, like a
	// requested stdin pipe not being available.
	ErrInternal = errors.New("internal error")
	// ErrNonZeroExit is returned when the process exits with a disallowed
	// non-zero status.
	ErrNonZeroExit = errors.New("non-zero exit")
	// ErrCancelled is returned when a run is terminated by caller request
	// instead of the program's own logic.
	ErrCancelled = errors.New("cancelled")
)

// ExitError is the error returned when a command run fails, either because
// the process exited with a disallowed non-zero status or because the run
// was cancelled and the process killed.
type ExitError struct {
	Program string
	Args    []string
	// Output is the trimmed combined stdout and stderr transcript.
	Output string
	// Result is the full accumulated result, for caller inspection.
	Result    RunResult
	Cancelled bool
}

func (e *ExitError) Error() string {
	if e.Cancelled {
		return fmt.Sprintf("%s was cancelled (%s)", e.Program, e.Result.ExitStatus)
	}

	msg := fmt.Sprintf("%s exited with non-zero status: %s", e.Program, e.Result.ExitStatus)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

// Unwrap maps the failure to its sentinel kind so callers can use errors.Is.
func (e *ExitError) Unwrap() error {
	if e.Cancelled {
		return ErrCancelled
	}
	return ErrNonZeroExit
}

// CommandLine returns the human readable program and arguments.
func (e *ExitError) CommandLine() string {
	return strings.Join(append([]string{e.Program}, e.Args...), " ")
}
