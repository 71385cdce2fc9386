package lib

import (
	"time"

	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/progress"
	"github.com/slok/runx/internal/runner"
)

// RedactedPlaceholder is the text that replaces registered secrets in
// captured output and progress updates.
const RedactedPlaceholder = runner.RedactedPlaceholder

// RunStatus represents the final state of a recorded run.
type RunStatus string

const (
	// RunStatusDone indicates the run finished successfully.
	RunStatusDone RunStatus = "done"
	// RunStatusFailed indicates the run exited with a disallowed non-zero status.
	RunStatusFailed RunStatus = "failed"
	// RunStatusCancelled indicates the run was killed due to cancellation.
	RunStatusCancelled RunStatus = "cancelled"
)

// ExitStatus describes how a process exited.
type ExitStatus struct {
	// Code is the exit code. -1 when the process was killed by a signal or
	// never produced an exit code.
	Code int
	// Signaled is true when the process was terminated by a signal.
	Signaled bool
	// Signal is the name of the terminating signal, when Signaled.
	Signal string
}

// Success reports whether the process exited with code zero.
func (s ExitStatus) Success() bool { return !s.Signaled && s.Code == 0 }

// Result contains the captured output and exit status of an executed command.
type Result struct {
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
	// Combined is stdout and stderr interleaved in arrival order.
	Combined string
	// Exit is how the process exited.
	Exit ExitStatus
}

// Run is a recorded run history entry.
type Run struct {
	// ID is the unique identifier (ULID) assigned when the run was recorded.
	ID string
	// Program is the executed program.
	Program string
	// Args are the program arguments.
	Args []string
	// WorkingDir is the directory the command ran in, empty for inherited.
	WorkingDir string
	// Status is the final run state.
	Status RunStatus
	// ExitCode is the process exit code.
	ExitCode int
	// OutputBytes is the size of the captured combined output.
	OutputBytes int
	// CreatedAt is when the run started.
	CreatedAt time.Time
	// Duration is how long the run took.
	Duration time.Duration
}

// ProgressSink receives live updates while a command runs. Implementations
// must be safe for concurrent use, updates arrive from multiple goroutines.
type ProgressSink = progress.Sink

// Progress statuses delivered to a [ProgressSink].
const (
	ProgressRunning = progress.StatusRunning
	ProgressDone    = progress.StatusDone
	ProgressFailed  = progress.StatusFailed
)

// ExitError is returned when a command fails or is cancelled. It carries the
// captured output so callers can surface it.
//
// It matches [ErrCancelled] when the run was cancelled and [ErrNonZeroExit]
// otherwise.
type ExitError struct {
	// Program is the executed program.
	Program string
	// Args are the program arguments.
	Args []string
	// Output is the trimmed combined output at failure time.
	Output string
	// Result is the full captured result.
	Result Result
	// Cancelled is true when the run was killed due to cancellation.
	Cancelled bool

	internal *model.ExitError
}

func (e *ExitError) Error() string { return e.internal.Error() }

// Is matches the SDK sentinels so errors.Is works without unwrapping.
func (e *ExitError) Is(target error) bool {
	if e.Cancelled {
		return target == ErrCancelled
	}
	return target == ErrNonZeroExit
}

// --- Internal conversion helpers ---

func fromInternalResult(r model.RunResult) Result {
	return Result{
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
		Combined: r.Combined,
		Exit: ExitStatus{
			Code:     r.ExitStatus.Code,
			Signaled: r.ExitStatus.Signaled,
			Signal:   r.ExitStatus.Signal,
		},
	}
}

func fromInternalExitError(e *model.ExitError) *ExitError {
	return &ExitError{
		Program:   e.Program,
		Args:      e.Args,
		Output:    e.Output,
		Result:    fromInternalResult(e.Result),
		Cancelled: e.Cancelled,
		internal:  e,
	}
}

func fromInternalRun(r model.Run) Run {
	return Run{
		ID:          r.ID,
		Program:     r.Program,
		Args:        r.Args,
		WorkingDir:  r.WorkingDir,
		Status:      RunStatus(r.Status),
		ExitCode:    r.ExitCode,
		OutputBytes: r.OutputBytes,
		CreatedAt:   r.CreatedAt,
		Duration:    r.Duration,
	}
}

func fromInternalRunList(rs []model.Run) []Run {
	result := make([]Run, len(rs))
	for i, r := range rs {
		result[i] = fromInternalRun(r)
	}
	return result
}
