package model

import (
	"fmt"
	"time"
)

// RunStatus represents the final state of a recorded run.
type RunStatus string

const (
	RunStatusDone      RunStatus = "done"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// ExitStatus describes how a process exited.
type ExitStatus struct {
	// Code is the platform exit code. It is -1 when the process was
	// terminated by a signal and no code is available.
	Code int
	// Signaled is true when the process was terminated by a signal.
	Signaled bool
	// Signal is the name of the terminating signal, when known.
	Signal string
}

// Success reports whether the process exited normally with a zero code.
func (s ExitStatus) Success() bool {
	return !s.Signaled && s.Code == 0
}

func (s ExitStatus) String() string {
	switch {
	case s.Signaled && s.Signal != "":
		return fmt.Sprintf("signal: %s", s.Signal)
	case s.Signaled:
		return "no exit status"
	default:
		return fmt.Sprintf("exit code %d", s.Code)
	}
}

// RunResult contains the captured output and exit status of an executed
// command.
type RunResult struct {
	// Stdout is the captured standard output, one trailing newline per line.
	Stdout string
	// Stderr is the captured standard error, one trailing newline per line.
	Stderr string
	// Combined is stdout and stderr interleaved in the order the lines
	// arrived, which is not necessarily stream-major order.
	Combined string
	// ExitStatus is how the process exited.
	ExitStatus ExitStatus
}

// RunSpec describes a command execution request.
type RunSpec struct {
	Program           string
	Args              []string
	WorkingDir        string
	Env               map[string]string
	EnvClear          bool
	Redact            []string
	// Stdin, when non-nil, is fed to the process standard input and the
	// stream is closed afterwards. Nil leaves stdin unconnected.
	Stdin             *string
	AllowNonZero      bool
	ShowStderrOnError bool
	StderrToProgress  bool
}

// Run is a recorded command execution kept in the run history.
type Run struct {
	ID          string
	Program     string
	Args        []string
	WorkingDir  string
	Status      RunStatus
	ExitCode    int
	OutputBytes int
	CreatedAt   time.Time
	Duration    time.Duration
}
