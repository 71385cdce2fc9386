// Package progress defines the live status display collaborator used by the
// runner. The runner publishes updates through [Sink]; how they are rendered
// (terminal line, TUI widget, nothing at all) is up to the implementation.
package progress

// Status represents the live state of a run as shown by a progress sink.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Well known property keys published by the runner.
const (
	// PropCommand is the rendered command line being executed.
	PropCommand = "runx_cmd"
	// PropStdout is the last output line of the running command.
	PropStdout = "runx_stdout"
)

// Sink receives live status updates from a running command.
// Implementations must be safe for concurrent use: the two stream pumps
// publish from independent goroutines.
type Sink interface {
	SetProperty(key, value string)
	SetStatus(status Status)
	RequestRedraw()
	// PrintAbove emits a line outside the live display, so it stays visible
	// after redraws.
	PrintAbove(text string)
}

// Noop is a sink that discards all updates.
var Noop Sink = noop(0)

type noop int

func (noop) SetProperty(string, string) {}
func (noop) SetStatus(Status)           {}
func (noop) RequestRedraw()             {}
func (noop) PrintAbove(string)          {}
