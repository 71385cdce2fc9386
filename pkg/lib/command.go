package lib

import (
	"context"
	"errors"
	"io"
	"syscall"

	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/runner"
	liblog "github.com/slok/runx/pkg/lib/log"
)

// Command builds and executes a single external command. Configure it with
// the chainable methods and run it once with [Command.Execute].
//
// A Command is not safe for concurrent use and must not be executed twice.
type Command struct {
	cmd *runner.Command
}

// NewCommand creates a command builder for the given program.
func NewCommand(program string) *Command {
	return &Command{cmd: runner.New(program)}
}

// Arg appends a single argument.
func (c *Command) Arg(arg string) *Command {
	c.cmd.Arg(arg)
	return c
}

// Args appends several arguments.
func (c *Command) Args(args ...string) *Command {
	c.cmd.Args(args...)
	return c
}

// OptArg appends the argument when it is non-nil.
func (c *Command) OptArg(arg *string) *Command {
	c.cmd.OptArg(arg)
	return c
}

// WorkingDir sets the working directory for the command.
func (c *Command) WorkingDir(dir string) *Command {
	c.cmd.WorkingDir(dir)
	return c
}

// Env sets a single environment variable for the command.
func (c *Command) Env(key, value string) *Command {
	c.cmd.Env(key, value)
	return c
}

// Envs sets several environment variables for the command.
func (c *Command) Envs(vars map[string]string) *Command {
	c.cmd.Envs(vars)
	return c
}

// EnvClear drops the inherited host environment, only variables set with
// [Command.Env] or [Command.Envs] remain.
func (c *Command) EnvClear() *Command {
	c.cmd.EnvClear()
	return c
}

// Redact registers secrets to mask in output and progress updates.
func (c *Command) Redact(secrets ...string) *Command {
	c.cmd.Redact(secrets...)
	return c
}

// StdinString feeds the given text to the command's standard input and then
// closes it.
func (c *Command) StdinString(input string) *Command {
	c.cmd.StdinString(input)
	return c
}

// Stdin connects the reader directly to the command's standard input.
func (c *Command) Stdin(r io.Reader) *Command {
	c.cmd.Stdin(r)
	return c
}

// Stdout connects the writer directly to the command's standard output,
// bypassing capture and redaction for that stream.
func (c *Command) Stdout(w io.Writer) *Command {
	c.cmd.Stdout(w)
	return c
}

// Stderr connects the writer directly to the command's standard error,
// bypassing capture and redaction for that stream.
func (c *Command) Stderr(w io.Writer) *Command {
	c.cmd.Stderr(w)
	return c
}

// WithProgress sets the sink that receives live updates during execution.
func (c *Command) WithProgress(sink ProgressSink) *Command {
	c.cmd.WithProgress(sink)
	return c
}

// WithLogger sets the logger used for debug traces.
func (c *Command) WithLogger(logger liblog.Logger) *Command {
	c.cmd.WithLogger(logger)
	return c
}

// AllowNonZero treats any exit code as a successful run.
func (c *Command) AllowNonZero(allow bool) *Command {
	c.cmd.AllowNonZero(allow)
	return c
}

// ShowStderrOnError controls whether the captured output is pushed to the
// progress sink when the run fails. Enabled by default.
func (c *Command) ShowStderrOnError(show bool) *Command {
	c.cmd.ShowStderrOnError(show)
	return c
}

// StderrToProgress routes stderr lines to the progress line instead of
// printing them above it.
func (c *Command) StderrToProgress(enable bool) *Command {
	c.cmd.StderrToProgress(enable)
	return c
}

// String renders the command for humans.
func (c *Command) String() string { return c.cmd.String() }

// Execute spawns the command and waits for it to complete, streaming output
// to the progress sink and capturing it for the result.
//
// Cancelling ctx kills the child process; the returned error then matches
// [ErrCancelled]. A disallowed non-zero exit returns a *[ExitError] matching
// [ErrNonZeroExit].
func (c *Command) Execute(ctx context.Context) (*Result, error) {
	result, err := c.cmd.Execute(ctx)
	if err != nil {
		var exitErr *model.ExitError
		if errors.As(err, &exitErr) {
			return nil, fromInternalExitError(exitErr)
		}
		return nil, mapError(err)
	}

	r := fromInternalResult(*result)
	return &r, nil
}

// TrackedPIDs returns the PIDs of commands currently running through this
// library, ordered ascending.
func TrackedPIDs() []int {
	return runner.DefaultRegistry().PIDs()
}

// KillTrackedProcesses sends the signal to every currently tracked child
// process. Best effort, processes that already exited are skipped.
func KillTrackedProcesses(sig syscall.Signal) {
	runner.DefaultRegistry().KillAll(sig, liblog.Noop)
}
