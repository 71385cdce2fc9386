// Package runner executes external commands, concurrently capturing their
// output as redacted line streams, reporting live status to a progress sink
// and supporting cooperative cancellation that kills the child.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/slok/runx/internal/log"
	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/progress"
)

// Command configures and executes a single external command. Configure it
// with the chainable methods and call Execute once; a Command is single shot
// and can't be reused.
//
// By default stdout and stderr are captured as line streams, stdin is empty,
// output goes through no redaction and spawned PIDs register on the process
// wide registry.
type Command struct {
	cmd     *exec.Cmd
	program string
	args    []string

	stdinText *string
	rawStdin  io.Reader
	rawStdout io.Writer
	rawStderr io.Writer

	secrets  redactionSet
	sink     progress.Sink
	registry *PIDRegistry
	logger   log.Logger

	passSignals       bool
	showStderrOnError bool
	stderrToProgress  bool
	allowNonZero      bool

	executed bool
}

// New creates a command for the given program. On Windows the program is
// wrapped through `cmd.exe /c`.
func New(program string) *Command {
	return &Command{
		cmd:               newOSCmd(program),
		program:           program,
		sink:              progress.Noop,
		registry:          defaultRegistry,
		logger:            log.Noop,
		showStderrOnError: true,
	}
}

// Arg adds a single argument.
func (c *Command) Arg(arg string) *Command {
	c.cmd.Args = append(c.cmd.Args, arg)
	c.args = append(c.args, arg)
	return c
}

// Args adds multiple arguments.
func (c *Command) Args(args ...string) *Command {
	for _, arg := range args {
		c.Arg(arg)
	}
	return c
}

// OptArg adds an argument only when it is not nil.
func (c *Command) OptArg(arg *string) *Command {
	if arg != nil {
		c.Arg(*arg)
	}
	return c
}

// WorkingDir sets the working directory of the command.
func (c *Command) WorkingDir(dir string) *Command {
	c.cmd.Dir = dir
	return c
}

// Env sets an environment variable for the command. The parent environment
// is inherited unless EnvClear was called.
func (c *Command) Env(key, value string) *Command {
	if c.cmd.Env == nil {
		c.cmd.Env = os.Environ()
	}
	c.cmd.Env = append(c.cmd.Env, key+"="+value)
	return c
}

// Envs sets multiple environment variables in key order.
func (c *Command) Envs(vars map[string]string) *Command {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		c.Env(k, vars[k])
	}
	return c
}

// EnvClear removes all inherited environment variables.
func (c *Command) EnvClear() *Command {
	c.cmd.Env = []string{}
	return c
}

// Redact adds literal strings to replace with [redacted] in all captured
// output. Application order is insertion order, duplicates are ignored.
func (c *Command) Redact(secrets ...string) *Command {
	c.secrets.add(secrets...)
	return c
}

// StdinString pipes the given text to the command's stdin and closes it
// afterwards.
func (c *Command) StdinString(input string) *Command {
	c.stdinText = &input
	return c
}

// Stdin overrides the command's stdin with a raw reader.
func (c *Command) Stdin(r io.Reader) *Command {
	c.rawStdin = r
	return c
}

// Stdout overrides the command's stdout with a raw writer. The stdout pump
// is skipped and nothing is captured for the stream.
func (c *Command) Stdout(w io.Writer) *Command {
	c.rawStdout = w
	return c
}

// Stderr overrides the command's stderr with a raw writer. The stderr pump
// is skipped and nothing is captured for the stream.
func (c *Command) Stderr(w io.Writer) *Command {
	c.rawStderr = w
	return c
}

// WithProgress attaches a progress sink that receives live run status.
func (c *Command) WithProgress(sink progress.Sink) *Command {
	if sink != nil {
		c.sink = sink
	}
	return c
}

// WithRegistry sets the PID registry the spawned child registers on.
func (c *Command) WithRegistry(registry *PIDRegistry) *Command {
	if registry != nil {
		c.registry = registry
	}
	return c
}

// WithLogger sets the logger used by the run.
func (c *Command) WithLogger(logger log.Logger) *Command {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// AllowNonZero makes non-zero exit codes a successful result instead of an
// error. The exit status is recorded verbatim.
func (c *Command) AllowNonZero(allow bool) *Command {
	c.allowNonZero = allow
	return c
}

// ShowStderrOnError controls whether the combined transcript is printed
// above the progress display when the command fails. Defaults to true.
func (c *Command) ShowStderrOnError(show bool) *Command {
	c.showStderrOnError = show
	return c
}

// StderrToProgress routes stderr lines into the progress display's live
// output property instead of printing them above it.
func (c *Command) StderrToProgress(enable bool) *Command {
	c.stderrToProgress = enable
	return c
}

// PassSignals marks the command to receive the signals sent to this process.
// TODO: forward SIGINT and SIGTERM to the child while it runs.
func (c *Command) PassSignals() *Command {
	c.passSignals = true
	return c
}

// String renders the command for humans. A known shell wrapper prefix is
// stripped for display only, it doesn't affect the actual invocation.
func (c *Command) String() string {
	cmd := strings.TrimSpace(c.program + " " + strings.Join(c.args, " "))
	return strings.TrimPrefix(cmd, "sh -o errexit -c ")
}

// Execute spawns the command and waits for it to complete, draining stdout
// and stderr concurrently. Cancelling ctx kills the child; the run then
// fails with an error unwrapping to model.ErrCancelled. A disallowed
// non-zero exit fails with an error unwrapping to model.ErrNonZeroExit, in
// both cases a *model.ExitError carrying the accumulated result.
func (c *Command) Execute(ctx context.Context) (*model.RunResult, error) {
	if c.executed {
		return nil, fmt.Errorf("command already executed: %w", model.ErrNotValid)
	}
	c.executed = true

	c.logger.Debugf("$ %s", c)

	// Wire streams before spawning.
	var stdoutPipe, stderrPipe io.ReadCloser
	if c.rawStdout != nil {
		c.cmd.Stdout = c.rawStdout
	} else {
		p, err := c.cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("could not pipe stdout: %w", err)
		}
		stdoutPipe = p
	}

	if c.rawStderr != nil {
		c.cmd.Stderr = c.rawStderr
	} else {
		p, err := c.cmd.StderrPipe()
		if err != nil {
			return nil, fmt.Errorf("could not pipe stderr: %w", err)
		}
		stderrPipe = p
	}

	var stdinPipe io.WriteCloser
	switch {
	case c.stdinText != nil:
		p, err := c.cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin was requested but not available: %v: %w", err, model.ErrInternal)
		}
		stdinPipe = p
	case c.rawStdin != nil:
		c.cmd.Stdin = c.rawStdin
	}

	if err := c.cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start %s: %w", c.program, err)
	}

	pid := c.cmd.Process.Pid
	c.registry.Add(pid)
	c.logger.Debugf("Started process %d for %s", pid, c.program)

	c.sink.SetProperty(progress.PropCommand, c.String())
	c.sink.SetProperty(progress.PropStdout, "")
	c.sink.SetStatus(progress.StatusRunning)

	out := &output{}
	var pumps sync.WaitGroup
	pumps.Add(3)

	go func() {
		defer pumps.Done()
		if stdoutPipe == nil {
			return
		}
		pump := &linePump{out: out, secrets: &c.secrets, sink: c.sink, logger: c.logger}
		pump.run(stdoutPipe)
	}()

	go func() {
		defer pumps.Done()
		if stderrPipe == nil {
			return
		}
		pump := &linePump{
			out:              out,
			secrets:          &c.secrets,
			sink:             c.sink,
			logger:           c.logger,
			toStderr:         true,
			stderrToProgress: c.stderrToProgress,
		}
		pump.run(stderrPipe)
	}()

	go func() {
		defer pumps.Done()
		if stdinPipe == nil {
			return
		}
		// A stdin write failure never fails the run, the exit status driven
		// path stays the primary outcome.
		if _, err := io.WriteString(stdinPipe, *c.stdinText); err != nil {
			c.logger.Debugf("Failed to write to stdin: %v", err)
		}
		if err := stdinPipe.Close(); err != nil {
			c.logger.Debugf("Failed to close stdin: %v", err)
		}
	}()

	// The pipes reach end of input when the child exits, so joining the
	// pumps doubles as the flush barrier: no buffered output is lost however
	// fast the process exits. Wait must not run before the pipe reads are
	// done (os/exec pipe contract).
	waitCh := make(chan error, 1)
	go func() {
		pumps.Wait()
		waitCh <- c.cmd.Wait()
	}()

	cancelled := false
	var waitErr error
	select {
	case <-ctx.Done():
		cancelled = true
		c.logger.Debugf("Cancellation requested, killing process %d", pid)
		if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			c.logger.Debugf("Failed to kill process %d: %v", pid, err)
		}
		// Kill is not the terminal state, keep waiting for the OS level exit
		// notification so the child is fully reaped and flushed.
		waitErr = <-waitCh
	case waitErr = <-waitCh:
	}

	c.registry.Remove(pid)

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		c.sink.SetStatus(progress.StatusFailed)
		return nil, fmt.Errorf("could not wait for %s: %w", c.program, waitErr)
	}

	result := out.result()
	result.ExitStatus = exitStatusFromState(c.cmd.ProcessState)

	if cancelled {
		return nil, c.fail(result, true)
	}

	if result.ExitStatus.Success() || c.allowNonZero {
		c.sink.SetStatus(progress.StatusDone)
		return &result, nil
	}

	return nil, c.fail(result, false)
}

func (c *Command) fail(result model.RunResult, cancelled bool) error {
	output := strings.TrimSpace(result.Combined)

	c.sink.SetStatus(progress.StatusFailed)
	if c.showStderrOnError && output != "" {
		c.sink.PrintAbove(output)
	}

	return &model.ExitError{
		Program:   c.program,
		Args:      c.args,
		Output:    output,
		Result:    result,
		Cancelled: cancelled,
	}
}

func exitStatusFromState(state *os.ProcessState) model.ExitStatus {
	if state == nil {
		return model.ExitStatus{Code: -1}
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return model.ExitStatus{Code: -1, Signaled: true, Signal: ws.Signal().String()}
	}

	return model.ExitStatus{Code: state.ExitCode()}
}
