// Package lib provides a Go SDK for executing commands with live progress,
// output capture, secret redaction and a persistent run history.
//
// # Quick Start
//
// Build a command and execute it:
//
//	result, err := lib.NewCommand("git").
//	    Args("clone", repoURL).
//	    Redact(token).
//	    Execute(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(result.Stdout)
//
// Cancelling ctx kills the child process and the call returns an error
// matching [ErrCancelled].
//
// # Failure Handling
//
// A disallowed non-zero exit returns a *[ExitError] matching
// [ErrNonZeroExit], which still carries the captured output:
//
//	_, err := lib.NewCommand("make").Arg("test").Execute(ctx)
//	var exitErr *lib.ExitError
//	if errors.As(err, &exitErr) {
//	    fmt.Println(exitErr.Output)
//	}
//
// Use [Command.AllowNonZero] to treat any exit code as success and inspect
// [Result].Exit instead.
//
// # Secret Redaction
//
// Secrets registered with [Command.Redact] are replaced with
// [RedactedPlaceholder] in the captured output and in everything sent to the
// progress sink, so credentials in URLs or env dumps never reach the
// terminal or logs.
//
// # Progress Reporting
//
// Implement [ProgressSink] to receive line-by-line progress while the
// command runs:
//
//	lib.NewCommand("terraform").Arg("apply").WithProgress(sink).Execute(ctx)
//
// # Process Tracking
//
// Every running child is tracked in a process-wide registry. On shutdown,
// broadcast a signal to anything still alive:
//
//	lib.KillTrackedProcesses(syscall.SIGTERM)
//
// # Run History
//
// Use [Client] to execute commands with history recording, and to query or
// clear the recorded runs:
//
//	client, _ := lib.New(ctx, lib.Config{})
//	defer client.Close()
//	runs, _ := client.ListRuns(ctx, nil)
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: run history entry does not exist.
//   - [ErrNotValid]: invalid input (e.g. executing the same Command twice).
//   - [ErrNonZeroExit]: the command exited with a disallowed non-zero code.
//   - [ErrCancelled]: the command was killed due to context cancellation.
package lib
