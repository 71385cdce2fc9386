package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	apprun "github.com/slok/runx/internal/app/run"
	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/progress"
	"github.com/slok/runx/internal/storage"
	"github.com/slok/runx/internal/storage/memory"
	"github.com/slok/runx/internal/storage/sqlite"
	"github.com/slok/runx/internal/taskfile"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	command          []string
	taskFile         string
	workingDir       string
	envSpecs         []string
	envClear         bool
	redact           []string
	stdinText        string
	stdinSet         bool
	allowNonZero     bool
	stderrToProgress bool
	noProgress       bool
	noRecord         bool
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Execute a command with live progress and output capture.")
	c.Cmd.Arg("command", "Command to execute (use -- before command).").StringsVar(&c.command)
	c.Cmd.Flag("file", "Load the command from a YAML task file instead of arguments.").Short('f').StringVar(&c.taskFile)
	c.Cmd.Flag("workdir", "Working directory for command execution.").Short('w').StringVar(&c.workingDir)
	c.Cmd.Flag("env", "Environment variables (KEY=VALUE or KEY from current environment). Can be repeated.").Short('e').StringsVar(&c.envSpecs)
	c.Cmd.Flag("env-clear", "Don't inherit the host environment.").BoolVar(&c.envClear)
	c.Cmd.Flag("redact", "Secret to mask in output and logs. Can be repeated.").StringsVar(&c.redact)
	c.Cmd.Flag("stdin", "Text to feed to the command's standard input.").IsSetByUser(&c.stdinSet).StringVar(&c.stdinText)
	c.Cmd.Flag("allow-nonzero", "Treat any exit code as success, mirroring it as the exit code.").BoolVar(&c.allowNonZero)
	c.Cmd.Flag("stderr-to-progress", "Route stderr lines to the progress line instead of printing them.").BoolVar(&c.stderrToProgress)
	c.Cmd.Flag("no-progress", "Disable the live progress display.").BoolVar(&c.noProgress)
	c.Cmd.Flag("no-record", "Don't record this run in the history.").BoolVar(&c.noRecord)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	spec, err := c.buildSpec(ctx)
	if err != nil {
		return err
	}

	// Initialize storage. Unrecorded runs still go through the repository
	// path, just against an in-memory one.
	var repo storage.Repository
	closeRepo := func() {}
	if c.noRecord {
		repo, err = memory.NewRepository(memory.RepositoryConfig{Logger: logger})
	} else {
		var sqliteRepo *sqlite.Repository
		sqliteRepo, err = sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: c.rootCmd.DBPath,
			Logger: logger,
		})
		if sqliteRepo != nil {
			repo = sqliteRepo
			closeRepo = func() { _ = sqliteRepo.Close() }
		}
	}
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer closeRepo()

	// Create run service.
	svc, err := apprun.NewService(apprun.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Progress goes to stderr so it never mixes with the command's stdout.
	var sink progress.Sink
	if !c.noProgress {
		sink = progress.NewTermSink(c.rootCmd.Stderr, c.rootCmd.NoColor)
	}

	result, err := svc.Run(ctx, apprun.Request{Spec: spec, Sink: sink})
	if err != nil {
		return err
	}

	// Mirror the child's exit code when non-zero exits are allowed. os.Exit
	// skips deferred calls, so the repository is closed explicitly first.
	if !result.ExitStatus.Success() {
		closeRepo()
		os.Exit(exitCode(result.ExitStatus))
	}

	return nil
}

// exitCode maps a child's exit status to this process exit code. A signal
// terminated child carries no exit code, it is reported as a plain failure.
func exitCode(status model.ExitStatus) int {
	if status.Code < 0 {
		return 1
	}
	return status.Code
}

// buildSpec assembles the run spec from a task file, arguments and flags.
// Flags override the task file values.
func (c RunCommand) buildSpec(ctx context.Context) (model.RunSpec, error) {
	env, err := parseEnvSpecs(c.envSpecs)
	if err != nil {
		return model.RunSpec{}, fmt.Errorf("invalid --env value: %w", err)
	}

	var spec model.RunSpec
	switch {
	case c.taskFile != "":
		if len(c.command) > 0 {
			return model.RunSpec{}, fmt.Errorf("--file and a command argument are mutually exclusive")
		}

		abs, err := filepath.Abs(c.taskFile)
		if err != nil {
			return model.RunSpec{}, fmt.Errorf("could not resolve task file path: %w", err)
		}

		repo := taskfile.NewYAMLRepository(os.DirFS(filepath.Dir(abs)))
		spec, err = repo.GetTask(ctx, filepath.Base(abs))
		if err != nil {
			return model.RunSpec{}, fmt.Errorf("could not load task file: %w", err)
		}
	case len(c.command) > 0:
		spec = model.RunSpec{
			Program:           c.command[0],
			Args:              c.command[1:],
			ShowStderrOnError: true,
		}
	default:
		return model.RunSpec{}, fmt.Errorf("a command argument or --file is required")
	}

	if c.workingDir != "" {
		spec.WorkingDir = c.workingDir
	}
	if c.envClear {
		spec.EnvClear = true
	}
	if len(env) > 0 {
		if spec.Env == nil {
			spec.Env = map[string]string{}
		}
		for k, v := range env {
			spec.Env[k] = v
		}
	}
	if len(c.redact) > 0 {
		spec.Redact = append(spec.Redact, c.redact...)
	}
	if c.stdinSet {
		stdin := c.stdinText
		spec.Stdin = &stdin
	}
	if c.allowNonZero {
		spec.AllowNonZero = true
	}
	if c.stderrToProgress {
		spec.StderrToProgress = true
	}

	return spec, nil
}
