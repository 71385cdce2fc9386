// Package taskfile loads run task definitions from YAML files.
package taskfile

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/runx/internal/model"
)

// YAMLRepository loads run task definitions from YAML files.
type YAMLRepository struct {
	fs fs.FS
}

// NewYAMLRepository creates a new YAML task repository.
func NewYAMLRepository(filesystem fs.FS) *YAMLRepository {
	return &YAMLRepository{fs: filesystem}
}

// GetTask loads a task from a YAML file and returns a validated run spec.
func (r *YAMLRepository) GetTask(ctx context.Context, path string) (model.RunSpec, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.RunSpec{}, fmt.Errorf("reading task file: %w", err)
	}

	if ctx.Err() != nil {
		return model.RunSpec{}, ctx.Err()
	}

	var task Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return model.RunSpec{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := task.validate(); err != nil {
		return model.RunSpec{}, fmt.Errorf("invalid task: %w", err)
	}

	return task.toModel(), nil
}

// Task represents the YAML structure for a run task.
type Task struct {
	Program           string            `yaml:"program"`
	Args              []string          `yaml:"args"`
	WorkingDir        string            `yaml:"workdir"`
	Env               map[string]string `yaml:"env"`
	EnvClear          bool              `yaml:"env_clear"`
	Redact            []string          `yaml:"redact"`
	Stdin             *string           `yaml:"stdin"`
	AllowNonZero      bool              `yaml:"allow_nonzero"`
	ShowStderrOnError *bool             `yaml:"show_stderr_on_error"`
	StderrToProgress  bool              `yaml:"stderr_to_progress"`
}

func (t Task) validate() error {
	if t.Program == "" {
		return fmt.Errorf("program is required")
	}
	return nil
}

func (t Task) toModel() model.RunSpec {
	spec := model.RunSpec{
		Program:           t.Program,
		Args:              t.Args,
		WorkingDir:        t.WorkingDir,
		Env:               t.Env,
		EnvClear:          t.EnvClear,
		Redact:            t.Redact,
		Stdin:             t.Stdin,
		AllowNonZero:      t.AllowNonZero,
		ShowStderrOnError: true,
		StderrToProgress:  t.StderrToProgress,
	}
	if t.ShowStderrOnError != nil {
		spec.ShowStderrOnError = *t.ShowStderrOnError
	}

	return spec
}
