package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/runx/internal/model"
)

// JSONPrinter prints run history information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// runOutput represents a run in JSON output.
type runOutput struct {
	ID          string    `json:"id"`
	Program     string    `json:"program"`
	Args        []string  `json:"args,omitempty"`
	WorkingDir  string    `json:"working_dir,omitempty"`
	Status      string    `json:"status"`
	ExitCode    int       `json:"exit_code"`
	OutputBytes int       `json:"output_bytes"`
	CreatedAt   time.Time `json:"created_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

func toRunOutput(r model.Run) runOutput {
	return runOutput{
		ID:          r.ID,
		Program:     r.Program,
		Args:        r.Args,
		WorkingDir:  r.WorkingDir,
		Status:      string(r.Status),
		ExitCode:    r.ExitCode,
		OutputBytes: r.OutputBytes,
		CreatedAt:   r.CreatedAt.UTC(),
		DurationMS:  r.Duration.Milliseconds(),
	}
}

// PrintRunList prints runs in JSON format.
func (j *JSONPrinter) PrintRunList(runs []model.Run) error {
	items := make([]runOutput, len(runs))
	for i, r := range runs {
		items[i] = toRunOutput(r)
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintRun prints detailed run information in JSON format.
func (j *JSONPrinter) PrintRun(run model.Run) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(toRunOutput(run))
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
