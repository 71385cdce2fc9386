package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/runx/internal/model"
)

// maxCommandWidth caps the command column so long invocations don't blow up
// the table layout.
const maxCommandWidth = 60

// TablePrinter prints run history information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintRunList prints runs in a table format.
func (t *TablePrinter) PrintRunList(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "ID\tCOMMAND\tSTATUS\tEXIT\tOUTPUT\tDURATION\tCREATED")

	// Print rows.
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID,
			truncate(commandLine(r), maxCommandWidth),
			r.Status,
			r.ExitCode,
			FormatBytes(int64(r.OutputBytes)),
			r.Duration.Round(time.Millisecond).String(),
			TimeAgo(r.CreatedAt),
		)
	}

	return nil
}

// PrintRun prints detailed run information.
func (t *TablePrinter) PrintRun(run model.Run) error {
	fmt.Fprintf(t.writer, "ID:          %s\n", run.ID)
	fmt.Fprintf(t.writer, "Command:     %s\n", commandLine(run))
	if run.WorkingDir != "" {
		fmt.Fprintf(t.writer, "Workdir:     %s\n", run.WorkingDir)
	}
	fmt.Fprintf(t.writer, "Status:      %s\n", run.Status)
	fmt.Fprintf(t.writer, "Exit code:   %d\n", run.ExitCode)
	fmt.Fprintf(t.writer, "Output:      %s\n", FormatBytes(int64(run.OutputBytes)))
	fmt.Fprintf(t.writer, "Duration:    %s\n", run.Duration)
	fmt.Fprintf(t.writer, "Created:     %s\n", FormatTimestamp(run.CreatedAt))

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func commandLine(r model.Run) string {
	return strings.TrimSpace(r.Program + " " + strings.Join(r.Args, " "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
