package printer_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/printer"
)

func TestTablePrinter_PrintRunList(t *testing.T) {
	runs := []model.Run{
		{
			ID:          "01J0000000000000000000RUN1",
			Program:     "echo",
			Args:        []string{"hello"},
			Status:      model.RunStatusDone,
			ExitCode:    0,
			OutputBytes: 6,
			CreatedAt:   time.Now().UTC().Add(-2 * time.Hour),
			Duration:    42 * time.Millisecond,
		},
		{
			ID:          "01J0000000000000000000RUN2",
			Program:     "make",
			Args:        []string{"test"},
			Status:      model.RunStatusFailed,
			ExitCode:    2,
			OutputBytes: 2048,
			CreatedAt:   time.Now().UTC().Add(-30 * time.Second),
			Duration:    3 * time.Second,
		},
	}

	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)
	require.NoError(t, p.PrintRunList(runs))

	out := b.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "COMMAND")
	assert.Contains(t, out, "echo hello")
	assert.Contains(t, out, "make test")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "2 hours ago (UTC)")
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "42ms")
}

func TestTablePrinter_PrintRunListEmpty(t *testing.T) {
	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)
	require.NoError(t, p.PrintRunList(nil))
	assert.Empty(t, b.String())
}

func TestTablePrinter_PrintRunListTruncatesLongCommands(t *testing.T) {
	long := make([]string, 50)
	for i := range long {
		long[i] = "argument"
	}
	runs := []model.Run{{ID: "id1", Program: "sh", Args: long, CreatedAt: time.Now()}}

	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)
	require.NoError(t, p.PrintRunList(runs))
	assert.Contains(t, b.String(), "…")
}

func TestTablePrinter_PrintRun(t *testing.T) {
	run := model.Run{
		ID:          "01J0000000000000000000RUN1",
		Program:     "psql",
		Args:        []string{"-h", "db.internal"},
		WorkingDir:  "/srv/app",
		Status:      model.RunStatusDone,
		ExitCode:    0,
		OutputBytes: 128,
		CreatedAt:   time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Duration:    time.Second,
	}

	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)
	require.NoError(t, p.PrintRun(run))

	out := b.String()
	assert.Contains(t, out, "psql -h db.internal")
	assert.Contains(t, out, "Workdir:     /srv/app")
	assert.Contains(t, out, "Status:      done")
	assert.Contains(t, out, "2026-08-20 10:00:00 UTC")
}

func TestJSONPrinter_PrintRunList(t *testing.T) {
	runs := []model.Run{
		{
			ID:          "id1",
			Program:     "echo",
			Args:        []string{"hello"},
			Status:      model.RunStatusDone,
			OutputBytes: 6,
			CreatedAt:   time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
			Duration:    1500 * time.Millisecond,
		},
	}

	var b bytes.Buffer
	p := printer.NewJSONPrinter(&b)
	require.NoError(t, p.PrintRunList(runs))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "id1", decoded[0]["id"])
	assert.Equal(t, "echo", decoded[0]["program"])
	assert.Equal(t, "done", decoded[0]["status"])
	assert.Equal(t, float64(1500), decoded[0]["duration_ms"])
}

func TestJSONPrinter_PrintMessage(t *testing.T) {
	var b bytes.Buffer
	p := printer.NewJSONPrinter(&b)
	require.NoError(t, p.PrintMessage("history cleared"))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(b.Bytes(), &decoded))
	assert.Equal(t, "history cleared", decoded["message"])
}
