package progress_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/runx/internal/progress"
)

func TestTermSinkRendering(t *testing.T) {
	tests := map[string]struct {
		actions        func(s *progress.TermSink)
		expContains    []string
		expNotContains []string
	}{
		"Setting the command and redrawing should render the command line": {
			actions: func(s *progress.TermSink) {
				s.SetProperty(progress.PropCommand, "echo hello")
				s.SetStatus(progress.StatusRunning)
				s.RequestRedraw()
			},
			expContains: []string{"…", "echo hello"},
		},

		"Output lines should be appended to the status line": {
			actions: func(s *progress.TermSink) {
				s.SetProperty(progress.PropCommand, "make build")
				s.SetProperty(progress.PropStdout, "compiling...")
				s.RequestRedraw()
			},
			expContains: []string{"make build: compiling..."},
		},

		"Printing above should keep the text before the status line": {
			actions: func(s *progress.TermSink) {
				s.SetProperty(progress.PropCommand, "make test")
				s.PrintAbove("warning: flaky test")
			},
			expContains: []string{"warning: flaky test\n"},
		},

		"Done status should render a success marker": {
			actions: func(s *progress.TermSink) {
				s.SetProperty(progress.PropCommand, "true")
				s.SetStatus(progress.StatusDone)
			},
			expContains:    []string{"✔"},
			expNotContains: []string{"✖"},
		},

		"Failed status should render a failure marker": {
			actions: func(s *progress.TermSink) {
				s.SetProperty(progress.PropCommand, "false")
				s.SetStatus(progress.StatusFailed)
			},
			expContains: []string{"✖"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var buf bytes.Buffer
			sink := progress.NewTermSink(&buf, true)
			test.actions(sink)

			got := buf.String()
			for _, s := range test.expContains {
				assert.Contains(got, s)
			}
			for _, s := range test.expNotContains {
				assert.NotContains(got, s)
			}
		})
	}
}

func TestTermSinkNoColorHasNoANSIColors(t *testing.T) {
	var buf bytes.Buffer
	sink := progress.NewTermSink(&buf, true)
	sink.SetProperty(progress.PropCommand, "ls")
	sink.SetStatus(progress.StatusDone)

	assert.False(t, strings.Contains(buf.String(), "\x1b[32m"))
}

func TestTermSinkColor(t *testing.T) {
	var buf bytes.Buffer
	sink := progress.NewTermSink(&buf, false)
	sink.SetProperty(progress.PropCommand, "ls")
	sink.SetStatus(progress.StatusFailed)

	assert.Contains(t, buf.String(), "\x1b[31m")
}

func TestNoopSinkDiscardsEverything(t *testing.T) {
	// Mostly asserts the noop sink doesn't panic.
	progress.Noop.SetProperty("k", "v")
	progress.Noop.SetStatus(progress.StatusRunning)
	progress.Noop.RequestRedraw()
	progress.Noop.PrintAbove("text")
}
