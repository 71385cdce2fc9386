package runner

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/runx/internal/log"
	"github.com/slok/runx/internal/progress"
)

// recordingSink captures every sink call for assertions.
type recordingSink struct {
	mu       sync.Mutex
	props    map[string][]string
	statuses []progress.Status
	printed  []string
	redraws  int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{props: map[string][]string{}}
}

func (s *recordingSink) SetProperty(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[key] = append(s.props[key], value)
}

func (s *recordingSink) SetStatus(status progress.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *recordingSink) RequestRedraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redraws++
}

func (s *recordingSink) PrintAbove(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printed = append(s.printed, text)
}

func (s *recordingSink) Printed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.printed...)
}

func (s *recordingSink) Props(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.props[key]...)
}

func (s *recordingSink) Statuses() []progress.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]progress.Status{}, s.statuses...)
}

func TestLinePump(t *testing.T) {
	tests := map[string]struct {
		input            string
		secrets          []string
		toStderr         bool
		stderrToProgress bool
		expStdout        string
		expStderr        string
		expCombined      string
		expProps         []string
		expPrinted       []string
	}{
		"Lines should be captured with a trailing newline each": {
			input:       "one\ntwo\n",
			expStdout:   "one\ntwo\n",
			expCombined: "one\ntwo\n",
			expProps:    []string{"one", "two"},
		},

		"A final line without trailing newline should still be yielded": {
			input:       "one\ntwo",
			expStdout:   "one\ntwo\n",
			expCombined: "one\ntwo\n",
			expProps:    []string{"one", "two"},
		},

		"Secrets should be redacted before storage and forwarding": {
			input:       "token sk-123 ok\n",
			secrets:     []string{"sk-123"},
			expStdout:   "token [redacted] ok\n",
			expCombined: "token [redacted] ok\n",
			expProps:    []string{"token [redacted] ok"},
		},

		"Stderr lines should print above the display by default": {
			input:       "warn\n",
			toStderr:    true,
			expStderr:   "warn\n",
			expCombined: "warn\n",
			expPrinted:  []string{"warn"},
		},

		"Stderr lines should update the live output when routed to progress": {
			input:            "warn\n",
			toStderr:         true,
			stderrToProgress: true,
			expStderr:        "warn\n",
			expCombined:      "warn\n",
			expProps:         []string{"warn"},
		},

		"An empty stream should produce nothing": {
			input: "",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			out := &output{}
			sink := newRecordingSink()
			secrets := &redactionSet{}
			secrets.add(test.secrets...)

			pump := &linePump{
				out:              out,
				secrets:          secrets,
				sink:             sink,
				logger:           log.Noop,
				toStderr:         test.toStderr,
				stderrToProgress: test.stderrToProgress,
			}
			pump.run(strings.NewReader(test.input))

			result := out.result()
			assert.Equal(test.expStdout, result.Stdout)
			assert.Equal(test.expStderr, result.Stderr)
			assert.Equal(test.expCombined, result.Combined)
			assert.Equal(test.expProps, emptyAsNil(sink.Props(progress.PropStdout)))
			assert.Equal(test.expPrinted, emptyAsNil(sink.Printed()))
		})
	}
}

func emptyAsNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestLinePumpLongLines(t *testing.T) {
	// A single line far bigger than any internal buffer must be captured
	// whole and must not stop the drain.
	long := strings.Repeat("a", 3<<20)

	out := &output{}
	pump := &linePump{
		out:     out,
		secrets: &redactionSet{},
		sink:    newRecordingSink(),
		logger:  log.Noop,
	}
	pump.run(strings.NewReader(long + "\ndone\n"))

	result := out.result()
	assert.Equal(t, long+"\ndone\n", result.Stdout)
}

func TestOutputCombinedReflectsArrivalOrder(t *testing.T) {
	out := &output{}

	out.append("from stdout", false)
	out.append("from stderr", true)
	out.append("stdout again", false)

	result := out.result()
	assert.Equal(t, "from stdout\nstdout again\n", result.Stdout)
	assert.Equal(t, "from stderr\n", result.Stderr)
	assert.Equal(t, "from stdout\nfrom stderr\nstdout again\n", result.Combined)
}
