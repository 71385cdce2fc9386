package runner

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/slok/runx/internal/log"
	"github.com/slok/runx/internal/model"
	"github.com/slok/runx/internal/progress"
)

// output accumulates the captured streams of a single run. One mutex guards
// the per stream buffers and the combined transcript, so the combined order
// always reflects cross stream arrival order. The lock is never held across
// a read of the child's pipes.
type output struct {
	mu       sync.Mutex
	stdout   strings.Builder
	stderr   strings.Builder
	combined strings.Builder
}

func (o *output) append(line string, toStderr bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if toStderr {
		o.stderr.WriteString(line)
		o.stderr.WriteByte('\n')
	} else {
		o.stdout.WriteString(line)
		o.stdout.WriteByte('\n')
	}
	o.combined.WriteString(line)
	o.combined.WriteByte('\n')
}

// result snapshots the accumulated output. Only call it after every pump has
// finished.
func (o *output) result() model.RunResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	return model.RunResult{
		Stdout:   o.stdout.String(),
		Stderr:   o.stderr.String(),
		Combined: o.combined.String(),
	}
}

// linePump drains one output stream of the child line by line, redacts every
// line and stores it in the shared output before forwarding it to the
// progress sink.
type linePump struct {
	out      *output
	secrets  *redactionSet
	sink     progress.Sink
	logger   log.Logger
	toStderr bool
	// stderrToProgress routes stderr lines into the sink's live output
	// property instead of printing them above the display.
	stderrToProgress bool
}

// run reads r until end of input. A final line without a trailing newline is
// still yielded; every stored line gets a trailing newline appended. Lines of
// any length are handled, the stream is always drained to end of input so the
// child never blocks on a full pipe.
func (p *linePump) run(r io.Reader) {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			line = p.secrets.redact(line)
			p.out.append(line, p.toStderr)
			p.publish(line)
		}

		if err != nil {
			if err != io.EOF {
				p.logger.Debugf("Stream read ended with error: %v", err)
			}
			return
		}
	}
}

func (p *linePump) publish(line string) {
	if !p.toStderr || p.stderrToProgress {
		p.sink.SetProperty(progress.PropStdout, line)
		p.sink.RequestRedraw()
		return
	}

	p.sink.PrintAbove(line)
}
