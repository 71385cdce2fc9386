package progress

import (
	"fmt"
	"io"
	"sync"
)

const (
	ansiEraseLine = "\r\x1b[2K"
	colorGreen    = "\x1b[32m"
	colorRed      = "\x1b[31m"
	colorYellow   = "\x1b[33m"
	colorReset    = "\x1b[0m"
)

// TermSink renders run progress as a single status line that is redrawn in
// place. Lines printed above the display are emitted first and the status
// line redrawn after them, so the transcript stays readable.
type TermSink struct {
	mu      sync.Mutex
	w       io.Writer
	noColor bool
	status  Status
	props   map[string]string
}

// NewTermSink creates a terminal progress sink writing to w.
func NewTermSink(w io.Writer, noColor bool) *TermSink {
	return &TermSink{
		w:       w,
		noColor: noColor,
		props:   map[string]string{},
	}
}

func (s *TermSink) SetProperty(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.props[key] = value
}

func (s *TermSink) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
	s.redraw()

	// Terminal states leave the status line behind.
	if status == StatusDone || status == StatusFailed {
		fmt.Fprintln(s.w)
	}
}

func (s *TermSink) RequestRedraw() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.redraw()
}

func (s *TermSink) PrintAbove(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.w, "%s%s\n", ansiEraseLine, text)
	s.redraw()
}

// redraw repaints the status line. Callers must hold the lock.
func (s *TermSink) redraw() {
	marker := s.marker()
	line := s.props[PropCommand]
	if out := s.props[PropStdout]; out != "" {
		line = fmt.Sprintf("%s: %s", line, out)
	}

	fmt.Fprintf(s.w, "%s%s %s", ansiEraseLine, marker, line)
}

func (s *TermSink) marker() string {
	var marker, color string
	switch s.status {
	case StatusDone:
		marker, color = "✔", colorGreen
	case StatusFailed:
		marker, color = "✖", colorRed
	default:
		marker, color = "…", colorYellow
	}

	if s.noColor {
		return marker
	}
	return color + marker + colorReset
}
