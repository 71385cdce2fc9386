package runner

import (
	"sort"
	"sync"
	"syscall"

	"github.com/slok/runx/internal/log"
)

// PIDRegistry tracks the PIDs of the child processes spawned through this
// package. A PID is present for exactly the interval between a successful
// spawn and post wait cleanup, so broadcast kill only ever targets live
// children. The zero value is ready to use.
type PIDRegistry struct {
	mu   sync.Mutex
	pids map[int]struct{}
}

// NewPIDRegistry creates an empty PID registry.
func NewPIDRegistry() *PIDRegistry {
	return &PIDRegistry{}
}

// defaultRegistry tracks every child spawned through commands that don't set
// an explicit registry.
var defaultRegistry = NewPIDRegistry()

// DefaultRegistry returns the process wide registry used by commands without
// an explicit one.
func DefaultRegistry() *PIDRegistry {
	return defaultRegistry
}

// Add registers a spawned child PID.
func (r *PIDRegistry) Add(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pids == nil {
		r.pids = map[int]struct{}{}
	}
	r.pids[pid] = struct{}{}
}

// Remove deregisters a child PID once its wait has resolved.
func (r *PIDRegistry) Remove(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pids, pid)
}

// Len returns the number of currently tracked children.
func (r *PIDRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pids)
}

// PIDs returns a sorted snapshot of the tracked children.
func (r *PIDRegistry) PIDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pids := make([]int, 0, len(r.pids))
	for pid := range r.pids {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// KillAll delivers the termination signal to every tracked child. Best
// effort: per PID failures are logged and skipped, it never returns an
// error. On Windows the signal is ignored and process trees are terminated
// unconditionally.
func (r *PIDRegistry) KillAll(sig syscall.Signal, logger log.Logger) {
	if logger == nil {
		logger = log.Noop
	}

	for _, pid := range r.PIDs() {
		logger.Debugf("Delivering %s to PID %d", sig, pid)
		if err := killPID(pid, sig); err != nil {
			logger.Debugf("Failed to kill PID %d: %v", pid, err)
		}
	}
}
