//go:build windows

package runner

import (
	"os/exec"
	"strconv"
	"syscall"
)

// Windows has no POSIX signals, so the whole process tree is terminated
// unconditionally.
func killPID(pid int, _ syscall.Signal) error {
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
