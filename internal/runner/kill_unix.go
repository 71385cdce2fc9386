//go:build !windows

package runner

import "syscall"

func killPID(pid int, sig syscall.Signal) error {
	return syscall.Kill(pid, sig)
}
