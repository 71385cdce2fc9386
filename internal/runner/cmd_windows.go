//go:build windows

package runner

import "os/exec"

// Programs are wrapped through the system command interpreter so shell
// builtins and batch files resolve.
func newOSCmd(program string) *exec.Cmd {
	return exec.Command("cmd.exe", "/c", program)
}
