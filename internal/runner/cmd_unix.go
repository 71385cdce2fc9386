//go:build !windows

package runner

import "os/exec"

func newOSCmd(program string) *exec.Cmd {
	return exec.Command(program)
}
