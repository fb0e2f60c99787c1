//go:build !windows

package launcher

import (
	"os/exec"
	"syscall"
)

// detach puts the child in its own process group so it outlives the terminal.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
