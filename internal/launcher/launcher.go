// Package launcher starts external programs detached from the calling process.
package launcher

import (
	"os"
	"os/exec"
)

// Runner looks up and starts executables.
// This allows mocking in tests without actually spawning processes.
type Runner interface {
	// LookPath finds the executable in PATH
	LookPath(file string) (string, error)
	// StartDetached starts name with args and returns without waiting for it
	StartDetached(name string, args ...string) (Process, error)
}

// Process represents a started process.
type Process interface {
	// Pid returns the process identifier
	Pid() int
}

// execRunner is the real implementation using os/exec.
type execRunner struct{}

// New creates a Runner backed by os/exec.
func New() Runner {
	return &execRunner{}
}

func (r *execRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// StartDetached starts the command with no stdio attached and in its own
// process group where the platform supports it. The child is reaped in the
// background so it never lingers as a zombie.
func (r *execRunner) StartDetached(name string, args ...string) (Process, error) {
	// #nosec G204 - name is resolved through LookPath by the caller
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	go func() {
		_ = cmd.Wait()
	}()

	return &execProcess{proc: cmd.Process}, nil
}

// execProcess wraps os.Process to implement the Process interface.
type execProcess struct {
	proc *os.Process
}

func (p *execProcess) Pid() int {
	return p.proc.Pid
}
