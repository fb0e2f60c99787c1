package launcher

import (
	"os/exec"
	"runtime"
	"testing"
)

func TestLookPathMissing(t *testing.T) {
	r := New()
	if _, err := r.LookPath("ffpm-definitely-not-a-real-binary"); err == nil {
		t.Error("LookPath() expected error for missing binary")
	}
}

func TestStartDetached(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell utility")
	}
	bin, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true not available")
	}

	r := New()
	proc, err := r.StartDetached(bin, "-P", "work")
	if err != nil {
		t.Fatalf("StartDetached() error = %v", err)
	}
	if proc.Pid() <= 0 {
		t.Errorf("Pid() = %d, want > 0", proc.Pid())
	}
}

func TestStartDetachedMissingBinary(t *testing.T) {
	r := New()
	if _, err := r.StartDetached("/nonexistent/path/to/firefox"); err == nil {
		t.Error("StartDetached() expected error for missing binary")
	}
}
