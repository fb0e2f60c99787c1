//go:build integration

// Package integration runs the built ffpm binary against temporary
// Firefox installations.
package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeFirefox records its arguments, one line per launch.
const fakeFirefox = `#!/bin/sh
echo "$@" >> "$FFPM_TEST_LAUNCH_LOG"
`

// TestEnv is an isolated home directory with a profiles.ini location and a
// fake firefox on PATH.
type TestEnv struct {
	Home      string
	ConfigDir string
	Registry  string
	BinDir    string
	LaunchLog string
}

// NewTestEnv creates a test environment. The registry file is not created.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake firefox script needs a POSIX shell")
	}

	home := t.TempDir()
	env := &TestEnv{
		Home:      home,
		ConfigDir: filepath.Join(home, ".config", "ffpm"),
		Registry:  filepath.Join(home, ".mozilla", "firefox", "profiles.ini"),
		BinDir:    filepath.Join(home, "bin"),
		LaunchLog: filepath.Join(home, "launches.log"),
	}

	if err := os.MkdirAll(env.BinDir, 0700); err != nil {
		t.Fatalf("failed to create bin dir: %v", err)
	}
	// #nosec G306 - the fake browser must be executable
	if err := os.WriteFile(filepath.Join(env.BinDir, "firefox"), []byte(fakeFirefox), 0700); err != nil {
		t.Fatalf("failed to write fake firefox: %v", err)
	}

	return env
}

// WriteRegistry writes profiles.ini with the given content.
func (e *TestEnv) WriteRegistry(t *testing.T, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(e.Registry), 0700); err != nil {
		t.Fatalf("failed to create registry dir: %v", err)
	}
	if err := os.WriteFile(e.Registry, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write profiles.ini: %v", err)
	}
}

// ReadRegistry returns the current profiles.ini content.
func (e *TestEnv) ReadRegistry(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.Registry)
	if err != nil {
		t.Fatalf("failed to read profiles.ini: %v", err)
	}
	return string(data)
}

// Launches returns the argument lines recorded by the fake firefox. The
// browser is started detached, so this polls briefly.
func (e *TestEnv) Launches(t *testing.T, want int) []string {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		data, err := os.ReadFile(e.LaunchLog)
		if err == nil {
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) >= want || time.Now().After(deadline) {
				return lines
			}
		} else if time.Now().After(deadline) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Run runs ffpm with the given arguments inside the environment.
func (e *TestEnv) Run(ctx context.Context, t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.CommandContext(ctx, BinaryPath(t), args...)
	cmd.Env = append(os.Environ(),
		"HOME="+e.Home,
		"XDG_CONFIG_HOME="+filepath.Join(e.Home, ".config"),
		"XDG_DATA_HOME="+filepath.Join(e.Home, ".local", "share"),
		"FFPM_CONFIG_DIR="+e.ConfigDir,
		"FFPM_PROFILES_INI="+e.Registry,
		"FFPM_TEST_LAUNCH_LOG="+e.LaunchLog,
		"PATH="+e.BinDir+string(os.PathListSeparator)+os.Getenv("PATH"),
	)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// MustRun runs ffpm and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(ctx context.Context, t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := e.Run(ctx, t, args...)
	if err != nil {
		t.Fatalf("ffpm %s failed: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, stdout, stderr)
	}
	return stdout
}

// BinaryPath returns the path to the ffpm binary.
func BinaryPath(t *testing.T) string {
	t.Helper()

	// Check if FFPM_BINARY is set
	if path := os.Getenv("FFPM_BINARY"); path != "" {
		return path
	}

	// Try to find it relative to the test directory
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get caller information")
	}

	// Go up from test/integration to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	binaryPath := filepath.Join(projectRoot, "bin", "ffpm")

	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Fatalf("ffpm binary not found at %s - build it with 'go build -o bin/ffpm ./cmd/ffpm' first", binaryPath)
	}

	return binaryPath
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
