package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xabinapal/ffpm/internal/config"
	"github.com/xabinapal/ffpm/internal/launcher"
)

const testINI = `[Profile1]
Name=work
IsRelative=1
Path=abcd1234.work

[Profile0]
Name=default-release
IsRelative=1
Path=7sk2lq0a.default-release
Default=1

[General]
StartWithLastProfile=1
Version=2

`

type fakeProcess int

func (p fakeProcess) Pid() int { return int(p) }

// fakeRunner records launches instead of spawning processes.
type fakeRunner struct {
	missing  bool
	started  []string
	lastArgs []string
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.missing {
		return "", errors.New("executable file not found in $PATH")
	}
	if filepath.IsAbs(file) {
		return file, nil
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeRunner) StartDetached(name string, args ...string) (launcher.Process, error) {
	f.started = append(f.started, name)
	f.lastArgs = args
	return fakeProcess(4242), nil
}

// mockNotifier records every notification.
type mockNotifier struct {
	events []string
}

func (m *mockNotifier) NotifyLaunched(profile string, pid int) error {
	m.events = append(m.events, "launched:"+profile)
	return nil
}

func (m *mockNotifier) NotifyCreated(profile string) error {
	m.events = append(m.events, "created:"+profile)
	return nil
}

func (m *mockNotifier) NotifyRenamed(from, to string) error {
	m.events = append(m.events, "renamed:"+from+">"+to)
	return nil
}

func (m *mockNotifier) NotifyDeleted(profile string) error {
	m.events = append(m.events, "deleted:"+profile)
	return nil
}

func (m *mockNotifier) NotifyDefault(profile string) error {
	m.events = append(m.events, "default:"+profile)
	return nil
}

func (m *mockNotifier) NotifyFailure(action string, err error) error {
	m.events = append(m.events, "failed:"+action)
	return nil
}

// testEnv is a CLI wired to a temporary config directory and profiles.ini.
type testEnv struct {
	cli      *CLI
	runner   *fakeRunner
	notifier *mockNotifier
	out      *bytes.Buffer
	errOut   *bytes.Buffer
	iniPath  string
}

func newTestEnv(t *testing.T, iniContent string) *testEnv {
	t.Helper()

	t.Setenv(config.EnvConfigDir, t.TempDir())
	t.Setenv(config.EnvProfilesINI, "")

	dir := t.TempDir()
	iniPath := filepath.Join(dir, "profiles.ini")
	if iniContent != "" {
		if err := os.WriteFile(iniPath, []byte(iniContent), 0644); err != nil {
			t.Fatalf("failed to write profiles.ini: %v", err)
		}
	}

	env := &testEnv{
		runner:   &fakeRunner{},
		notifier: &mockNotifier{},
		out:      &bytes.Buffer{},
		errOut:   &bytes.Buffer{},
		iniPath:  iniPath,
	}
	env.cli = &CLI{
		Runner:     env.runner,
		Notifier:   env.notifier,
		in:         strings.NewReader(""),
		out:        env.out,
		errOut:     env.errOut,
		isTerminal: func() bool { return false },
		flags: globalFlags{
			output:   string(OutputFormatText),
			registry: iniPath,
		},
	}
	return env
}

// run executes one command line on a fresh command tree.
func (e *testEnv) run(args ...string) error {
	e.out.Reset()
	e.errOut.Reset()
	root := e.cli.newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func (e *testEnv) readINI(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.iniPath)
	if err != nil {
		t.Fatalf("failed to read profiles.ini: %v", err)
	}
	return string(data)
}
