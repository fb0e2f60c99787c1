package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	want := runtime.GOOS + "/" + runtime.GOARCH
	if info.Platform != want {
		t.Errorf("Platform = %q, want %q", info.Platform, want)
	}
}

func TestInfoStrings(t *testing.T) {
	info := Info{
		Version:   "v1.2.3",
		Commit:    "abc1234",
		Date:      "2024-05-01",
		GoVersion: "go1.25.5",
		Platform:  "linux/amd64",
	}

	if got, want := info.Short(), "ffpm v1.2.3"; got != want {
		t.Errorf("Short() = %q, want %q", got, want)
	}

	str := info.String()
	for _, part := range []string{"ffpm", "v1.2.3", "abc1234", "2024-05-01", "go1.25.5", "linux/amd64"} {
		if !strings.Contains(str, part) {
			t.Errorf("String() = %q, missing %q", str, part)
		}
	}
}

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
		},
	}

	t.Run("fills defaults", func(t *testing.T) {
		info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
		fillFromBuildInfo(&info, bi)

		if info.Version != "v0.4.0" {
			t.Errorf("Version = %q, want %q", info.Version, "v0.4.0")
		}
		if info.Commit != "0123456789ab" {
			t.Errorf("Commit = %q, want %q", info.Commit, "0123456789ab")
		}
		if info.Date != "2024-05-01T10:00:00Z" {
			t.Errorf("Date = %q, want %q", info.Date, "2024-05-01T10:00:00Z")
		}
	})

	t.Run("keeps ldflags values", func(t *testing.T) {
		info := Info{Version: "v9.9.9", Commit: "deadbee", Date: "2020-01-01"}
		fillFromBuildInfo(&info, bi)

		if info.Version != "v9.9.9" || info.Commit != "deadbee" || info.Date != "2020-01-01" {
			t.Errorf("ldflags values overwritten: %+v", info)
		}
	})

	t.Run("ignores devel version", func(t *testing.T) {
		info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
		fillFromBuildInfo(&info, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

		if info.Version != "dev" {
			t.Errorf("Version = %q, want %q", info.Version, "dev")
		}
	})
}
