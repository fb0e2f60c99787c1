package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"

	"github.com/xabinapal/ffpm/internal/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Firefox.Binary != "firefox" {
		t.Errorf("expected Binary 'firefox', got %q", cfg.Firefox.Binary)
	}
	if !cfg.Firefox.NewInstance {
		t.Error("expected NewInstance to be true by default")
	}
	if !cfg.Profiles.ProtectDefault {
		t.Error("expected ProtectDefault to be true by default")
	}
	if !cfg.Profiles.SeedFiles {
		t.Error("expected SeedFiles to be true by default")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level 'warn', got %q", cfg.Log.Level)
	}
	if cfg.Notifications.Enabled {
		t.Error("expected notifications to be disabled by default")
	}
}

func TestLoadNonExistent(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if !cfg.Profiles.ProtectDefault {
		t.Error("expected default ProtectDefault")
	}
	if filepath.Base(cfg.FilePath()) != ConfigFileName {
		t.Errorf("expected FilePath to end in %s, got %s", ConfigFileName, cfg.FilePath())
	}
}

func TestLoadAndSave(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.SetFilePath(configFile)
	cfg.RegistryPath = "/srv/firefox/profiles.ini"
	cfg.Firefox.Binary = "firefox-esr"
	cfg.Firefox.ExtraArgs = []string{"-no-remote"}
	cfg.Profiles.ProtectDefault = false
	cfg.Notifications.Enabled = true

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(configFile)
		if err != nil {
			t.Fatalf("config file was not created: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
		}
	}

	loaded, err := LoadFrom(configFile)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if loaded.RegistryPath != "/srv/firefox/profiles.ini" {
		t.Errorf("expected RegistryPath, got %q", loaded.RegistryPath)
	}
	if loaded.Firefox.Binary != "firefox-esr" {
		t.Errorf("expected Binary 'firefox-esr', got %q", loaded.Firefox.Binary)
	}
	if len(loaded.Firefox.ExtraArgs) != 1 || loaded.Firefox.ExtraArgs[0] != "-no-remote" {
		t.Errorf("expected ExtraArgs [-no-remote], got %v", loaded.Firefox.ExtraArgs)
	}
	if loaded.Profiles.ProtectDefault {
		t.Error("expected ProtectDefault false to survive a round trip")
	}
	if !loaded.Profiles.SeedFiles {
		t.Error("expected SeedFiles true to survive a round trip")
	}
	if !loaded.Notifications.Enabled || !loaded.Notifications.OnLaunch {
		t.Errorf("expected notifications settings to survive, got %+v", loaded.Notifications)
	}
}

func TestLoadFromKeepsDefaultsForMissingKeys(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	content := "firefox:\n  binary: \"\"\nprofiles:\n  seed_files: false\nlog:\n  json: true\n"
	if err := os.WriteFile(configFile, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(configFile)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if cfg.Firefox.Binary != "firefox" {
		t.Errorf("expected empty binary to fall back to 'firefox', got %q", cfg.Firefox.Binary)
	}
	if !cfg.Firefox.NewInstance {
		t.Error("expected NewInstance default to be kept")
	}
	if cfg.Profiles.SeedFiles {
		t.Error("expected SeedFiles false from file")
	}
	if !cfg.Profiles.ProtectDefault {
		t.Error("expected ProtectDefault default to be kept")
	}
	if !cfg.Log.JSON || cfg.Log.Level != "warn" || cfg.Log.MaxSize != 10 {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("firefox: [unclosed"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := LoadFrom(configFile)
	if err == nil {
		t.Fatal("LoadFrom() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFromReadError(t *testing.T) {
	// A directory cannot be read as a file.
	_, err := LoadFrom(t.TempDir())
	if err == nil {
		t.Fatal("LoadFrom() expected error when path is a directory")
	}
}

func TestSaveWithoutFilePath(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Save(); err == nil {
		t.Error("Save() expected error without file path")
	}
}

func TestResolveRegistryPath(t *testing.T) {
	home, err := homedir.Dir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name     string
		override string
		env      string
		config   string
		want     string
	}{
		{
			name: "platform default",
			want: DefaultRegistryPath(),
		},
		{
			name:   "config file",
			config: "~/ff/profiles.ini",
			want:   filepath.Join(home, "ff", "profiles.ini"),
		},
		{
			name:   "environment beats config",
			env:    filepath.Join(string(filepath.Separator)+"env", "profiles.ini"),
			config: "~/ff/profiles.ini",
			want:   filepath.Join(string(filepath.Separator)+"env", "profiles.ini"),
		},
		{
			name:     "flag beats everything",
			override: filepath.Join(string(filepath.Separator)+"flag", "profiles.ini"),
			env:      filepath.Join(string(filepath.Separator)+"env", "profiles.ini"),
			config:   "~/ff/profiles.ini",
			want:     filepath.Join(string(filepath.Separator)+"flag", "profiles.ini"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvProfilesINI, tt.env)
			cfg := Default()
			cfg.RegistryPath = tt.config

			got, err := cfg.ResolveRegistryPath(tt.override)
			if err != nil {
				t.Fatalf("ResolveRegistryPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveRegistryPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Log.JSON = true
	cfg.Log.MaxSize = 2

	lc, err := cfg.LoggerConfig()
	if err != nil {
		t.Fatalf("LoggerConfig() error = %v", err)
	}
	if lc.Level != logging.LevelDebug {
		t.Errorf("expected debug level, got %v", lc.Level)
	}
	if !lc.JSON {
		t.Error("expected JSON mode")
	}
	if lc.MaxSize != 2*1024*1024 {
		t.Errorf("expected MaxSize 2MB, got %d", lc.MaxSize)
	}

	cfg.Log.Level = "loud"
	if _, err := cfg.LoggerConfig(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestExecutable(t *testing.T) {
	f := FirefoxConfig{}
	if got := f.Executable(); got != "firefox" {
		t.Errorf("Executable() = %q, want firefox", got)
	}

	f.Binary = "firefox-developer-edition"
	if got := f.Executable(); got != "firefox-developer-edition" {
		t.Errorf("Executable() = %q", got)
	}
}

func TestValidateBinaryPath(t *testing.T) {
	tmpDir := t.TempDir()

	firefoxPath := filepath.Join(tmpDir, "firefox")
	if runtime.GOOS == "windows" {
		firefoxPath += ".exe"
	}
	if err := os.WriteFile(firefoxPath, []byte("#!/bin/sh\necho fake firefox"), 0755); err != nil {
		t.Fatalf("failed to create fake firefox binary: %v", err)
	}

	dirPath := filepath.Join(tmpDir, "firefox-dir")
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	tests := []struct {
		name       string
		binaryPath string
		wantErr    bool
	}{
		{name: "empty path (uses default)", binaryPath: "", wantErr: false},
		{name: "bare name (looked up in PATH)", binaryPath: "firefox-esr", wantErr: false},
		{name: "relative path", binaryPath: "bin/firefox", wantErr: true},
		{name: "absolute path to executable", binaryPath: firefoxPath, wantErr: false},
		{name: "path traversal", binaryPath: tmpDir + "/../" + filepath.Base(tmpDir) + "/firefox", wantErr: true},
		{name: "non-existent path", binaryPath: filepath.Join(tmpDir, "nonexistent", "firefox"), wantErr: true},
		{name: "directory instead of file", binaryPath: dirPath, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &FirefoxConfig{Binary: tt.binaryPath}
			err := f.ValidateBinaryPath()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBinaryPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrInvalidBinaryPath) {
				t.Errorf("ValidateBinaryPath() error should wrap ErrInvalidBinaryPath, got %v", err)
			}
		})
	}

	if runtime.GOOS != "windows" {
		t.Run("non-executable file", func(t *testing.T) {
			nonExec := filepath.Join(tmpDir, "firefox-noexec")
			if err := os.WriteFile(nonExec, []byte("not executable"), 0644); err != nil {
				t.Fatalf("failed to create non-executable file: %v", err)
			}

			f := &FirefoxConfig{Binary: nonExec}
			if err := f.ValidateBinaryPath(); !errors.Is(err, ErrInvalidBinaryPath) {
				t.Errorf("ValidateBinaryPath() should fail with ErrInvalidBinaryPath, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: true},
		{name: "negative max size", mutate: func(c *Config) { c.Log.MaxSize = -1 }, wantErr: true},
		{name: "profile flag in extra args", mutate: func(c *Config) { c.Firefox.ExtraArgs = []string{"-P", "x"} }, wantErr: true},
		{name: "relative binary path", mutate: func(c *Config) { c.Firefox.Binary = "./firefox" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
