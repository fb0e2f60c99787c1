// Package config provides configuration management for ffpm.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

const (
	// AppName is the application name used for directories.
	AppName = "ffpm"
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "config.yaml"
	// HistoryFileName is the shell history file name inside the data directory.
	HistoryFileName = "shell_history"

	// EnvConfigDir overrides the configuration directory.
	EnvConfigDir = "FFPM_CONFIG_DIR"
	// EnvProfilesINI overrides the registry file location.
	EnvProfilesINI = "FFPM_PROFILES_INI"
)

// Paths holds all the application paths.
type Paths struct {
	ConfigDir   string
	DataDir     string
	ConfigFile  string
	HistoryFile string
}

// GetPaths returns the application paths following the XDG Base Directory
// specification, with the platform conventions adrg/xdg applies on macOS
// and Windows.
func GetPaths() Paths {
	configDir := getConfigDir()
	dataDir := getDataDir()
	return Paths{
		ConfigDir:   configDir,
		DataDir:     dataDir,
		ConfigFile:  filepath.Join(configDir, ConfigFileName),
		HistoryFile: filepath.Join(dataDir, HistoryFileName),
	}
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	if xdg.ConfigHome != "" {
		return filepath.Join(xdg.ConfigHome, AppName)
	}
	return filepath.Join(".", "."+AppName)
}

// getDataDir returns the data directory path.
func getDataDir() string {
	if xdg.DataHome != "" {
		return filepath.Join(xdg.DataHome, AppName)
	}
	return filepath.Join(".", "."+AppName, "data")
}

// EnsureDirs creates all necessary directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRegistryPath returns where Firefox keeps profiles.ini on this platform.
func DefaultRegistryPath() string {
	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Mozilla", "Firefox", "profiles.ini")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Firefox", "profiles.ini")
	default:
		return filepath.Join(home, ".mozilla", "firefox", "profiles.ini")
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	return homedir.Expand(path)
}
