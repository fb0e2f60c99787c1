package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xabinapal/ffpm/internal/filex"
	"github.com/xabinapal/ffpm/internal/logging"
)

// Validation errors.
var (
	// ErrInvalidBinaryPath indicates the browser binary path is not valid.
	ErrInvalidBinaryPath = errors.New("invalid binary path")
	// ErrInvalidConfig indicates a setting has an unusable value.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FirefoxConfig holds settings for launching the browser.
type FirefoxConfig struct {
	// Binary is the executable name or absolute path.
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty"`
	// NewInstance adds --new-instance so profiles open side by side.
	NewInstance bool `json:"new_instance" yaml:"new_instance"`
	// ExtraArgs are appended after the profile arguments.
	ExtraArgs []string `json:"extra_args,omitempty" yaml:"extra_args,omitempty"`
}

// ProfilesConfig holds settings for profile management.
type ProfilesConfig struct {
	// ProtectDefault refuses to rename or delete the default profile.
	ProtectDefault bool `json:"protect_default" yaml:"protect_default"`
	// SeedFiles writes starter files into new profile directories.
	SeedFiles bool `json:"seed_files" yaml:"seed_files"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// File is the log file path; empty logs to stderr.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	// JSON enables JSON-formatted logging.
	JSON bool `json:"json,omitempty" yaml:"json,omitempty"`
	// MaxSize is the maximum log file size in MB before rotation.
	MaxSize int `json:"max_size,omitempty" yaml:"max_size,omitempty"`
}

// NotificationConfig holds settings for desktop notifications.
type NotificationConfig struct {
	// Enabled enables desktop notifications.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// OnLaunch notifies when a browser is started.
	OnLaunch bool `json:"on_launch" yaml:"on_launch"`
	// OnChange notifies when a profile is created, renamed, deleted or made default.
	OnChange bool `json:"on_change" yaml:"on_change"`
	// OnFailure notifies when an operation fails.
	OnFailure bool `json:"on_failure" yaml:"on_failure"`
}

// Config represents the ffpm configuration.
type Config struct {
	// RegistryPath is the profiles.ini location; empty means the platform default.
	RegistryPath  string             `json:"registry_path,omitempty" yaml:"registry_path,omitempty"`
	Firefox       FirefoxConfig      `json:"firefox" yaml:"firefox"`
	Profiles      ProfilesConfig     `json:"profiles" yaml:"profiles"`
	Log           LogConfig          `json:"log" yaml:"log"`
	Notifications NotificationConfig `json:"notifications" yaml:"notifications"`

	// filePath is the path where this config was loaded from.
	filePath string `yaml:"-"`
}

// Default returns a new Config with default values.
func Default() *Config {
	paths := GetPaths()
	return &Config{
		Firefox: FirefoxConfig{
			Binary:      "firefox",
			NewInstance: true,
		},
		Profiles: ProfilesConfig{
			ProtectDefault: true,
			SeedFiles:      true,
		},
		Log: LogConfig{
			Level:   "warn",
			MaxSize: 10,
		},
		Notifications: NotificationConfig{
			Enabled:   false,
			OnLaunch:  true,
			OnChange:  true,
			OnFailure: true,
		},
		filePath: paths.ConfigFile,
	}
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	paths := GetPaths()
	return LoadFrom(paths.ConfigFile)
}

// LoadFrom loads the configuration from a specific path. Keys missing from
// the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	// #nosec G304 - path is the config file path (controlled, from user config directory)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Firefox.Binary == "" {
		cfg.Firefox.Binary = "firefox"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}

	return cfg, nil
}

// FilePath returns the path this config is loaded from and saved to.
func (c *Config) FilePath() string {
	return c.filePath
}

// SetFilePath changes where Save writes the config.
func (c *Config) SetFilePath(path string) {
	c.filePath = path
}

// Save writes the configuration to its file path.
func (c *Config) Save() error {
	if c.filePath == "" {
		return errors.New("config file path not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := filex.WriteFileAtomic(c.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// ResolveRegistryPath returns the profiles.ini location to use. The order
// is: override (the --registry flag), FFPM_PROFILES_INI, registry_path from
// the config file, then the platform default.
func (c *Config) ResolveRegistryPath(override string) (string, error) {
	path := override
	if path == "" {
		path = os.Getenv(EnvProfilesINI)
	}
	if path == "" {
		path = c.RegistryPath
	}
	if path == "" {
		return DefaultRegistryPath(), nil
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand registry path %q: %w", path, err)
	}
	return filepath.Clean(expanded), nil
}

// LogFile returns the expanded log file path, or "" for stderr.
func (c *Config) LogFile() (string, error) {
	if c.Log.File == "" {
		return "", nil
	}
	return ExpandPath(c.Log.File)
}

// LoggerConfig translates the log settings into a logging.Config.
func (c *Config) LoggerConfig() (logging.Config, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	file, err := c.LogFile()
	if err != nil {
		return logging.Config{}, fmt.Errorf("%w: log file: %v", ErrInvalidConfig, err)
	}
	return logging.Config{
		Level:   level,
		File:    file,
		JSON:    c.Log.JSON,
		MaxSize: int64(c.Log.MaxSize) * 1024 * 1024,
	}, nil
}

// ValidateBinaryPath validates that the browser binary path is safe to execute.
// A bare name is looked up in PATH at launch time; a path must be an absolute,
// clean path to an executable regular file.
func (f *FirefoxConfig) ValidateBinaryPath() error {
	binaryPath := f.Binary

	if binaryPath == "" {
		return nil
	}

	// A bare name is resolved through PATH.
	if binaryPath == filepath.Base(binaryPath) {
		return nil
	}

	expanded, err := ExpandPath(binaryPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBinaryPath, err)
	}
	binaryPath = expanded

	if !filepath.IsAbs(binaryPath) {
		return fmt.Errorf("%w: custom binary path must be absolute, got %q", ErrInvalidBinaryPath, binaryPath)
	}
	if strings.Contains(binaryPath, "..") || filepath.Clean(binaryPath) != binaryPath {
		return fmt.Errorf("%w: binary path contains suspicious components", ErrInvalidBinaryPath)
	}

	// Stat follows symlinks: /usr/bin/firefox is commonly a link into /usr/lib.
	info, err := os.Stat(binaryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: binary not found at %q", ErrInvalidBinaryPath, binaryPath)
		}
		return fmt.Errorf("%w: cannot access binary at %q: %v", ErrInvalidBinaryPath, binaryPath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %q is not a regular file", ErrInvalidBinaryPath, binaryPath)
	}

	// Windows uses file extensions instead of execute bits.
	if runtime.GOOS != "windows" {
		if info.Mode().Perm()&0111 == 0 {
			return fmt.Errorf("%w: %q is not executable", ErrInvalidBinaryPath, binaryPath)
		}
	}

	return nil
}

// Executable returns the configured binary with ~ expanded.
func (f *FirefoxConfig) Executable() string {
	if f.Binary == "" {
		return "firefox"
	}
	if expanded, err := ExpandPath(f.Binary); err == nil {
		return expanded
	}
	return f.Binary
}

// Validate checks every setting and returns all problems joined together.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Firefox.ValidateBinaryPath(); err != nil {
		errs = append(errs, err)
	}
	for _, arg := range c.Firefox.ExtraArgs {
		if arg == "-P" || arg == "-p" || arg == "--profile" || arg == "-profile" {
			errs = append(errs, fmt.Errorf("%w: firefox.extra_args must not select a profile (%s)", ErrInvalidConfig, arg))
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err))
	}
	if c.Log.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("%w: log.max_size must not be negative", ErrInvalidConfig))
	}
	if c.RegistryPath != "" {
		if _, err := ExpandPath(c.RegistryPath); err != nil {
			errs = append(errs, fmt.Errorf("%w: registry_path: %v", ErrInvalidConfig, err))
		}
	}

	return errors.Join(errs...)
}
