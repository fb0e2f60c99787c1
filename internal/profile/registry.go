// Package profile manages the Firefox profile registry (profiles.ini) and the
// profile directories it points to.
//
// Every operation reloads the file, applies its change and rewrites the whole
// file. Nothing is cached between calls, and the file is not locked against a
// running Firefox writing it at the same time.
package profile

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/xabinapal/ffpm/internal/filex"
	"github.com/xabinapal/ffpm/internal/ini"
	"github.com/xabinapal/ffpm/internal/launcher"
	"github.com/xabinapal/ffpm/internal/logging"
)

// DefaultExecutable is launched when no executable is given.
const DefaultExecutable = "firefox"

// Record is a profile as listed in the registry, annotated with what is
// known about its directory on disk.
type Record struct {
	Name       string `json:"name" yaml:"name"`
	Path       string `json:"path" yaml:"path"`
	IsDefault  bool   `json:"default" yaml:"default"`
	IsRelative bool   `json:"is_relative" yaml:"is_relative"`

	// Dir is the absolute profile directory.
	Dir string `json:"dir" yaml:"dir"`
	// Modified is the directory's modification time, zero when unknown.
	Modified time.Time `json:"modified" yaml:"modified"`
	Exists   bool      `json:"exists" yaml:"exists"`
}

// DeleteResult reports a completed delete.
type DeleteResult struct {
	Record Record
	// DirWarning is set when the registry entry was removed but the
	// directory could not be.
	DirWarning error
}

// LaunchResult reports a started browser.
type LaunchResult struct {
	Record     Record   `json:"profile" yaml:"profile"`
	PID        int      `json:"pid" yaml:"pid"`
	Executable string   `json:"executable" yaml:"executable"`
	Args       []string `json:"args" yaml:"args"`
}

// Registry reads and rewrites one profiles.ini file.
type Registry struct {
	path string
	root string

	fs     filex.FS
	runner launcher.Runner
	logger *logging.Logger

	protectDefault bool
	seedFiles      bool
	newInstance    bool
	extraArgs      []string

	newPrefix func() string
	now       func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithFS sets the filesystem provider.
func WithFS(fsys filex.FS) Option {
	return func(r *Registry) {
		r.fs = fsys
	}
}

// WithRunner sets the process launcher.
func WithRunner(runner launcher.Runner) Option {
	return func(r *Registry) {
		r.runner = runner
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithProtectDefault controls whether the default profile may be renamed or
// deleted. Protection is on unless disabled.
func WithProtectDefault(protect bool) Option {
	return func(r *Registry) {
		r.protectDefault = protect
	}
}

// WithSeedFiles controls whether new profile directories get a starter
// prefs.js, user.js and times.json.
func WithSeedFiles(seed bool) Option {
	return func(r *Registry) {
		r.seedFiles = seed
	}
}

// WithLaunchArgs sets the arguments passed after "-P <name>".
func WithLaunchArgs(newInstance bool, extra ...string) Option {
	return func(r *Registry) {
		r.newInstance = newInstance
		r.extraArgs = append([]string(nil), extra...)
	}
}

// WithIDGenerator replaces the random directory prefix source.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) {
		r.newPrefix = gen
	}
}

// WithClock replaces the clock used for times.json.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New creates a Registry for the profiles.ini at iniPath. Relative profile
// paths resolve against the file's directory.
func New(iniPath string, opts ...Option) *Registry {
	r := &Registry{
		path:           iniPath,
		root:           filepath.Dir(iniPath),
		fs:             filex.OS{},
		runner:         launcher.New(),
		logger:         logging.Discard(),
		protectDefault: true,
		seedFiles:      true,
		newInstance:    true,
		newPrefix:      randomPrefix,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the profiles.ini path.
func (r *Registry) Path() string {
	return r.path
}

// Root returns the directory relative profile paths resolve against.
func (r *Registry) Root() string {
	return r.root
}

// Load reads and parses the registry file. A missing file is an empty
// registry; nothing is written. A malformed file fails with *ini.ParseError.
func (r *Registry) Load() (*ini.Document, error) {
	data, err := r.fs.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("registry file not found, starting empty", logging.Fields{"path": r.path})
			return &ini.Document{}, nil
		}
		return nil, ioError("read "+r.path, err)
	}

	doc, err := ini.Parse(data)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("registry loaded", logging.Fields{"path": r.path, "profiles": len(doc.Profiles())})
	return doc, nil
}

// Save encodes doc and atomically replaces the registry file with it.
func (r *Registry) Save(doc *ini.Document) error {
	if err := r.fs.MkdirAll(r.root, 0700); err != nil {
		return ioError("create "+r.root, err)
	}
	if err := r.fs.WriteFileAtomic(r.path, ini.Encode(doc), 0644); err != nil {
		return ioError("write "+r.path, err)
	}
	r.logger.Debug("registry saved", logging.Fields{"path": r.path, "profiles": len(doc.Profiles())})
	return nil
}

// List returns all profiles in file order.
func (r *Registry) List() ([]Record, error) {
	doc, err := r.Load()
	if err != nil {
		return nil, err
	}

	profiles := doc.Profiles()
	records := make([]Record, 0, len(profiles))
	for _, p := range profiles {
		records = append(records, r.record(p))
	}
	return records, nil
}

// Get returns the profile with the given name.
func (r *Registry) Get(name string) (Record, error) {
	doc, err := r.Load()
	if err != nil {
		return Record{}, err
	}

	p := doc.FindProfile(name)
	if p == nil {
		return Record{}, notFound(name)
	}
	return r.record(p), nil
}

// Dir resolves a profile section's directory.
func (r *Registry) Dir(p *ini.ProfileSection) string {
	if p.IsRelative {
		return filepath.Join(r.root, filepath.FromSlash(p.Path))
	}
	return filepath.Clean(p.Path)
}

func (r *Registry) record(p *ini.ProfileSection) Record {
	rec := Record{
		Name:       p.Name,
		Path:       p.Path,
		IsDefault:  p.Default,
		IsRelative: p.IsRelative,
		Dir:        r.Dir(p),
	}

	if ok, err := r.fs.DirExists(rec.Dir); err == nil && ok {
		rec.Exists = true
		if mt, err := r.fs.ModTime(rec.Dir); err == nil {
			rec.Modified = mt
		}
	}
	return rec
}
