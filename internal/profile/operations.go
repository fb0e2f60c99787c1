package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/xabinapal/ffpm/internal/ini"
	"github.com/xabinapal/ffpm/internal/logging"
)

// maxPathAttempts bounds the search for an unused directory name.
const maxPathAttempts = 10

// Create adds a new relative, non-default profile and creates its directory.
// On failure the directory is removed again and the registry is unchanged.
func (r *Registry) Create(name string) (Record, error) {
	if err := ValidateName(name); err != nil {
		return Record{}, err
	}

	doc, err := r.Load()
	if err != nil {
		return Record{}, err
	}
	if doc.FindProfile(name) != nil {
		return Record{}, fmt.Errorf("%w: profile %q already exists", ErrValidation, name)
	}

	rootExisted, err := r.fs.DirExists(r.root)
	if err != nil {
		return Record{}, ioError("stat "+r.root, err)
	}

	section, err := r.allocate(doc, name)
	if err != nil {
		return Record{}, err
	}
	dir := r.Dir(section)

	if err := r.fs.MkdirAll(dir, 0700); err != nil {
		return Record{}, ioError("create "+dir, err)
	}
	rollback := func() {
		target := dir
		if !rootExisted {
			target = r.root
		}
		if err := r.fs.RemoveAll(target); err != nil {
			r.logger.Warn("failed to clean up after create", logging.Fields{"dir": target, "error": err.Error()})
		}
	}

	if r.seedFiles {
		if err := r.seed(dir, name); err != nil {
			rollback()
			return Record{}, err
		}
	}

	doc.AppendProfile(section)
	if err := r.Save(doc); err != nil {
		rollback()
		return Record{}, err
	}

	r.logger.Info("profile created", logging.Fields{"name": name, "path": section.Path})
	return r.record(section), nil
}

// allocate picks an unused directory name for a new profile.
func (r *Registry) allocate(doc *ini.Document, name string) (*ini.ProfileSection, error) {
	used := make(map[string]bool)
	for _, p := range doc.Profiles() {
		used[r.Dir(p)] = true
	}

	for i := 0; i < maxPathAttempts; i++ {
		section := &ini.ProfileSection{
			Name:       name,
			IsRelative: true,
			Path:       directoryName(r.newPrefix(), name),
		}
		dir := r.Dir(section)
		if used[dir] {
			continue
		}
		exists, err := r.fs.DirExists(dir)
		if err != nil {
			return nil, ioError("stat "+dir, err)
		}
		if !exists {
			return section, nil
		}
	}
	return nil, ioError("allocate directory", fmt.Errorf("no unused name for %q after %d attempts", name, maxPathAttempts))
}

type timesFile struct {
	Created  int64  `json:"created"`
	FirstUse *int64 `json:"firstUse"`
}

// seed writes the starter files of a new profile.
func (r *Registry) seed(dir, name string) error {
	prefs := fmt.Sprintf("// Firefox profile: %s\n"+
		"user_pref(\"browser.startup.page\", 1);\n"+
		"user_pref(\"browser.startup.homepage\", \"about:blank\");\n", name)

	times, err := json.Marshal(timesFile{Created: r.now().UnixMilli()})
	if err != nil {
		return err
	}

	files := []struct {
		name string
		data []byte
	}{
		{"prefs.js", []byte(prefs)},
		{"user.js", nil},
		{"times.json", append(times, '\n')},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := r.fs.WriteFile(path, f.data, 0600); err != nil {
			return ioError("write "+path, err)
		}
	}
	return nil
}

// Rename changes a profile's name. Its directory is left where it is.
func (r *Registry) Rename(oldName, newName string) (Record, error) {
	doc, err := r.Load()
	if err != nil {
		return Record{}, err
	}

	p := doc.FindProfile(oldName)
	if p == nil {
		return Record{}, notFound(oldName)
	}
	if oldName == newName {
		return r.record(p), nil
	}
	if r.protectDefault && p.Default {
		return Record{}, fmt.Errorf("%w: cannot rename %q", ErrDefaultProfile, oldName)
	}
	if err := ValidateName(newName); err != nil {
		return Record{}, err
	}
	if other := doc.FindProfile(newName); other != nil && other != p {
		return Record{}, fmt.Errorf("%w: profile %q already exists", ErrValidation, newName)
	}

	p.Name = newName
	if err := r.Save(doc); err != nil {
		return Record{}, err
	}

	r.logger.Info("profile renamed", logging.Fields{"from": oldName, "to": newName})
	return r.record(p), nil
}

// Delete removes a profile from the registry, then removes its directory.
// A directory that cannot be removed is reported in DeleteResult.DirWarning
// and does not fail the call.
func (r *Registry) Delete(name string) (DeleteResult, error) {
	doc, err := r.Load()
	if err != nil {
		return DeleteResult{}, err
	}

	p := doc.FindProfile(name)
	if p == nil {
		return DeleteResult{}, notFound(name)
	}
	if r.protectDefault && p.Default {
		return DeleteResult{}, fmt.Errorf("%w: cannot delete %q", ErrDefaultProfile, name)
	}

	rec := r.record(p)
	doc.RemoveProfile(p)
	if err := r.Save(doc); err != nil {
		return DeleteResult{}, err
	}
	r.logger.Info("profile deleted", logging.Fields{"name": name, "path": p.Path})

	result := DeleteResult{Record: rec}
	if err := r.removeDir(doc, rec.Dir); err != nil {
		result.DirWarning = err
		r.logger.Warn("profile directory not removed", logging.Fields{"dir": rec.Dir, "error": err.Error()})
	}
	return result, nil
}

// removeDir deletes a profile directory unless it is a filesystem root, the
// registry root, or still used by another profile.
func (r *Registry) removeDir(doc *ini.Document, dir string) error {
	clean := filepath.Clean(dir)
	if clean == filepath.Clean(r.root) || clean == filepath.Dir(clean) {
		return fmt.Errorf("refusing to remove %s", clean)
	}
	for _, other := range doc.Profiles() {
		if filepath.Clean(r.Dir(other)) == clean {
			return fmt.Errorf("refusing to remove %s: still used by profile %q", clean, other.Name)
		}
	}
	if err := r.fs.RemoveAll(clean); err != nil {
		return ioError("remove "+clean, err)
	}
	return nil
}

// SetDefault marks one profile as the default and clears the flag on all
// others. Install sections are left untouched.
func (r *Registry) SetDefault(name string) (Record, error) {
	doc, err := r.Load()
	if err != nil {
		return Record{}, err
	}

	target := doc.FindProfile(name)
	if target == nil {
		return Record{}, notFound(name)
	}
	for _, p := range doc.Profiles() {
		p.Default = p == target
	}
	if err := r.Save(doc); err != nil {
		return Record{}, err
	}

	r.logger.Info("default profile set", logging.Fields{"name": name})
	return r.record(target), nil
}

// Launch starts the browser on the named profile without waiting for it.
// An empty executable means DefaultExecutable.
func (r *Registry) Launch(name, executable string) (LaunchResult, error) {
	rec, err := r.Get(name)
	if err != nil {
		return LaunchResult{}, err
	}

	if executable == "" {
		executable = DefaultExecutable
	}
	resolved, err := r.runner.LookPath(executable)
	if err != nil {
		return LaunchResult{}, fmt.Errorf("%w: %s: %w", ErrExecutableNotFound, executable, err)
	}

	args := r.LaunchArgs(name)
	proc, err := r.runner.StartDetached(resolved, args...)
	if err != nil {
		return LaunchResult{}, fmt.Errorf("failed to start %s: %w", resolved, err)
	}
	if proc == nil {
		return LaunchResult{}, fmt.Errorf("failed to start %s: %w", resolved, errors.New("no process"))
	}

	r.logger.Info("browser launched", logging.Fields{"name": name, "executable": resolved, "pid": proc.Pid()})
	return LaunchResult{
		Record:     rec,
		PID:        proc.Pid(),
		Executable: resolved,
		Args:       args,
	}, nil
}

// LaunchArgs returns the command-line arguments used to open a profile.
func (r *Registry) LaunchArgs(name string) []string {
	args := []string{"-P", name}
	if r.newInstance {
		args = append(args, "--new-instance")
	}
	return append(args, r.extraArgs...)
}
