// Package filex provides the filesystem operations the profile registry
// depends on, behind an interface so they can be replaced in tests.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FS is the filesystem provider used by the profile registry.
type FS interface {
	// DirExists reports whether a directory exists at path, following symlinks.
	DirExists(path string) (bool, error)
	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string, perm os.FileMode) error
	// RemoveAll removes path and everything below it.
	RemoveAll(path string) error
	// ModTime returns the modification time of path.
	ModTime(path string) (time.Time, error)
	// ReadFile reads a whole file.
	ReadFile(path string) ([]byte, error)
	// WriteFile writes a whole file, truncating it if it exists.
	WriteFile(path string, data []byte, perm os.FileMode) error
	// WriteFileAtomic replaces path with data so that readers see either the
	// old or the new content, never a partial write. An existing file keeps
	// its mode; perm applies to a new one.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error
}

// OS implements FS on the local filesystem.
type OS struct{}

// DirExists implements FS.
func (OS) DirExists(path string) (bool, error) {
	return DirExists(path)
}

// MkdirAll implements FS.
func (OS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// RemoveAll implements FS.
func (OS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// ModTime implements FS.
func (OS) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// ReadFile implements FS.
func (OS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 - path is the profiles.ini location chosen by the user
	return os.ReadFile(path)
}

// WriteFile implements FS.
func (OS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// WriteFileAtomic implements FS.
func (OS) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteFileAtomic(path, data, FileMode(path, perm))
}

// DirExists returns if a directory exists at the given path, following symlinks.
func DirExists(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return stat.IsDir(), nil
}

// FileExists returns if a file exists at the given path, following symlinks.
func FileExists(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !stat.IsDir(), nil
}

// WriteFileAtomic writes data to a temp file in the same directory, syncs it
// and renames it over filename. The directory must already exist. A symlink
// at filename is followed, so the link stays and its target is replaced.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	filename, err := resolveLink(filename)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename has happened.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("atomic rename failed: %w", err)
	}
	return nil
}

// resolveLink returns the final target when filename is a symlink, and
// filename itself otherwise.
func resolveLink(filename string) (string, error) {
	info, err := os.Lstat(filename)
	if os.IsNotExist(err) {
		return filename, nil
	}
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return filename, nil
	}
	return filepath.EvalSymlinks(filename)
}

// FileMode returns the permission bits of an existing file, or fallback when
// the file does not exist.
func FileMode(path string, fallback os.FileMode) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return fallback
	}
	return info.Mode().Perm()
}
