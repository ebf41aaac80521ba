// Package fsio provides the file collaborators the compiler depends on:
// listing source files by extension, reading them and writing outputs.
package fsio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"csvpack/internal/domain"
)

// Lister returns the files in a directory that carry one of the given
// extensions.
type Lister interface {
	List(dir string, exts ...string) ([]string, error)
}

// Reader reads a whole file.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

// Writer persists a whole file.
type Writer interface {
	WriteFile(path string, data []byte) error
}

// FS bundles the three collaborators.
type FS interface {
	Lister
	Reader
	Writer
}

// OS implements FS on the local file system.
type OS struct{}

var _ FS = OS{}

// List returns matching regular files directly inside dir, as full paths
// sorted by name. Extensions compare case-insensitively. A directory that
// does not exist has no files.
func (OS) List(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrIO(dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if HasExt(entry.Name(), exts...) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile reads path.
func (OS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrIO(path, err)
	}
	return data, nil
}

// WriteFile writes data to path through a temporary file in the same
// directory, creating parent directories as needed.
func (OS) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.ErrIO(dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return domain.ErrIO(path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return domain.ErrIO(path, err)
	}
	if err := tmp.Close(); err != nil {
		return domain.ErrIO(path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return domain.ErrIO(path, err)
	}
	return domain.ErrIO(path, os.Rename(tmp.Name(), path))
}

// HasExt reports whether name ends in one of exts (".csv" style).
func HasExt(name string, exts ...string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
