// Package storage defines the workspace file-system abstraction.
package storage

import (
	"io/fs"
	"strings"
)

// TempPrefix names in-flight temporary files. Listings and the watcher
// ignore them.
const TempPrefix = ".studio-tmp-"

// Provider is the interface for workspace file operations. All paths are
// relative to the workspace root; errors wrap the underlying fs errors so
// callers can test for fs.ErrNotExist and fs.ErrExist.
type Provider interface {
	// Root returns the absolute workspace root.
	Root() string
	// Abs resolves a relative path against the root.
	Abs(path string) (string, error)
	// InitRoot creates the root directory. It reports false when the root
	// already existed, in which case nothing is touched.
	InitRoot() (bool, error)
	// ListDirs returns the names of visible subdirectories of dir, sorted.
	ListDirs(dir string) ([]string, error)
	// ListFiles returns the names of visible regular files in dir with the
	// given extension, sorted.
	ListFiles(dir, ext string) ([]string, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of path.
	Write(path string, content []byte) error
	// Create writes a new file and fails with fs.ErrExist if path is taken.
	Create(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Mkdir creates a single directory and fails with fs.ErrExist if path is taken.
	Mkdir(path string) error
	// RenameDir moves a directory; the destination must not exist.
	RenameDir(oldPath, newPath string) error
	// RemoveAll removes path and everything below it.
	RemoveAll(path string) error
}

// ValidName reports whether name can address a single entry directly under
// a directory: non-empty, no path separators and not hidden.
func ValidName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}
