// Package storage manages the directory the server serves files from. The
// serving core only needs three things from it: make sure the root exists,
// open a named file for sequential reading, and tear the root down again.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound indicates the requested file does not exist under the root.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName indicates the requested name would escape the root.
	ErrInvalidName = errors.New("invalid file name")
)

// Root is the base directory download requests resolve file names against.
type Root struct {
	path string
}

// Ensure creates the root directory if it does not exist and returns it.
func Ensure(path string) (*Root, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory %s: %w", path, err)
	}
	return &Root{path: path}, nil
}

// Path returns the root directory path.
func (r *Root) Path() string {
	return r.path
}

// Open opens the named file under the root for sequential reading. Names that
// reach outside the root are rejected; a missing file yields ErrNotFound.
func (r *Root) Open(name string) (io.ReadCloser, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	f, err := os.Open(filepath.Join(r.path, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

// Remove deletes the root directory and everything under it. Best effort;
// callers ignore the error during cleanup.
func (r *Root) Remove() error {
	return os.RemoveAll(r.path)
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
