// Package fsops provides the storage collaborator: flat files on the robot's
// removable card.
//
// Every plan, slot index and drive log goes through the FS interface. Names
// are plain file names relative to the mount root; anything that looks like a
// path is rejected so a bad slot number can never escape the card.
//
// Key features:
//   - Atomic writes using temp file + rename
//   - Append handles for streaming logs
//   - Name validation against traversal
//   - Testable via the FS interface
package fsops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FS provides an abstraction for storage operations.
type FS interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(name string) ([]byte, error)

	// AtomicWrite replaces the file contents atomically using temp file + rename.
	AtomicWrite(name string, data []byte, perm os.FileMode) error

	// OpenAppend opens a file for appending, creating it if needed.
	OpenAppend(name string) (io.WriteCloser, error)

	// Exists checks if a file exists.
	Exists(name string) (bool, error)

	// Remove removes a file.
	Remove(name string) error

	// ValidateName validates a file name for safety.
	ValidateName(name string) error
}

// RealFS implements FS on a directory of the host filesystem.
type RealFS struct {
	root string
}

// NewRealFS creates a RealFS rooted at root.
func NewRealFS(root string) *RealFS {
	return &RealFS{root: root}
}

// Root returns the mount directory.
func (fs *RealFS) Root() string {
	return fs.root
}

func (fs *RealFS) resolve(name string) (string, error) {
	if err := fs.ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(fs.root, name), nil
}

// ReadFile reads the entire contents of a file.
func (fs *RealFS) ReadFile(name string) ([]byte, error) {
	path, err := fs.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// AtomicWrite writes data to name atomically using temp file + rename.
func (fs *RealFS) AtomicWrite(name string, data []byte, perm os.FileMode) error {
	path, err := fs.resolve(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(fs.root, 0755); err != nil {
		return fmt.Errorf("failed to create storage root: %w", err)
	}

	// Create temp file in the same directory as target
	tmpFile, err := os.CreateTemp(fs.root, ".autonkit-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	// Success - don't clean up temp file
	tmpFile = nil
	return nil
}

// OpenAppend opens name for appending, creating it if needed.
func (fs *RealFS) OpenAppend(name string) (io.WriteCloser, error) {
	path, err := fs.resolve(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(fs.root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for append: %w", name, err)
	}
	return f, nil
}

// Exists checks if a file exists.
func (fs *RealFS) Exists(name string) (bool, error) {
	path, err := fs.resolve(name)
	if err != nil {
		return false, err
	}
	_, err = os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Remove removes a file.
func (fs *RealFS) Remove(name string) error {
	path, err := fs.resolve(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// ValidateName validates a storage file name.
// Returns an error if the name contains path separators or traversal.
func (fs *RealFS) ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("invalid file name: empty")
	}

	if strings.Contains(name, string(filepath.Separator)) || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("invalid file name %q: must not contain path separators", name)
	}

	if name == "." || name == ".." || strings.HasPrefix(name, "..") {
		return fmt.Errorf("invalid file name %q: path traversal not allowed", name)
	}

	return nil
}
