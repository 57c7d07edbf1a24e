package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"photoflow/internal/logging"
)

// ErrOutsideRoot is returned when a name would resolve outside the
// store's root directory.
var ErrOutsideRoot = errors.New("path escapes storage root")

// Store is a blob store rooted at a single local directory.
type Store struct {
	root string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	logging.Debug("Storage root: %s", abs)
	return &Store{root: abs}, nil
}

// Root returns the absolute root directory of the store.
func (s *Store) Root() string {
	return s.root
}

// Path resolves a stored name to an absolute path under the root.
func (s *Store) Path(name string) (string, error) {
	cleaned := filepath.Clean(filepath.Join(s.root, name))
	if cleaned != s.root && !strings.HasPrefix(cleaned, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}
	return cleaned, nil
}

// Open returns a seekable reader for a stored blob. The caller closes it.
func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

// Write stores a blob under name, replacing any existing blob. The data
// lands in a temp file first and is renamed into place, so readers never
// observe a partial write.
func (s *Store) Write(name string, data []byte) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(dir, ".photoflow-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize %s: %w", name, err)
	}

	logging.Debug("Stored %s (%d bytes)", name, len(data))
	return nil
}

// WriteFrom streams a blob into the store from a reader, returning the
// number of bytes written. Same temp-then-rename contract as Write.
func (s *Store) WriteFrom(name string, r io.Reader) (int64, error) {
	path, err := s.Path(name)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(dir, ".photoflow-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to finalize %s: %w", name, err)
	}

	return n, nil
}

// Delete removes a stored blob. Deleting a missing blob is not an error.
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a blob is present under name.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Size returns the byte size of a stored blob.
func (s *Store) Size(name string) (int64, error) {
	path, err := s.Path(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return info.Size(), nil
}
