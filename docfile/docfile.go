// Package docfile reads and writes transformation documents on disk.
//
// A Store resolves the on-disk format from the file extension (JSON,
// JSONC, YAML, or TOML), decodes into the engine's JSON domain, and
// writes atomically via a temporary file and rename so that concurrent
// readers and file watchers never observe a partial document.
package docfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/bgoodspeed/jtl/format"
)

// Default permission modes.
const (
	DefaultFileMode = 0644
	DefaultDirMode  = 0755
)

// Store loads and saves documents, remembering what it last wrote to
// each path so unchanged output can skip the write.
type Store struct {
	fileMode os.FileMode
	dirMode  os.FileMode

	mu      sync.Mutex
	written map[string]uint64
}

// Option configures a Store.
type Option func(*Store)

// WithFileMode sets the file permission mode used when saving.
// Default is 0644.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Store) {
		s.fileMode = mode
	}
}

// WithDirMode sets the directory permission mode used when creating
// parent directories. Default is 0755.
func WithDirMode(mode os.FileMode) Option {
	return func(s *Store) {
		s.dirMode = mode
	}
}

// NewStore creates a document store.
//
// Example:
//
//	store := docfile.NewStore()
//	store := docfile.NewStore(docfile.WithFileMode(0600))
func NewStore(opts ...Option) *Store {
	s := &Store{
		fileMode: DefaultFileMode,
		dirMode:  DefaultDirMode,
		written:  map[string]uint64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and decodes the document at path. The format is chosen by
// file extension. A missing file surfaces the underlying not-found
// error, so callers can test it with errors.Is(err, fs.ErrNotExist).
func (s *Store) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	v, err := format.Unmarshal(format.Detect(path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", path, err)
	}
	return v, nil
}

// Save encodes v in the format implied by path's extension and writes
// it atomically: temporary file in the target directory, fsync, rename.
// Parent directories are created if they do not exist.
func (s *Store) Save(path string, v any) error {
	data, err := format.Marshal(format.Detect(path), v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", path, err)
	}
	if err := s.writeFile(path, data); err != nil {
		return err
	}

	s.mu.Lock()
	s.written[path] = xxh3.Hash(data)
	s.mu.Unlock()
	return nil
}

// SaveIfChanged is Save, except that when the rendered bytes are
// identical to the previous write through this Store the file is left
// untouched. Reports whether a write happened. Skipping identical
// output keeps downstream file watchers from retriggering on no-op
// reruns.
func (s *Store) SaveIfChanged(path string, v any) (bool, error) {
	data, err := format.Marshal(format.Detect(path), v)
	if err != nil {
		return false, fmt.Errorf("failed to encode %q: %w", path, err)
	}

	sum := xxh3.Hash(data)
	s.mu.Lock()
	prev, seen := s.written[path]
	s.mu.Unlock()
	if seen && prev == sum {
		return false, nil
	}

	if err := s.writeFile(path, data); err != nil {
		return false, err
	}

	s.mu.Lock()
	s.written[path] = sum
	s.mu.Unlock()
	return true, nil
}

// WriteTo streams v as pretty-printed JSON, the rendering used for
// stdout output.
func (s *Store) WriteTo(w io.Writer, v any) error {
	data, err := format.Marshal(format.FormatJSON, v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeFile performs the atomic write: temp file alongside the target,
// sync, chmod, rename. The temporary file is removed on failure.
func (s *Store) writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".jtl-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tmpPath, s.fileMode); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file to %q: %w", path, err)
	}

	success = true
	return nil
}
