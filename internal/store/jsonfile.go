package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// jsonFile is a whole-file JSON document guarded by a mutex. Every mutation
// reads the file, applies the change and rewrites it completely; the mutex
// serializes writers within the process so no update is lost to a
// concurrent read-modify-write.
type jsonFile[T any] struct {
	mu     sync.Mutex
	path   string
	empty  func() T
	logger *zap.Logger
}

func newJSONFile[T any](path string, empty func() T, logger *zap.Logger) *jsonFile[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jsonFile[T]{path: path, empty: empty, logger: logger}
}

// read returns the decoded document. A missing, unreadable or corrupt file
// reads as the empty document.
func (f *jsonFile[T]) read() T {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("Store file unreadable, treating as empty", zap.String("path", f.path), zap.Error(err))
		}
		return f.empty()
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return f.empty()
	}

	v := f.empty()
	if err := json.Unmarshal(data, &v); err != nil {
		f.logger.Warn("Store file corrupt, treating as empty", zap.String("path", f.path), zap.Error(err))
		return f.empty()
	}
	return v
}

func (f *jsonFile[T]) write(v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(f.path), err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(f.path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(f.path), err)
	}
	return nil
}

// view runs fn on a fresh read of the document under the lock.
func (f *jsonFile[T]) view(fn func(T)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.read())
}

// update reads the document, lets fn mutate it and writes it back unless fn
// returns an error.
func (f *jsonFile[T]) update(fn func(T) (T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, err := fn(f.read())
	if err != nil {
		return err
	}
	return f.write(next)
}
