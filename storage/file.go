package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a [Backend] backed by a single app-scoped JSON preferences
// file. It is the native-platform analog of a secure preferences store:
// values are kept as a flat string map and rewritten atomically
// (temp file + rename) on every mutation.
//
// The file is loaded once at construction. A corrupted file is treated
// as empty rather than as a fatal error, matching the degrade-on-read
// policy of the callers.
type File struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// NewFile opens (or lazily creates) the preferences file at path.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("preferences path required")
	}

	f := &File{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run. The file appears on the first Set.
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		if jsonErr := json.Unmarshal(data, &f.values); jsonErr != nil {
			f.values = make(map[string]string)
		}
	}

	return f, nil
}

// Get returns the stored value, or ("", false, nil) when the key is
// absent.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.values[key]
	return value, ok, nil
}

// Set stores value under key and persists the whole map before
// returning.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value
	return f.flushLocked()
}

// Remove deletes key and persists. Removing an absent key skips the
// write entirely.
func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.values[key]; !ok {
		return nil
	}

	delete(f.values, key)
	return f.flushLocked()
}

func (f *File) flushLocked() error {
	data, err := json.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}
