package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// File keeps all keys in one JSON object on disk, rewritten on every change
// with owner-only permissions since it holds the auth token.
type File struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// NewFile opens (or lazily creates) the JSON store at path
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("storage file path is empty")
	}

	f := &File{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return f, nil
	case err != nil:
		return nil, errors.Wrap(err, "failed to read storage file")
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.data); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal storage file")
		}
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.persistLocked()
}

func (f *File) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return f.persistLocked()
}

func (f *File) Close() error { return nil }

func (f *File) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return errors.Wrap(err, "failed to create storage directory")
	}

	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal storage")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write storage file")
	}
	return errors.Wrap(os.Rename(tmp, f.path), "failed to replace storage file")
}
