// Package localstore persists client-side state in a JSON file: the splits and menus this
// device created, whether each split is still open, and the user's name.
//
// Values are validated on read. A malformed value is logged, removed and treated as absent.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// DefaultPath is state.json under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}

	return filepath.Join(dir, "easysplit", "state.json"), nil
}

// Open loads the store at path. A missing file is an empty store; an unreadable JSON
// document is discarded with a warning.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading local state: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil || s.data == nil {
		slog.Warn("local state is malformed, resetting", "path", path, "error", err)
		s.data = make(map[string]json.RawMessage)
	}

	return s, nil
}

// Get decodes the value under key into v and reports whether it was present.
// A value that does not decode is deleted.
func (s *Store) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, v); err != nil {
		slog.Warn("stored value is malformed, resetting", "key", key, "error", err)
		delete(s.data, key)

		return false, s.flush()
	}

	return true, nil
}

func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = raw

	return s.flush()
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}

	delete(s.data, key)

	return s.flush()
}

// flush writes the whole document through a temp file and rename. Callers hold mu.
func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding local state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing local state: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing local state: %w", err)
	}

	return nil
}
