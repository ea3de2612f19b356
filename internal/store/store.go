// Package store persists session credentials between runs, standing in
// for the browser's localStorage.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/grumpytracker/grumpy-client/internal/auth"
)

// FileStore keeps the token and username together in one JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored credentials. A missing file means no session and
// is not an error.
func (s *FileStore) Load() (auth.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return auth.Credentials{}, nil
		}
		return auth.Credentials{}, fmt.Errorf("read session file: %w", err)
	}
	var creds auth.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return auth.Credentials{}, fmt.Errorf("decode session file: %w", err)
	}
	return creds, nil
}

// Save writes both credentials atomically with respect to other calls on
// this store.
func (s *FileStore) Save(creds auth.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the stored credentials. Clearing an empty store is a
// no-op.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
