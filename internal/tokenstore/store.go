// Package tokenstore persists the single access credential used by every
// fetch against the hosting API and tracks its validity.
package tokenstore

import (
	"sync"
)

// Store is the key-value persistence behind the credential. Get returns an
// empty string when nothing is stored.
type Store interface {
	Get() (string, error)
	Set(token string) error
	Delete() error
}

// MemoryStore keeps the credential in-process. Used by tests and as the
// fallback when no durable backend is configured.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
