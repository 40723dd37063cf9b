// Package memory is an in-process repository.Store.
//
// It backs the "memory" store driver and the service tests. Values are
// copied on the way in and out so callers can never alias stored bytes.
package memory

import (
	"context"
	"sync"

	"github.com/sakif/skillswap/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps blobs in a map guarded by a RWMutex.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailWith, when non-nil, is returned by every operation.
	// Tests use it to simulate an unavailable backend.
	FailWith error
}

// New returns an empty Store.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return nil, false, s.FailWith
	}
	blob, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

func (s *Store) Save(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	delete(s.blobs, key)
	return nil
}

// Put writes raw bytes under key, bypassing the blob codec.
// Tests use it to plant malformed data.
func (s *Store) Put(key string, blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), blob...)
}

func (s *Store) Close() error { return nil }
