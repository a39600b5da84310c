// Package blob stores uploaded document artifacts. Keys are opaque slash
// separated strings generated by NewKey; values are sealed before they reach a
// backend.
package blob

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"bharatid/pkg/domain"
	"bharatid/pkg/platform/sentinel"
)

// Store is implemented by the memory, local filesystem and S3 backends and by
// the SealedStore wrapper. Get returns sentinel.ErrNotFound for unknown keys;
// Delete of an unknown key is not an error.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh key for one upload of docType by userID.
func NewKey(userID domain.UserID, docType domain.DocType) string {
	return fmt.Sprintf("documents/%s/%s/%s", userID, docType, uuid.New())
}

// MemoryStore keeps blobs in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// Len reports the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
