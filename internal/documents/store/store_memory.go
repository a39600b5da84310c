package store

import (
	"context"
	"sync"
	"time"

	"bharatid/internal/documents/models"
	"bharatid/pkg/domain"
	"bharatid/pkg/platform/sentinel"
	"bharatid/pkg/platform/tx"
)

// InMemoryStore keeps document sets in a map guarded by a RWMutex.
type InMemoryStore struct {
	mu   sync.RWMutex
	sets map[domain.UserID]models.Set
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sets: make(map[domain.UserID]models.Set)}
}

func (s *InMemoryStore) Init(ctx context.Context, userID domain.UserID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[userID]; ok {
		return sentinel.ErrConflict
	}
	set := models.NewSet()
	for t, r := range set {
		r.UpdatedAt = now
		set[t] = r
	}
	s.sets[userID] = set
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.sets, userID)
	})
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, userID domain.UserID) (models.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return set.Clone(), nil
}

func (s *InMemoryStore) GetRecord(_ context.Context, userID domain.UserID, docType domain.DocType) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[userID]
	if !ok {
		return models.Record{}, sentinel.ErrNotFound
	}
	if _, ok := set[docType]; !ok {
		return models.Record{}, sentinel.ErrNotFound
	}
	return set.Clone()[docType], nil
}

func (s *InMemoryStore) MarkUploaded(_ context.Context, userID domain.UserID, docType domain.DocType, blobKey string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.recordLocked(userID, docType)
	if err != nil {
		return err
	}
	next, err := rec.Upload(blobKey, now)
	if err != nil {
		return sentinel.ErrInvalidState
	}
	s.sets[userID][docType] = next
	return nil
}

func (s *InMemoryStore) MarkVerified(_ context.Context, userID domain.UserID, docType domain.DocType, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.recordLocked(userID, docType)
	if err != nil {
		return err
	}
	next, err := rec.Verify(now)
	if err != nil {
		return sentinel.ErrInvalidState
	}
	s.sets[userID][docType] = next
	return nil
}

func (s *InMemoryStore) ListAll(_ context.Context) (map[domain.UserID]models.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.UserID]models.Set, len(s.sets))
	for id, set := range s.sets {
		out[id] = set.Clone()
	}
	return out, nil
}

func (s *InMemoryStore) recordLocked(userID domain.UserID, docType domain.DocType) (models.Record, error) {
	set, ok := s.sets[userID]
	if !ok {
		return models.Record{}, sentinel.ErrNotFound
	}
	rec, ok := set[docType]
	if !ok {
		return models.Record{}, sentinel.ErrNotFound
	}
	return rec, nil
}
