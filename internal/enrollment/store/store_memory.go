// Package store persists enrolled users.
//
// Errors: sentinel.ErrNotFound for unknown users, sentinel.ErrConflict when the
// email or aadhaar number is already taken.
package store

import (
	"context"
	"sort"
	"sync"

	"bharatid/internal/enrollment/models"
	"bharatid/pkg/domain"
	"bharatid/pkg/platform/sentinel"
	"bharatid/pkg/platform/tx"
)

// InMemoryUserStore indexes users by ID, email and aadhaar.
type InMemoryUserStore struct {
	mu        sync.RWMutex
	users     map[domain.UserID]*models.User
	byEmail   map[string]domain.UserID
	byAadhaar map[string]domain.UserID
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:     make(map[domain.UserID]*models.User),
		byEmail:   make(map[string]domain.UserID),
		byAadhaar: make(map[string]domain.UserID),
	}
}

func (s *InMemoryUserStore) Save(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byAadhaar[user.Aadhaar]; ok {
		return sentinel.ErrConflict
	}
	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[user.Email] = user.ID
	s.byAadhaar[user.Aadhaar] = user.ID
	tx.OnRollback(ctx, func() { s.remove(user.ID) })
	return nil
}

func (s *InMemoryUserStore) remove(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return
	}
	delete(s.users, id)
	delete(s.byEmail, u.Email)
	delete(s.byAadhaar, u.Aadhaar)
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(id)
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, address string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.lookupLocked(id)
}

func (s *InMemoryUserStore) FindByAadhaar(_ context.Context, aadhaar string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byAadhaar[aadhaar]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.lookupLocked(id)
}

// List returns every user ordered by enrollment time.
func (s *InMemoryUserStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryUserStore) lookupLocked(id domain.UserID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
