package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/crucial707/todo-api/internal/apperr"
	"github.com/crucial707/todo-api/internal/models"
)

// memStore is an in-memory UserStore whose Create enforces email uniqueness
// under a lock, the way the users_email_key index does in Postgres.
type memStore struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]*models.User
	err     error
}

func newMemStore() *memStore {
	return &memStore{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.byEmail[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, apperr.ErrConflict
	}
	now := time.Now()
	cp := *u
	cp.CreatedAt, cp.UpdatedAt = now, now
	s.byID[cp.ID] = &cp
	s.byEmail[cp.Email] = &cp
	out := cp
	return &out, nil
}

func (s *memStore) setActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id].IsActive = active
}

var errStoreDown = errors.New("store down")
