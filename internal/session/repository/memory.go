package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/session/domain"
)

// MemoryRepository is an in-process Repository for single-instance deployments and tests.
type MemoryRepository struct {
	mu sync.Mutex
	m  map[string]*domain.Session
}

// NewMemoryRepository returns an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[string]*domain.Session)}
}

// Create stores a copy of s.
func (r *MemoryRepository) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *s
	r.m[s.ID] = &c
	return nil
}

// Get returns a copy of the live session for id, or nil.
func (r *MemoryRepository) Get(ctx context.Context, id string, now time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	if s.IdleExpired(now) {
		delete(r.m, id)
		return nil, nil
	}
	c := *s
	return &c, nil
}

// Touch refreshes and returns a copy of the live session for id, or nil.
func (r *MemoryRepository) Touch(ctx context.Context, id string, now time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	if s.IdleExpired(now) {
		delete(r.m, id)
		return nil, nil
	}
	touched := s.Touched(now)
	r.m[id] = touched
	c := *touched
	return &c, nil
}

// Delete removes id.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

// Sweep deletes every idle-expired session and returns how many were removed.
func (r *MemoryRepository) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.m {
		if s.IdleExpired(now) {
			delete(r.m, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, including expired ones not yet observed.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}
