package repository

import (
	"context"
	"sync"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
)

// MemoryRepository keeps events in process memory. Used in development and tests.
type MemoryRepository struct {
	mu     sync.Mutex
	events []*domain.SecurityEvent
}

// NewMemoryRepository returns an empty event log.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Create appends a copy of e.
func (r *MemoryRepository) Create(ctx context.Context, e *domain.SecurityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, copyEvent(e))
	return nil
}

// List returns matching events newest first.
func (r *MemoryRepository) List(ctx context.Context, f Filter) ([]*domain.SecurityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	limit := clampLimit(f.Limit)
	skipped := 0
	var out []*domain.SecurityEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.events[i]
		if f.SubjectID != "" && e.SubjectID != f.SubjectID {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, copyEvent(e))
	}
	return out, nil
}

// All returns every stored event in insertion order.
func (r *MemoryRepository) All() []*domain.SecurityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.SecurityEvent, len(r.events))
	for i, e := range r.events {
		out[i] = copyEvent(e)
	}
	return out
}

func copyEvent(e *domain.SecurityEvent) *domain.SecurityEvent {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
