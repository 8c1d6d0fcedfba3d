package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/domain"
)

// MemoryRepository is an in-process fixed-window counter table.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]*domain.Record
}

// NewMemoryRepository returns an empty in-memory counter table.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*domain.Record)}
}

// Hit records one attempt for key under policy.
func (r *MemoryRepository) Hit(ctx context.Context, key string, policy domain.Policy, now time.Time) (domain.Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[key]
	if !ok || rec.Elapsed(now) {
		r.records[key] = &domain.Record{
			Key:          key,
			WindowStart:  now,
			AttemptCount: 1,
			Limit:        policy.Limit,
			Window:       policy.Window,
		}
		return domain.Decision{Allowed: true, Remaining: policy.Limit - 1}, nil
	}
	if rec.AttemptCount+1 > rec.Limit {
		return domain.Decision{Allowed: false, RetryAfter: rec.WindowStart.Add(rec.Window).Sub(now)}, nil
	}
	rec.AttemptCount++
	return domain.Decision{Allowed: true, Remaining: rec.Limit - rec.AttemptCount}, nil
}

// Sweep evicts records whose window has elapsed and returns how many were removed.
func (r *MemoryRepository) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, rec := range r.records {
		if rec.Elapsed(now) {
			delete(r.records, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
