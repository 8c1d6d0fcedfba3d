package sink

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
)

// asyncTimeout is the max time allowed for a single background write.
const asyncTimeout = 5 * time.Second

// target is what Async wraps.
type target interface {
	Name() string
	Write(ctx context.Context, e *domain.SecurityEvent) error
}

// Async runs Write of the wrapped sink in a goroutine with a short timeout so the
// caller is not blocked. Errors are logged.
//
// The goroutine uses context.Background() so request cancellation does not abort
// an in-flight write.
type Async struct {
	next target
	wg   sync.WaitGroup
}

// NewAsync wraps next. Returns nil if next is nil.
func NewAsync(next target) *Async {
	if next == nil {
		return nil
	}
	return &Async{next: next}
}

func (a *Async) Name() string { return a.next.Name() + "(async)" }

// Write schedules the write and returns immediately.
func (a *Async) Write(_ context.Context, e *domain.SecurityEvent) error {
	if a == nil || e == nil {
		return nil
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()
		if err := a.next.Write(ctx, e); err != nil {
			log.Printf("audit: async %s write failed for %s: %v", a.next.Name(), e.Type, err)
		}
	}()
	return nil
}

// Wait blocks until in-flight writes finish or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	if a == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
