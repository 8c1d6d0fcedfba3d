package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/platform/clock"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/repository"
)

type failingRepo struct{}

func (failingRepo) Hit(context.Context, string, domain.Policy, time.Time) (domain.Decision, error) {
	return domain.Decision{}, errors.New("connection refused")
}

func backends(t *testing.T) map[string]repository.Repository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]repository.Repository{
		"memory": repository.NewMemoryRepository(),
		"redis":  repository.NewRedisRepository(client),
	}
}

func TestLimiter_BlocksAfterLimitAndResets(t *testing.T) {
	policy := domain.Policy{Limit: 5, Window: 15 * time.Minute}
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clk := clock.NewFake(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
			l := NewLimiter(repo, clk)
			ctx := context.Background()

			for i := 1; i <= policy.Limit; i++ {
				d := l.Check(ctx, ActionLogin, "10.1.1.1", policy)
				if !d.Allowed {
					t.Fatalf("attempt %d should be allowed", i)
				}
				if d.Remaining != policy.Limit-i {
					t.Errorf("attempt %d remaining = %d, want %d", i, d.Remaining, policy.Limit-i)
				}
				clk.Advance(time.Minute)
			}
			d := l.Check(ctx, ActionLogin, "10.1.1.1", policy)
			if d.Allowed {
				t.Fatal("attempt limit+1 should be blocked")
			}
			if d.RetryAfter != 10*time.Minute {
				t.Errorf("RetryAfter = %v, want 10m", d.RetryAfter)
			}

			clk.Advance(10 * time.Minute)
			d = l.Check(ctx, ActionLogin, "10.1.1.1", policy)
			if !d.Allowed || d.Remaining != policy.Limit-1 {
				t.Fatalf("after window: allowed=%v remaining=%d, want fresh window", d.Allowed, d.Remaining)
			}
		})
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	policy := domain.Policy{Limit: 1, Window: time.Hour}
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			l := NewLimiter(repo, clock.NewFake(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)))
			ctx := context.Background()
			if !l.Check(ctx, ActionRegister, "a", policy).Allowed {
				t.Fatal("first register from a should pass")
			}
			if !l.Check(ctx, ActionRegister, "b", policy).Allowed {
				t.Error("other identity must have its own window")
			}
			if !l.Check(ctx, ActionLogin, "a", policy).Allowed {
				t.Error("other action must have its own window")
			}
			if l.Check(ctx, ActionRegister, "a", policy).Allowed {
				t.Error("second register from a should be blocked")
			}
		})
	}
}

func TestLimiter_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	policy := domain.Policy{Limit: 10, Window: time.Hour}
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			l := NewLimiter(repo, clock.NewFake(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)))
			var allowed int64
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if l.Check(context.Background(), ActionLogin, "shared", policy).Allowed {
						atomic.AddInt64(&allowed, 1)
					}
				}()
			}
			wg.Wait()
			if allowed != int64(policy.Limit) {
				t.Errorf("allowed = %d, want exactly %d", allowed, policy.Limit)
			}
		})
	}
}

func TestLimiter_FailsClosed(t *testing.T) {
	l := NewLimiter(failingRepo{}, clock.Real{})
	d := l.Check(context.Background(), ActionLogin, "ip", domain.Policy{Limit: 5, Window: time.Minute})
	if d.Allowed {
		t.Fatal("store failure must block")
	}
	if d.RetryAfter != time.Minute {
		t.Errorf("RetryAfter = %v, want 1m", d.RetryAfter)
	}
}

func TestLimiter_InvalidPolicyBlocks(t *testing.T) {
	l := NewLimiter(repository.NewMemoryRepository(), clock.Real{})
	if l.Check(context.Background(), ActionLogin, "ip", domain.Policy{Limit: 0, Window: time.Minute}).Allowed {
		t.Error("zero limit must block")
	}
}

func TestMemoryRepository_Sweep(t *testing.T) {
	repo := repository.NewMemoryRepository()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	_, _ = repo.Hit(ctx, "login:a", domain.Policy{Limit: 5, Window: time.Minute}, now)
	_, _ = repo.Hit(ctx, "login:b", domain.Policy{Limit: 5, Window: time.Hour}, now)

	if n := repo.Sweep(now.Add(2 * time.Minute)); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if repo.Len() != 1 {
		t.Errorf("Len = %d, want 1", repo.Len())
	}
}
