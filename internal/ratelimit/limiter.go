// Package ratelimit throttles repeated attempts per action and originating identity
// using fixed-window counters.
package ratelimit

import (
	"context"
	"log"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/platform/clock"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/repository"
)

// Actions throttled by the auth flows.
const (
	ActionLogin    = "login"
	ActionRegister = "register"
)

// Limiter checks attempts against a Repository. It fails closed: when the
// repository errors, the attempt is blocked for a full window.
type Limiter struct {
	repo  repository.Repository
	clock clock.Clock
}

// NewLimiter returns a Limiter over repo.
func NewLimiter(repo repository.Repository, clk clock.Clock) *Limiter {
	return &Limiter{repo: repo, clock: clk}
}

// Check records one attempt of action by identity and reports whether it is allowed.
func (l *Limiter) Check(ctx context.Context, action, identity string, policy domain.Policy) domain.Decision {
	if policy.Limit <= 0 || policy.Window <= 0 {
		log.Printf("ratelimit: invalid policy for %s (limit=%d window=%s); blocking", action, policy.Limit, policy.Window)
		return domain.Decision{Allowed: false, RetryAfter: policy.Window}
	}
	key := domain.Key(action, identity)
	d, err := l.repo.Hit(ctx, key, policy, l.clock.Now())
	if err != nil {
		log.Printf("ratelimit: store unavailable for %s, failing closed: %v", key, err)
		return domain.Decision{Allowed: false, RetryAfter: policy.Window}
	}
	return d
}
