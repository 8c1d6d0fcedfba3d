package repository

import (
	"context"
	"time"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/domain"
)

// Repository counts attempts per key. Hit is a single atomic check-and-increment:
// a new or elapsed window starts at count 1; otherwise the attempt is rejected
// without incrementing when count+1 would exceed the limit.
type Repository interface {
	Hit(ctx context.Context, key string, policy domain.Policy, now time.Time) (domain.Decision, error)
}
