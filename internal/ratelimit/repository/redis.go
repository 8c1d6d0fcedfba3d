package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/domain"
)

const defaultKeyPrefix = "condominio:ratelimit:"

// hitScript is the atomic fixed-window check-and-increment.
// ARGV[1] = now (unix ms), ARGV[2] = limit, ARGV[3] = window (ms).
// Returns {allowed (0|1), retry_after_ms, remaining}.
var hitScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local window = tonumber(ARGV[3])
local cur = redis.call('HMGET', KEYS[1], 'start', 'count')
if not cur[1] or now - tonumber(cur[1]) >= window then
  redis.call('HSET', KEYS[1], 'start', now, 'count', 1)
  redis.call('PEXPIRE', KEYS[1], window)
  return {1, 0, limit - 1}
end
local start = tonumber(cur[1])
local count = tonumber(cur[2])
if count + 1 > limit then
  return {0, start + window - now, 0}
end
count = redis.call('HINCRBY', KEYS[1], 'count', 1)
return {1, 0, limit - count}
`)

// RedisRepository keeps counters as Redis hashes shared by every instance.
type RedisRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRepository returns a counter table backed by client.
func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client, prefix: defaultKeyPrefix}
}

// Hit records one attempt for key under policy.
func (r *RedisRepository) Hit(ctx context.Context, key string, policy domain.Policy, now time.Time) (domain.Decision, error) {
	res, err := hitScript.Run(ctx, r.client, []string{r.prefix + key},
		now.UnixMilli(), policy.Limit, policy.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.Decision{}, err
	}
	if len(res) != 3 {
		return domain.Decision{}, fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}
	return domain.Decision{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
		Remaining:  int(res[2]),
	}, nil
}
