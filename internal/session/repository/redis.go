package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/security"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/session/domain"
)

const defaultKeyPrefix = "condominio:session:"

// expiryGrace is added to the Redis key TTL on top of the idle timeout. The
// Lua scripts decide expiry; the TTL only reclaims keys nobody touches again.
const expiryGrace = time.Minute

// readScript returns the session hash, deleting it when idle-expired.
// ARGV[1] = now (unix ms), ARGV[2] = "1" to refresh last_activity, ARGV[3] = grace (ms).
var readScript = redis.NewScript(`
local f = redis.call('HMGET', KEYS[1], 'last_activity', 'idle_ms')
if not f[1] or not f[2] then
  return false
end
local last = tonumber(f[1])
local idle = tonumber(f[2])
local now = tonumber(ARGV[1])
if now - last > idle then
  redis.call('DEL', KEYS[1])
  return false
end
if ARGV[2] == '1' then
  if now > last then
    redis.call('HSET', KEYS[1], 'last_activity', now)
  end
  redis.call('PEXPIRE', KEYS[1], idle + tonumber(ARGV[3]))
end
return redis.call('HGETALL', KEYS[1])
`)

// RedisRepository stores sessions as Redis hashes keyed by the SHA-256 of the session id.
type RedisRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRepository returns a session repository backed by client.
func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client, prefix: defaultKeyPrefix}
}

func (r *RedisRepository) key(id string) string {
	return r.prefix + security.HashToken(id)
}

// Create writes the session hash and its housekeeping TTL in one transaction.
func (r *RedisRepository) Create(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		return errors.New("session: id is required")
	}
	key := r.key(s.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]interface{}{
			"subject_id":    s.SubjectID,
			"role":          string(s.Role),
			"created_at":    s.CreatedAt.UnixMilli(),
			"last_activity": s.LastActivityAt.UnixMilli(),
			"origin_ip":     s.OriginIP,
			"csrf":          s.CSRFToken,
			"idle_ms":       s.IdleTimeout.Milliseconds(),
		})
		pipe.PExpire(ctx, key, s.IdleTimeout+expiryGrace)
		return nil
	})
	return err
}

// Get returns the live session for id without refreshing it, or nil.
func (r *RedisRepository) Get(ctx context.Context, id string, now time.Time) (*domain.Session, error) {
	return r.read(ctx, id, now, false)
}

// Touch refreshes and returns the live session for id, or nil.
func (r *RedisRepository) Touch(ctx context.Context, id string, now time.Time) (*domain.Session, error) {
	return r.read(ctx, id, now, true)
}

// Delete removes the session key.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *RedisRepository) read(ctx context.Context, id string, now time.Time, refresh bool) (*domain.Session, error) {
	if id == "" {
		return nil, nil
	}
	flag := "0"
	if refresh {
		flag = "1"
	}
	res, err := readScript.Run(ctx, r.client, []string{r.key(id)}, now.UnixMilli(), flag, expiryGrace.Milliseconds()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fields, err := flatToMap(res)
	if err != nil {
		return nil, err
	}
	return hashToSession(id, fields)
}

func flatToMap(res interface{}) (map[string]string, error) {
	items, ok := res.([]interface{})
	if !ok || len(items)%2 != 0 {
		return nil, fmt.Errorf("session: unexpected script reply %T", res)
	}
	out := make(map[string]string, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		k, _ := items[i].(string)
		v, _ := items[i+1].(string)
		out[k] = v
	}
	return out, nil
}

func hashToSession(id string, f map[string]string) (*domain.Session, error) {
	createdMs, err := strconv.ParseInt(f["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session: created_at: %w", err)
	}
	lastMs, err := strconv.ParseInt(f["last_activity"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session: last_activity: %w", err)
	}
	idleMs, err := strconv.ParseInt(f["idle_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session: idle_ms: %w", err)
	}
	return &domain.Session{
		ID:             id,
		SubjectID:      f["subject_id"],
		Role:           identitydomain.Role(f["role"]),
		CreatedAt:      time.UnixMilli(createdMs).UTC(),
		LastActivityAt: time.UnixMilli(lastMs).UTC(),
		OriginIP:       f["origin_ip"],
		CSRFToken:      f["csrf"],
		IdleTimeout:    time.Duration(idleMs) * time.Millisecond,
	}, nil
}
