package idempotency

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

const keyPrefix = "checkout:idem:"

func redisKey(userID, key string) string {
	return keyPrefix + userID + ":" + key
}

// RedisGuard reserves checkout keys with SET NX so a retried request is not
// checked out twice while the key lives.
type RedisGuard struct {
	client *redis.Client
}

var _ port.IdempotencyGuard = (*RedisGuard)(nil)

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) Acquire(ctx context.Context, userID, key string, ttl time.Duration) error {
	if userID == "" || key == "" {
		return errors.New("userID and key are required")
	}

	ok, err := g.client.SetNX(ctx, redisKey(userID, key), time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return fmt.Errorf("client.SetNX: %w", err)
	}

	if !ok {
		return port.ErrKeyInUse
	}

	return nil
}

func (g *RedisGuard) Release(ctx context.Context, userID, key string) error {
	if err := g.client.Del(ctx, redisKey(userID, key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}

const sweepEvery = time.Minute

// MemoryGuard is the single-process fallback used when no Redis is configured.
// Expired keys are evicted at most once per sweepEvery.
type MemoryGuard struct {
	mu        sync.Mutex
	expires   map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

var _ port.IdempotencyGuard = (*MemoryGuard)(nil)

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (g *MemoryGuard) Acquire(_ context.Context, userID, key string, ttl time.Duration) error {
	if userID == "" || key == "" {
		return errors.New("userID and key are required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	k := redisKey(userID, key)
	now := g.now()

	if now.Sub(g.lastSweep) >= sweepEvery {
		maps.DeleteFunc(g.expires, func(_ string, exp time.Time) bool {
			return !now.Before(exp)
		})
		g.lastSweep = now
	}

	if exp, ok := g.expires[k]; ok && now.Before(exp) {
		return port.ErrKeyInUse
	}

	g.expires[k] = now.Add(ttl)
	return nil
}

func (g *MemoryGuard) Release(_ context.Context, userID, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.expires, redisKey(userID, key))
	return nil
}
