package view

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"io.winapps.babytracker/internal/domain"
)

// Guard rejects a second identical action of a session while the first is in flight.
type Guard interface {
	Acquire(ctx context.Context, sessionID, action string) (release func(), err error)
}

// RedisGuard holds in-flight markers as Redis keys set with NX.
type RedisGuard struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisGuard creates a guard. ttl bounds how long a crashed request can
// block its action.
func NewRedisGuard(rdb redis.Cmdable, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, sessionID, action string) (func(), error) {
	key := "inflight:" + sessionID + ":" + action
	ok, err := g.rdb.SetNX(ctx, key, time.Now().UnixMilli(), g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to mark %s in flight: %w", action, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", action, domain.ErrInFlight)
	}
	return func() {
		// release must happen even when the request context is gone
		g.rdb.Del(context.WithoutCancel(ctx), key)
	}, nil
}
