package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const flagKeyPrefix = "session:"

// RedisFlagStore keeps session flags in Redis.
type RedisFlagStore struct {
	rdb redis.Cmdable
}

// NewRedisFlagStore creates a Redis-backed flag store.
func NewRedisFlagStore(rdb redis.Cmdable) *RedisFlagStore {
	return &RedisFlagStore{rdb: rdb}
}

func (s *RedisFlagStore) SetFlag(ctx context.Context, sessionID, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, flagKeyPrefix+sessionID, value, ttl).Err()
}

func (s *RedisFlagStore) GetFlag(ctx context.Context, sessionID string) (string, error) {
	v, err := s.rdb.Get(ctx, flagKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrFlagNotFound
	}
	return v, err
}

func (s *RedisFlagStore) DeleteFlag(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, flagKeyPrefix+sessionID).Err()
}
