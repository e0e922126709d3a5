package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amarthakur0/go-api-template/pkg/database"
)

// Counter is a point-in-time view of one rate-limit counter.
type Counter struct {
	Count int64
	TTL   time.Duration
}

// CounterStore is the shared counter backend the limiters run on. Increment
// must be atomic per key; concurrent failed attempts may not lose updates.
type CounterStore interface {
	// Increment adds one to the key, starting the window TTL on first use,
	// and returns the new count.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	// SetExpiry resets the key's TTL, used to switch a counter from its
	// window to its block duration.
	SetExpiry(ctx context.Context, key string, ttl time.Duration) error
	// Get reads the counter without consuming. Missing keys read as zero.
	Get(ctx context.Context, key string) (Counter, error)
	Delete(ctx context.Context, key string) error
}

// redisCounterStore implements CounterStore on Redis. INCR gives the
// per-key atomicity the limiters rely on.
type redisCounterStore struct {
	redis *database.Redis
}

// NewRedisCounterStore creates a Redis-backed counter store.
func NewRedisCounterStore(redisDB *database.Redis) CounterStore {
	return &redisCounterStore{redis: redisDB}
}

func (s *redisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.redis.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}

	if count == 1 {
		if err := s.redis.Client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("failed to set counter window %s: %w", key, err)
		}
	}

	return count, nil
}

func (s *redisCounterStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.redis.Client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set counter expiry %s: %w", key, err)
	}
	return nil
}

func (s *redisCounterStore) Get(ctx context.Context, key string) (Counter, error) {
	count, err := s.redis.Client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Counter{}, nil
		}
		return Counter{}, fmt.Errorf("failed to read counter %s: %w", key, err)
	}

	ttl, err := s.redis.Client.PTTL(ctx, key).Result()
	if err != nil {
		return Counter{}, fmt.Errorf("failed to read counter ttl %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}

	return Counter{Count: count, TTL: ttl}, nil
}

func (s *redisCounterStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete counter %s: %w", key, err)
	}
	return nil
}
