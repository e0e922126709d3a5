package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// Redis wraps the client backing the rate-limit counters.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis and verifies the connection before handing it
// out; the limiters cannot run without it.
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{Client: client}, nil
}

// Close releases the client's connection pool.
func (r *Redis) Close() error {
	return r.Client.Close()
}

// Ping reports whether Redis is reachable, used by the health endpoint.
func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}
