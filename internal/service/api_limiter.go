package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const apiLimiterKeyPrefix = "api_rate_limiter:"

// DefaultAPILimiterPolicy is the stock global throttle: 500 requests per
// 10 seconds per client IP, with a 5 minute block once exceeded.
func DefaultAPILimiterPolicy() LimiterPolicy {
	return LimiterPolicy{Points: 500, Window: 10 * time.Second, Block: 5 * time.Minute}
}

// APILimiter is the coarse per-IP throttle applied to every request. Unlike
// the login limiter, it consumes a point on each call.
type APILimiter struct {
	store  CounterStore
	policy LimiterPolicy
	logger *zap.Logger
}

// NewAPILimiter creates the global API limiter.
func NewAPILimiter(store CounterStore, policy LimiterPolicy, logger *zap.Logger) *APILimiter {
	return &APILimiter{
		store:  store,
		policy: policy,
		logger: logger,
	}
}

// Allow consumes one point for the client IP and reports whether the request
// may proceed.
func (l *APILimiter) Allow(ctx context.Context, ip string) (Decision, error) {
	key := apiLimiterKeyPrefix + ip

	count, err := l.store.Increment(ctx, key, l.policy.Window)
	if err != nil {
		return Decision{}, err
	}

	if count <= int64(l.policy.Points) {
		return Decision{}, nil
	}

	// First request over the cap establishes the block window.
	if count == int64(l.policy.Points)+1 {
		if err := l.store.SetExpiry(ctx, key, l.policy.Block); err != nil {
			l.logger.Error("failed to set api limiter block",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	counter, err := l.store.Get(ctx, key)
	if err != nil {
		return Decision{Blocked: true, RetryAfter: time.Second}, nil
	}

	return Decision{Blocked: true, RetryAfter: retryAfter(counter.TTL)}, nil
}
