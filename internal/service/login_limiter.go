package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	loginIPKeyPrefix     = "login_fail_ip_per_day:"
	loginUserIPKeyPrefix = "login_fail_consecutive_username_and_ip:"
)

// LimiterPolicy is one sliding-window counter policy: how many points fit in
// the window, and how long the key is blocked once the cap is reached.
type LimiterPolicy struct {
	Points int
	Window time.Duration
	Block  time.Duration
}

// LoginLimiterConfig holds the two login throttle policies.
type LoginLimiterConfig struct {
	IP         LimiterPolicy
	UsernameIP LimiterPolicy
}

// DefaultLoginLimiterConfig returns the stock policy: 100 failures per IP
// per day with a one-day block, and 10 failures per username+IP pair within
// 90 days with a one-hour block.
func DefaultLoginLimiterConfig() LoginLimiterConfig {
	return LoginLimiterConfig{
		IP:         LimiterPolicy{Points: 100, Window: 24 * time.Hour, Block: 24 * time.Hour},
		UsernameIP: LimiterPolicy{Points: 10, Window: 90 * 24 * time.Hour, Block: time.Hour},
	}
}

// Decision is the outcome of a limiter check.
type Decision struct {
	Blocked    bool
	RetryAfter time.Duration
}

// LoginLimiter throttles brute-force login attempts with two independent
// counters: one per client IP, one per username+IP pair. Failed attempts
// consume points; reaching the cap shortens the counter's TTL to the block
// duration, so the block clears itself.
type LoginLimiter struct {
	store  CounterStore
	config LoginLimiterConfig
	logger *zap.Logger
}

// NewLoginLimiter creates a login limiter over the given counter store.
func NewLoginLimiter(store CounterStore, config LoginLimiterConfig, logger *zap.Logger) *LoginLimiter {
	return &LoginLimiter{
		store:  store,
		config: config,
		logger: logger,
	}
}

// UsernameIPKey builds the per-account counter key. The username is
// lowercased so case variants of one account share a counter.
func UsernameIPKey(username, ip string) string {
	return strings.ToLower(username) + "_" + ip
}

// Check reads both counters without consuming points. The per-IP counter is
// evaluated first, so when both are exceeded the reported retry time is the
// IP block's.
func (l *LoginLimiter) Check(ctx context.Context, ip, usernameIPKey string) (Decision, error) {
	ipCounter, err := l.store.Get(ctx, loginIPKeyPrefix+ip)
	if err != nil {
		return Decision{}, err
	}
	if ipCounter.Count >= int64(l.config.IP.Points) {
		return Decision{Blocked: true, RetryAfter: retryAfter(ipCounter.TTL)}, nil
	}

	userCounter, err := l.store.Get(ctx, loginUserIPKeyPrefix+usernameIPKey)
	if err != nil {
		return Decision{}, err
	}
	if userCounter.Count >= int64(l.config.UsernameIP.Points) {
		return Decision{Blocked: true, RetryAfter: retryAfter(userCounter.TTL)}, nil
	}

	return Decision{}, nil
}

// RecordFailure consumes a point on the per-IP counter and, when the
// username belongs to a registered account, on the username+IP counter too.
// Unknown usernames stay out of the per-account counter: there is no account
// to protect, and probing must not pollute it.
func (l *LoginLimiter) RecordFailure(ctx context.Context, ip, usernameIPKey string, userExists bool) error {
	if err := l.consume(ctx, loginIPKeyPrefix+ip, l.config.IP); err != nil {
		return err
	}

	if userExists {
		if err := l.consume(ctx, loginUserIPKeyPrefix+usernameIPKey, l.config.UsernameIP); err != nil {
			return err
		}
	}

	return nil
}

// RecordSuccess forgives prior failures for the username+IP pair after a
// confirmed legitimate login. The per-IP counter is left alone: IP-level
// abuse history outlives any single successful login.
func (l *LoginLimiter) RecordSuccess(ctx context.Context, usernameIPKey string) error {
	key := loginUserIPKeyPrefix + usernameIPKey

	counter, err := l.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if counter.Count == 0 {
		return nil
	}

	return l.store.Delete(ctx, key)
}

func (l *LoginLimiter) consume(ctx context.Context, key string, policy LimiterPolicy) error {
	count, err := l.store.Increment(ctx, key, policy.Window)
	if err != nil {
		return err
	}

	if count >= int64(policy.Points) {
		if err := l.store.SetExpiry(ctx, key, policy.Block); err != nil {
			l.logger.Error("failed to set login limiter block",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	return nil
}

func retryAfter(ttl time.Duration) time.Duration {
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}
