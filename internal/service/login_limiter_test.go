package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCounterStore is an in-memory CounterStore for limiter tests.
type fakeCounterStore struct {
	counts map[string]int64
	ttls   map[string]time.Duration
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (s *fakeCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.counts[key]++
	if s.counts[key] == 1 {
		s.ttls[key] = window
	}
	return s.counts[key], nil
}

func (s *fakeCounterStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	s.ttls[key] = ttl
	return nil
}

func (s *fakeCounterStore) Get(ctx context.Context, key string) (Counter, error) {
	return Counter{Count: s.counts[key], TTL: s.ttls[key]}, nil
}

func (s *fakeCounterStore) Delete(ctx context.Context, key string) error {
	delete(s.counts, key)
	delete(s.ttls, key)
	return nil
}

func newTestLoginLimiter(store CounterStore) *LoginLimiter {
	return NewLoginLimiter(store, DefaultLoginLimiterConfig(), zap.NewNop())
}

func TestLoginLimiterAllowsFreshClient(t *testing.T) {
	limiter := newTestLoginLimiter(newFakeCounterStore())

	decision, err := limiter.Check(context.Background(), "10.0.0.1", UsernameIPKey("alice", "10.0.0.1"))
	require.NoError(t, err)
	assert.False(t, decision.Blocked)
}

func TestLoginLimiterBlocksUsernameAfterTenFailures(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	limiter := newTestLoginLimiter(store)

	ip := "10.0.0.1"
	key := UsernameIPKey("alice", ip)

	for i := 0; i < 9; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, ip, key, true))

		decision, err := limiter.Check(ctx, ip, key)
		require.NoError(t, err)
		assert.False(t, decision.Blocked, "attempt %d should still be allowed", i+2)
	}

	require.NoError(t, limiter.RecordFailure(ctx, ip, key, true))

	decision, err := limiter.Check(ctx, ip, key)
	require.NoError(t, err)
	assert.True(t, decision.Blocked)
	assert.Equal(t, time.Hour, decision.RetryAfter)
}

func TestLoginLimiterBlockShortensTTL(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	limiter := newTestLoginLimiter(store)

	ip := "10.0.0.1"
	key := UsernameIPKey("alice", ip)

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, ip, key, true))
	}

	// Reaching the cap switches the key from the 90 day window to the one
	// hour block, so the block clears on its own.
	assert.Equal(t, time.Hour, store.ttls[loginUserIPKeyPrefix+key])
}

func TestLoginLimiterSuccessResetsUsernameCounter(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	limiter := newTestLoginLimiter(store)

	ip := "10.0.0.1"
	key := UsernameIPKey("alice", ip)

	for i := 0; i < 9; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, ip, key, true))
	}
	require.NoError(t, limiter.RecordSuccess(ctx, key))

	// The pair gets its full allowance back.
	for i := 0; i < 9; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, ip, key, true))
	}
	decision, err := limiter.Check(ctx, ip, key)
	require.NoError(t, err)
	assert.False(t, decision.Blocked)

	// The per-IP counter keeps the full history.
	assert.Equal(t, int64(18), store.counts[loginIPKeyPrefix+ip])
}

func TestLoginLimiterUnknownUserSkipsUsernameCounter(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	limiter := newTestLoginLimiter(store)

	ip := "10.0.0.1"
	key := UsernameIPKey("ghost", ip)

	for i := 0; i < 20; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, ip, key, false))
	}

	assert.Equal(t, int64(0), store.counts[loginUserIPKeyPrefix+key])
	assert.Equal(t, int64(20), store.counts[loginIPKeyPrefix+ip])

	decision, err := limiter.Check(ctx, ip, key)
	require.NoError(t, err)
	assert.False(t, decision.Blocked)
}

func TestLoginLimiterBlocksIPAfterHundredFailures(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	limiter := newTestLoginLimiter(store)

	ip := "10.0.0.1"

	// Spread failures across usernames so only the IP counter fills up.
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, ip, UsernameIPKey("ghost", ip), false))
	}

	decision, err := limiter.Check(ctx, ip, UsernameIPKey("alice", ip))
	require.NoError(t, err)
	assert.True(t, decision.Blocked)
	assert.Equal(t, 24*time.Hour, decision.RetryAfter)

	// Another IP is unaffected.
	decision, err = limiter.Check(ctx, "10.0.0.2", UsernameIPKey("alice", "10.0.0.2"))
	require.NoError(t, err)
	assert.False(t, decision.Blocked)
}

func TestLoginLimiterIPBlockTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	limiter := newTestLoginLimiter(store)

	ip := "10.0.0.1"
	key := UsernameIPKey("alice", ip)

	store.counts[loginIPKeyPrefix+ip] = 100
	store.ttls[loginIPKeyPrefix+ip] = 24 * time.Hour
	store.counts[loginUserIPKeyPrefix+key] = 10
	store.ttls[loginUserIPKeyPrefix+key] = time.Hour

	decision, err := limiter.Check(ctx, ip, key)
	require.NoError(t, err)
	assert.True(t, decision.Blocked)
	assert.Equal(t, 24*time.Hour, decision.RetryAfter)
}

func TestUsernameIPKeyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, UsernameIPKey("alice", "10.0.0.1"), UsernameIPKey("ALICE", "10.0.0.1"))
	assert.NotEqual(t, UsernameIPKey("alice", "10.0.0.1"), UsernameIPKey("alice", "10.0.0.2"))
}

func TestAPILimiterBlocksOverCap(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	limiter := NewAPILimiter(store, LimiterPolicy{Points: 3, Window: 10 * time.Second, Block: 5 * time.Minute}, zap.NewNop())

	ip := "10.0.0.1"
	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, ip)
		require.NoError(t, err)
		assert.False(t, decision.Blocked)
	}

	decision, err := limiter.Allow(ctx, ip)
	require.NoError(t, err)
	assert.True(t, decision.Blocked)
	assert.Equal(t, 5*time.Minute, store.ttls[apiLimiterKeyPrefix+ip])
}
