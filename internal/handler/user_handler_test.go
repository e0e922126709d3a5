package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/internal/service"
)

// memCounterStore is an in-memory service.CounterStore for handler tests.
type memCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (s *memCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	if s.counts[key] == 1 {
		s.ttls[key] = window
	}
	return s.counts[key], nil
}

func (s *memCounterStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttls[key] = ttl
	return nil
}

func (s *memCounterStore) Get(ctx context.Context, key string) (service.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return service.Counter{Count: s.counts[key], TTL: s.ttls[key]}, nil
}

func (s *memCounterStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, key)
	delete(s.ttls, key)
	return nil
}

func loginTestRouter(svc SessionService, store service.CounterStore) *gin.Engine {
	limiter := service.NewLoginLimiter(store, service.LoginLimiterConfig{
		IP:         service.LimiterPolicy{Points: 100, Window: 24 * time.Hour, Block: 24 * time.Hour},
		UsernameIP: service.LimiterPolicy{Points: 3, Window: time.Hour, Block: time.Hour},
	}, zap.NewNop())

	userHandler := NewUserHandler(nil, svc, limiter, zap.NewNop())

	router := gin.New()
	router.POST("/login", userHandler.Login)
	return router
}

func doLogin(t *testing.T, router *gin.Engine, username, password string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestLoginSuccessSetsTokenHeaders(t *testing.T) {
	svc := &stubSessionService{
		loginResult: &service.LoginResult{
			User:         &domain.PublicUser{UserID: 1, Username: "alice"},
			AuthToken:    "access-token",
			RefreshToken: "refresh-token",
		},
	}
	router := loginTestRouter(svc, newMemCounterStore())

	rec, envelope := doLogin(t, router, "alice", "s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, envelope.Error)
	assert.Equal(t, "access-token", rec.Header().Get(HeaderAuthToken))
	assert.Equal(t, "refresh-token", rec.Header().Get(HeaderRefreshToken))
}

func TestLoginFailureIsGeneric(t *testing.T) {
	for _, loginErr := range []error{
		service.ErrUserNotFound,
		service.ErrUserDisabled,
		service.ErrPasswordMismatch,
	} {
		router := loginTestRouter(&stubSessionService{loginErr: loginErr}, newMemCounterStore())

		rec, envelope := doLogin(t, router, "alice", "wrong")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.True(t, envelope.Error)
		assert.Equal(t, "Invalid username or password", envelope.Message)
	}
}

func TestLoginBlockedAfterRepeatedFailures(t *testing.T) {
	store := newMemCounterStore()
	router := loginTestRouter(&stubSessionService{loginErr: service.ErrPasswordMismatch}, store)

	// The test limiter caps the username+IP pair at 3 failures.
	for i := 0; i < 3; i++ {
		rec, _ := doLogin(t, router, "alice", "wrong")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "attempt %d", i+1)
	}

	rec, envelope := doLogin(t, router, "alice", "wrong")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, envelope.Error)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// The block is keyed by username: another account from the same IP is
	// still allowed.
	rec, _ = doLogin(t, router, "bob", "wrong")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginUnknownUserOnlyChargesIPCounter(t *testing.T) {
	store := newMemCounterStore()
	router := loginTestRouter(&stubSessionService{loginErr: service.ErrUserNotFound}, store)

	for i := 0; i < 10; i++ {
		rec, _ := doLogin(t, router, "ghost", "wrong")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "attempt %d", i+1)
	}

	// Without a registered account the per-username counter stays empty, so
	// no username key exists in the store beyond the IP one.
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.counts, 1)
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	store := newMemCounterStore()
	failing := &stubSessionService{loginErr: service.ErrPasswordMismatch}
	router := loginTestRouter(failing, store)

	for i := 0; i < 2; i++ {
		doLogin(t, router, "alice", "wrong")
	}

	failing.loginErr = nil
	failing.loginResult = &service.LoginResult{
		User:         &domain.PublicUser{UserID: 1, Username: "alice"},
		AuthToken:    "access-token",
		RefreshToken: "refresh-token",
	}
	rec, _ := doLogin(t, router, "alice", "s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)

	// The pair has its full allowance again.
	failing.loginErr = service.ErrPasswordMismatch
	failing.loginResult = nil
	for i := 0; i < 3; i++ {
		rec, _ := doLogin(t, router, "alice", "wrong")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "attempt %d", i+1)
	}
}

func TestRefreshTokenEndpoint(t *testing.T) {
	svc := &stubSessionService{
		refreshResult: &service.LoginResult{
			User:         &domain.PublicUser{UserID: 1, Username: "alice"},
			AuthToken:    "new-access",
			RefreshToken: "new-refresh",
		},
	}
	userHandler := NewUserHandler(nil, svc, nil, zap.NewNop())

	router := gin.New()
	router.POST("/refreshToken", userHandler.RefreshToken)

	body := []byte(`{"userId":1,"refreshToken":"old-refresh"}`)
	req := httptest.NewRequest(http.MethodPost, "/refreshToken", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new-access", rec.Header().Get(HeaderAuthToken))
	assert.Equal(t, "new-refresh", rec.Header().Get(HeaderRefreshToken))
}

func TestRefreshTokenRejectsUnmappedToken(t *testing.T) {
	svc := &stubSessionService{refreshErr: service.ErrRefreshNotMapped}
	userHandler := NewUserHandler(nil, svc, nil, zap.NewNop())

	router := gin.New()
	router.POST("/refreshToken", userHandler.RefreshToken)

	body := []byte(`{"userId":1,"refreshToken":"stale"}`)
	req := httptest.NewRequest(http.MethodPost, "/refreshToken", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Refresh Token not mapped to user", envelope.Message)
}
