package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amarthakur0/go-api-template/internal/apperr"
	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/internal/service"
	"github.com/amarthakur0/go-api-template/internal/token"
)

// SessionService is the slice of the auth service the HTTP layer consumes.
type SessionService interface {
	Login(ctx context.Context, username, password string, source domain.Source) (*service.LoginResult, error)
	Refresh(ctx context.Context, userID int64, refreshToken string) (*service.LoginResult, error)
	Logout(ctx context.Context, userID int64) error
	ValidateToken(ctx context.Context, tokenString string) (*service.AuthenticatedUser, error)
}

const (
	// HeaderAuthorization carries the inbound bearer token.
	HeaderAuthorization = "Authorization"
	// HeaderAuthToken carries the access token on login and refresh
	// responses.
	HeaderAuthToken = "X-Auth-Token"
	// HeaderRefreshToken carries the refresh token on login and refresh
	// responses.
	HeaderRefreshToken = "X-Refresh-Token"
	// HeaderAPIKey carries the static service key when key auth is enabled.
	HeaderAPIKey = "X-API-Key"

	bearerPrefix = "Bearer "

	// ctxKeyAuthUser holds the *service.AuthenticatedUser after the auth
	// middleware accepts the request.
	ctxKeyAuthUser = "authUser"
)

// AuthUser pulls the authenticated identity off the request context. It only
// exists on routes behind AuthMiddleware.
func AuthUser(c *gin.Context) (*service.AuthenticatedUser, bool) {
	value, ok := c.Get(ctxKeyAuthUser)
	if !ok {
		return nil, false
	}
	authed, ok := value.(*service.AuthenticatedUser)
	return authed, ok
}

// AuthMiddleware validates the bearer token in the Authorization header and
// attaches the authenticated user to the context. Expired tokens get their
// own message and error code so clients know to refresh; the server-side
// session cross-check failures each keep the message the API has always
// used.
func AuthMiddleware(authService SessionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(HeaderAuthorization)
		if header == "" {
			respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Auth Token not present in request")
			return
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Auth Token not sent properly in request")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if tokenString == "" {
			respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Auth Token not sent properly in request")
			return
		}

		authed, err := authService.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrTokenExpired):
				respondError(c, http.StatusUnauthorized, apperr.CodeAuthTokenExpired, "Auth Token Expired")
			case errors.Is(err, token.ErrTokenInvalid):
				respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Invalid Auth Token")
			case errors.Is(err, service.ErrUserNotFound):
				respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Auth failed. User not found")
			case errors.Is(err, service.ErrSessionNotFound):
				respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Auth failed. User token not found in DB")
			case errors.Is(err, service.ErrSessionMismatch):
				// Which of the cross-checked fields disagreed is never
				// revealed; a superseded token is simply invalid.
				respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Invalid Auth Token")
			default:
				logger.Error("token validation failed", zap.Error(err))
				respondError(c, http.StatusInternalServerError, apperr.CodeNone, "Something went wrong")
			}
			return
		}

		c.Set(ctxKeyAuthUser, authed)
		c.Next()
	}
}

// APIKeyMiddleware gates all API routes behind a static service key. It is a
// deploy-time switch, off by default.
func APIKeyMiddleware(apiKey string, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		if c.GetHeader(HeaderAPIKey) != apiKey {
			respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Invalid API Key")
			return
		}

		c.Next()
	}
}

// RateLimitMiddleware applies the global per-IP throttle to every request.
// Limiter backend failures let the request through: an unavailable Redis must
// not take the API down with it.
func RateLimitMiddleware(limiter *service.APILimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Error("api rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if decision.Blocked {
			setRetryAfter(c, decision.RetryAfter)
			respondError(c, http.StatusTooManyRequests, apperr.CodeNone, "Too many requests")
			return
		}

		c.Next()
	}
}

func setRetryAfter(c *gin.Context, retryAfter time.Duration) {
	seconds := int64(retryAfter / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.FormatInt(seconds, 10))
}

// RequestLogger logs one structured line per request, after completion.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIp", c.ClientIP()),
		}
		for _, err := range c.Errors {
			fields = append(fields, zap.Error(err.Err))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
