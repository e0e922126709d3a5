package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amarthakur0/go-api-template/internal/apperr"
	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/internal/dto"
	"github.com/amarthakur0/go-api-template/internal/service"
)

// UserHandler serves the user endpoints, including the session routes. It
// owns the login rate limiter orchestration: the services know nothing about
// throttling.
type UserHandler struct {
	userService  *service.UserService
	authService  SessionService
	loginLimiter *service.LoginLimiter
	logger       *zap.Logger
}

// NewUserHandler creates the user handler.
func NewUserHandler(
	userService *service.UserService,
	authService SessionService,
	loginLimiter *service.LoginLimiter,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		userService:  userService,
		authService:  authService,
		loginLimiter: loginLimiter,
		logger:       logger,
	}
}

// Create handles POST /user/create.
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid request payload")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), service.CreateUserInput{
		Username:    req.Username,
		EmailID:     req.EmailID,
		MobileNo:    req.MobileNo,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		CreatedBy:   actorID(c),
	})
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "User created successfully", user)
}

// Update handles POST /user/update.
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid request payload")
		return
	}

	err := h.userService.Update(c.Request.Context(), service.UpdateUserInput{
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		MobileNo:    req.MobileNo,
		ModifiedBy:  actorID(c),
	})
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "User updated successfully", nil)
}

// Delete handles POST /user/delete.
func (h *UserHandler) Delete(c *gin.Context) {
	var req dto.DeleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid request payload")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), req.UserID, actorID(c)); err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "User deleted successfully", nil)
}

// GetByID handles GET /user/get/:userId.
func (h *UserHandler) GetByID(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid user id")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "User fetched successfully", user)
}

// GetAll handles GET /user/getall.
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.userService.GetAll(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Users fetched successfully", users)
}

// Login handles POST /user/login. Both limiter counters are consulted before
// the credentials are checked, and charged after a failure. All credential
// failures collapse into one message so callers cannot probe which usernames
// exist.
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid request payload")
		return
	}

	source := domain.Source(req.Source)
	if req.Source == 0 {
		source = domain.SourceWeb
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()
	limiterKey := service.UsernameIPKey(req.Username, ip)

	decision, err := h.loginLimiter.Check(ctx, ip, limiterKey)
	if err != nil {
		h.logger.Error("login limiter unavailable", zap.Error(err))
	} else if decision.Blocked {
		setRetryAfter(c, decision.RetryAfter)
		respondError(c, http.StatusTooManyRequests, apperr.CodeNone, "Too many failed login attempts. Try again later")
		return
	}

	result, err := h.authService.Login(ctx, req.Username, req.Password, source)
	if err != nil {
		if isCredentialFailure(err) {
			// Unknown usernames only charge the IP counter.
			userExists := !errors.Is(err, service.ErrUserNotFound)
			if recordErr := h.loginLimiter.RecordFailure(ctx, ip, limiterKey, userExists); recordErr != nil {
				h.logger.Error("failed to record login failure", zap.Error(recordErr))
			}
			respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid username or password")
			return
		}

		h.logger.Error("login failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, apperr.CodeNone, "Something went wrong")
		return
	}

	if err := h.loginLimiter.RecordSuccess(ctx, limiterKey); err != nil {
		h.logger.Error("failed to reset login limiter", zap.Error(err))
	}

	c.Header(HeaderAuthToken, result.AuthToken)
	c.Header(HeaderRefreshToken, result.RefreshToken)
	respondOK(c, http.StatusOK, "Login successful", result.User)
}

// Logout handles GET /user/logout. The route sits behind the auth
// middleware, so the session to close is the caller's own.
func (h *UserHandler) Logout(c *gin.Context) {
	authed, ok := AuthUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Auth failed")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), authed.User.UserID); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, apperr.CodeNone, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "Logout successful", nil)
}

// RefreshToken handles POST /user/refreshToken. It is reachable without a
// valid access token: the expired access token is exactly the situation it
// exists for. The refresh token alone, bound to the user id, authorizes the
// rotation.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid request payload")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.UserID, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshNotMapped):
			respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Refresh Token not mapped to user")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusUnauthorized, apperr.CodeNone, "Auth failed. User not found")
		default:
			h.logger.Error("token refresh failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, apperr.CodeNone, "Something went wrong")
		}
		return
	}

	c.Header(HeaderAuthToken, result.AuthToken)
	c.Header(HeaderRefreshToken, result.RefreshToken)
	respondOK(c, http.StatusOK, "Token refreshed successfully", result.User)
}

func isCredentialFailure(err error) bool {
	return errors.Is(err, service.ErrUserNotFound) ||
		errors.Is(err, service.ErrUserDisabled) ||
		errors.Is(err, service.ErrPasswordMismatch)
}

// actorID is the authenticated caller's id for audit columns, zero on the
// open routes.
func actorID(c *gin.Context) int64 {
	if authed, ok := AuthUser(c); ok {
		return authed.User.UserID
	}
	return 0
}
