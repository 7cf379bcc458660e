package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/kosyncd/internal/models"
	"github.com/iudanet/kosyncd/internal/server/storage"
	"github.com/iudanet/kosyncd/internal/validation"
	"github.com/iudanet/kosyncd/pkg/api"
)

// AuthHandler handles registration and credential checks
type AuthHandler struct {
	logger    *slog.Logger
	users     storage.UserStorage
	jwtConfig JWTConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, users storage.UserStorage, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		users:     users,
		jwtConfig: jwtConfig,
	}
}

// CreateUser handles POST /users/create.
// The password field already carries the client-computed hash; it is stored
// opaquely. Replies 402 when the username is taken, which is what deployed
// readers expect.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create user request", slog.Any("error", err))
		WriteError(h.logger, w, http.StatusForbidden, CodeInvalidRequest, "invalid request body")
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.String("username", req.Username), slog.Any("error", err))
		WriteError(h.logger, w, http.StatusForbidden, CodeInvalidRequest, "invalid username")
		return
	}
	if req.Password == "" {
		WriteError(h.logger, w, http.StatusForbidden, CodeInvalidRequest, "invalid password")
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: req.Password,
		CreatedAt:    time.Now(),
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("username", req.Username))
			WriteError(h.logger, w, http.StatusPaymentRequired, CodeUserExists, "user already exists")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		WriteError(h.logger, w, http.StatusInternalServerError, CodeStorage, "storage unavailable")
		return
	}

	h.logger.InfoContext(ctx, "user registered", slog.String("username", req.Username))

	WriteJSON(h.logger, w, http.StatusCreated, api.CreateUserResponse{Username: req.Username})
}

// CheckAuth handles GET /users/auth.
// The auth middleware already verified the credentials; reaching this
// handler means they were valid.
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(h.logger, w, http.StatusOK, api.AuthResponse{Authorized: "OK"})
}

// Login handles POST /users/login.
// Issues a JWT access token so newer clients can use Bearer auth instead of
// sending credentials on every request. Legacy header auth keeps working
// regardless.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		WriteError(h.logger, w, http.StatusForbidden, CodeInvalidRequest, "invalid request body")
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		WriteError(h.logger, w, http.StatusForbidden, CodeInvalidRequest, "invalid username")
		return
	}
	if req.Password == "" {
		WriteError(h.logger, w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("username", req.Username))
			WriteError(h.logger, w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		WriteError(h.logger, w, http.StatusInternalServerError, CodeStorage, "storage unavailable")
		return
	}

	// Stored hashes are opaque strings; authentication is plain equality.
	if user.PasswordHash != req.Password {
		h.logger.WarnContext(ctx, "login failed: wrong credentials", slog.String("username", req.Username))
		WriteError(h.logger, w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	token, expiresIn, err := GenerateAccessToken(h.jwtConfig, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		WriteError(h.logger, w, http.StatusInternalServerError, CodeStorage, "storage unavailable")
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("username", req.Username))

	WriteJSON(h.logger, w, http.StatusOK, api.TokenResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
	})
}
