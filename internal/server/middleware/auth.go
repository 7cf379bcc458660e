package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/kosyncd/internal/server/handlers"
	"github.com/iudanet/kosyncd/internal/server/storage"
	"github.com/iudanet/kosyncd/internal/validation"
)

// Legacy credential headers sent by deployed reader devices on every request
const (
	HeaderAuthUser = "x-auth-user"
	HeaderAuthKey  = "x-auth-key"
)

// Auth creates middleware that authenticates a request and stores the
// username in the request context.
//
// Two schemes are accepted: the legacy per-request credential headers
// (verified against the user store by plain equality) and an
// "Authorization: Bearer" JWT issued by the login endpoint. The header
// scheme is checked first because legacy devices send it unconditionally.
func Auth(logger *slog.Logger, users storage.UserStorage, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			username, ok := authenticate(ctx, logger, users, jwtConfig, r)
			if !ok {
				handlers.WriteError(logger, w, http.StatusUnauthorized, handlers.CodeUnauthorized, "unauthorized")
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("username", username))

			ctx = context.WithValue(ctx, handlers.UsernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, logger *slog.Logger, users storage.UserStorage, jwtConfig handlers.JWTConfig, r *http.Request) (string, bool) {
	if user := r.Header.Get(HeaderAuthUser); user != "" {
		return verifyHeaders(ctx, logger, users, user, r.Header.Get(HeaderAuthKey))
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.WarnContext(ctx, "missing credentials")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		logger.WarnContext(ctx, "invalid Authorization header format")
		return "", false
	}

	claims, err := handlers.ValidateAccessToken(jwtConfig, parts[1])
	if err != nil {
		logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
		return "", false
	}

	return claims.Username, true
}

func verifyHeaders(ctx context.Context, logger *slog.Logger, users storage.UserStorage, username, key string) (string, bool) {
	if key == "" || validation.ValidateUsername(username) != nil {
		logger.WarnContext(ctx, "malformed credential headers")
		return "", false
	}

	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			logger.ErrorContext(ctx, "failed to verify user", slog.Any("error", err))
		}
		return "", false
	}

	// Stored hashes are opaque; verification is plain string equality.
	if user.PasswordHash != key {
		logger.WarnContext(ctx, "wrong credentials", slog.String("username", username))
		return "", false
	}

	return username, true
}
