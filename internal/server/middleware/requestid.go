package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iudanet/kosyncd/internal/server/handlers"
)

// RequestIDHeader is the response header carrying the correlation id
const RequestIDHeader = "X-Request-Id"

// RequestID creates middleware that attaches a correlation id to every
// request. An id supplied by a proxy is reused, otherwise a new one is
// generated; either way it is stored in the context and echoed in the
// response so client reports can be matched against server logs.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}

			w.Header().Set(RequestIDHeader, id)

			ctx := context.WithValue(r.Context(), handlers.RequestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
