package handlers

import "context"

// contextKey is the type for request-context keys
type contextKey string

const (
	// UsernameKey holds the authenticated username in the request context
	UsernameKey contextKey = "username"
	// RequestIDKey holds the request correlation id in the request context
	RequestIDKey contextKey = "request_id"
)

// GetUsername extracts the authenticated username from the request context
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetRequestID extracts the request correlation id from the request context
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDKey).(string)
	return id, ok
}
