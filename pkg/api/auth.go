// Package api defines the wire types of the sync protocol.
package api

// CreateUserRequest represents a registration request.
// Password carries whatever hash the client computed; the server stores it
// opaquely and never re-hashes.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserResponse represents a successful registration
type CreateUserResponse struct {
	Username string `json:"username"`
}

// AuthResponse represents a successful credential check
type AuthResponse struct {
	Authorized string `json:"authorized"`
}

// LoginRequest represents a token-issue request for clients that prefer
// Bearer auth over per-request credential headers
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents an issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT access token
	ExpiresIn   int64  `json:"expires_in"`   // access token lifetime in seconds
}

// ErrorResponse is the error envelope shared by every endpoint.
//
// Codes: 2000 storage/serialization, 2001 unauthorized, 2002 user exists,
// 2003 invalid request, 2004 document field missing/invalid,
// 2005 version conflict.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
