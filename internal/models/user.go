package models

import "time"

// User represents a registered account. PasswordHash is whatever the client
// submitted at registration (legacy readers send an MD5 hex digest); the
// server never re-hashes it and authenticates by plain equality, so existing
// devices keep working.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
