package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that a user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrVersionConflict indicates that an annotation update was submitted
	// against a stale base version. The caller must re-read and retry;
	// nothing is written on this path.
	ErrVersionConflict = errors.New("version conflict")

	// ErrCorruptRecord indicates that a stored record failed to decode.
	// Distinct from I/O failures: it signals a data or schema problem,
	// not a storage availability problem.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrStorageClosed indicates that storage was already closed
	ErrStorageClosed = errors.New("storage is closed")
)
