package storage

import (
	"context"

	"github.com/iudanet/kosyncd/internal/models"
)

// SyncStorage defines the interface for per-document sync state persistence
type SyncStorage interface {
	// GetProgress returns the stored reading position, or an empty record
	// if the document was never synced. Absence is not an error.
	GetProgress(ctx context.Context, username, document string) (*models.Progress, error)

	// SetProgress replaces the reading position wholesale (last write wins)
	// and returns the server-assigned unix timestamp.
	SetProgress(ctx context.Context, username, document, position string, percentage float64, device, deviceID string) (int64, error)

	// GetAnnotations returns the versioned annotation state, or the zero
	// state (version 0, empty sets) if the document was never synced.
	GetAnnotations(ctx context.Context, username, document string) (*models.DocumentAnnotations, error)

	// UpdateAnnotations merges the incoming sets into the stored state
	// within a single transaction and bumps the version by exactly one.
	// When baseVersion is non-nil and the stored version is greater than
	// zero, a mismatch fails with ErrVersionConflict and writes nothing.
	// Returns the new version and the server-assigned unix timestamp.
	UpdateAnnotations(ctx context.Context, username, document string, annotations []models.Annotation, deleted []string, baseVersion *uint64) (uint64, int64, error)
}

// Storage combines everything a running server needs from a backend.
type Storage interface {
	UserStorage
	SyncStorage

	// Close releases the underlying database.
	Close() error
}
