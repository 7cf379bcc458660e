package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/kosyncd/internal/merge"
	"github.com/iudanet/kosyncd/internal/models"
	"github.com/iudanet/kosyncd/internal/server/storage"
)

// GetAnnotations returns the versioned annotation state for
// (username, document), or the zero state if the document was never synced.
func (s *Storage) GetAnnotations(ctx context.Context, username, document string) (*models.DocumentAnnotations, error) {
	query := `
		SELECT version, annotations, deleted, updated_at
		FROM document_annotations
		WHERE username = ? AND document = ?
	`

	doc := models.NewDocumentAnnotations()
	var annotationsJSON, deletedJSON []byte

	err := s.db.QueryRowContext(ctx, query, username, document).Scan(
		&doc.Version,
		&annotationsJSON,
		&deletedJSON,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to get annotations: %w", err)
	}

	if err := decodeSets(doc, annotationsJSON, deletedJSON, username, document); err != nil {
		return nil, err
	}

	return doc, nil
}

// UpdateAnnotations runs the optimistic-locking update protocol inside one
// SQL transaction: read the current row, check the base version, merge,
// upsert version+1. A conflict rolls back without touching stored state.
//
// The version check is skipped while the stored version is 0: the first
// writer bootstraps the record no matter what base version it believes in.
func (s *Storage) UpdateAnnotations(ctx context.Context, username, document string, annotations []models.Annotation, deleted []string, baseVersion *uint64) (uint64, int64, error) {
	timestamp := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	current := models.NewDocumentAnnotations()
	var annotationsJSON, deletedJSON []byte

	err = tx.QueryRowContext(ctx, `
		SELECT version, annotations, deleted, updated_at
		FROM document_annotations
		WHERE username = ? AND document = ?
	`, username, document).Scan(
		&current.Version,
		&annotationsJSON,
		&deletedJSON,
		&current.UpdatedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first write for this document
	case err != nil:
		return 0, 0, fmt.Errorf("failed to read annotations: %w", err)
	default:
		if err := decodeSets(current, annotationsJSON, deletedJSON, username, document); err != nil {
			return 0, 0, err
		}
	}

	if baseVersion != nil && current.Version > 0 && *baseVersion != current.Version {
		return 0, 0, storage.ErrVersionConflict
	}

	next := &models.DocumentAnnotations{
		Version:     current.Version + 1,
		Annotations: merge.Annotations(current.Annotations, annotations, current.Deleted, deleted),
		Deleted:     merge.Tombstones(current.Deleted, deleted),
		UpdatedAt:   timestamp,
	}

	mergedJSON, err := json.Marshal(next.Annotations)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to marshal annotations: %w", err)
	}
	tombstonesJSON, err := json.Marshal(next.Deleted)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to marshal deleted set: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_annotations (username, document, version, annotations, deleted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (username, document) DO UPDATE SET
			version = excluded.version,
			annotations = excluded.annotations,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`, username, document, next.Version, mergedJSON, tombstonesJSON, timestamp)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to write annotations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit annotations update: %w", err)
	}

	return next.Version, timestamp, nil
}

// decodeSets fills doc with the JSON columns, mapping decode failures to
// ErrCorruptRecord so callers can tell a schema problem from an I/O one.
func decodeSets(doc *models.DocumentAnnotations, annotationsJSON, deletedJSON []byte, username, document string) error {
	if err := json.Unmarshal(annotationsJSON, &doc.Annotations); err != nil {
		return fmt.Errorf("%w: annotations %s:%s: %v", storage.ErrCorruptRecord, username, document, err)
	}
	if err := json.Unmarshal(deletedJSON, &doc.Deleted); err != nil {
		return fmt.Errorf("%w: deleted set %s:%s: %v", storage.ErrCorruptRecord, username, document, err)
	}
	if doc.Annotations == nil {
		doc.Annotations = []models.Annotation{}
	}
	if doc.Deleted == nil {
		doc.Deleted = []string{}
	}
	return nil
}
