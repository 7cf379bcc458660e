package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/kosyncd/internal/merge"
	"github.com/iudanet/kosyncd/internal/models"
	"github.com/iudanet/kosyncd/internal/server/storage"
)

// GetAnnotations returns the versioned annotation state for
// (username, document). A document that was never synced yields version 0
// with empty sets, not an error.
func (s *Storage) GetAnnotations(ctx context.Context, username, document string) (*models.DocumentAnnotations, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	doc := models.NewDocumentAnnotations()

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketAnnotations).Get(syncKey(username, document))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("%w: annotations %s:%s: %v", storage.ErrCorruptRecord, username, document, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// UpdateAnnotations runs the optimistic-locking update protocol: read the
// current state, check the base version, merge, write version+1. The whole
// sequence lives inside one bbolt write transaction, so a conflicting update
// aborts without touching stored state.
//
// The version check is skipped while the stored version is 0: the first
// writer bootstraps the record no matter what base version it believes in.
func (s *Storage) UpdateAnnotations(ctx context.Context, username, document string, annotations []models.Annotation, deleted []string, baseVersion *uint64) (uint64, int64, error) {
	if s.db == nil {
		return 0, 0, storage.ErrStorageClosed
	}

	key := syncKey(username, document)
	timestamp := time.Now().Unix()

	var version uint64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAnnotations)

		current := models.NewDocumentAnnotations()
		if data := bucket.Get(key); data != nil {
			if err := json.Unmarshal(data, current); err != nil {
				return fmt.Errorf("%w: annotations %s:%s: %v", storage.ErrCorruptRecord, username, document, err)
			}
		}

		if baseVersion != nil && current.Version > 0 && *baseVersion != current.Version {
			return storage.ErrVersionConflict
		}

		next := &models.DocumentAnnotations{
			Version:     current.Version + 1,
			Annotations: merge.Annotations(current.Annotations, annotations, current.Deleted, deleted),
			Deleted:     merge.Tombstones(current.Deleted, deleted),
			UpdatedAt:   timestamp,
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal annotations: %w", err)
		}
		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save annotations: %w", err)
		}

		version = next.Version
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("update annotations: %w", err)
	}

	return version, timestamp, nil
}
