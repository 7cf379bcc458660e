package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/kosyncd/internal/models"
	"github.com/iudanet/kosyncd/internal/server/storage"
)

// GetProgress returns the stored reading position for (username, document).
// A document that was never synced yields an empty record, not an error.
func (s *Storage) GetProgress(ctx context.Context, username, document string) (*models.Progress, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	progress := &models.Progress{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketProgress).Get(syncKey(username, document))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, progress); err != nil {
			return fmt.Errorf("%w: progress %s:%s: %v", storage.ErrCorruptRecord, username, document, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return progress, nil
}

// SetProgress replaces the reading position wholesale. Last write wins:
// concurrent writers for the same document simply race and the last commit
// survives, which is the intended semantics for a single latest position.
func (s *Storage) SetProgress(ctx context.Context, username, document, position string, percentage float64, device, deviceID string) (int64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	timestamp := time.Now().Unix()
	progress := &models.Progress{
		Document:   document,
		Progress:   position,
		Percentage: &percentage,
		Device:     device,
		DeviceID:   deviceID,
		Timestamp:  timestamp,
	}

	data, err := json.Marshal(progress)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal progress: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketProgress).Put(syncKey(username, document), data); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("set progress: %w", err)
	}

	return timestamp, nil
}
