package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/kosyncd/internal/models"
)

// GetProgress returns the stored reading position for (username, document).
// A document that was never synced yields an empty record, not an error.
func (s *Storage) GetProgress(ctx context.Context, username, document string) (*models.Progress, error) {
	query := `
		SELECT document, position, percentage, device, device_id, timestamp
		FROM progress
		WHERE username = ? AND document = ?
	`

	progress := &models.Progress{}
	var percentage float64

	err := s.db.QueryRowContext(ctx, query, username, document).Scan(
		&progress.Document,
		&progress.Progress,
		&percentage,
		&progress.Device,
		&progress.DeviceID,
		&progress.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Progress{}, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	progress.Percentage = &percentage

	return progress, nil
}

// SetProgress replaces the reading position wholesale (last write wins) and
// returns the server-assigned unix timestamp.
func (s *Storage) SetProgress(ctx context.Context, username, document, position string, percentage float64, device, deviceID string) (int64, error) {
	timestamp := time.Now().Unix()

	query := `
		INSERT INTO progress (username, document, position, percentage, device, device_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (username, document) DO UPDATE SET
			position = excluded.position,
			percentage = excluded.percentage,
			device = excluded.device,
			device_id = excluded.device_id,
			timestamp = excluded.timestamp
	`

	_, err := s.db.ExecContext(ctx, query,
		username,
		document,
		position,
		percentage,
		device,
		deviceID,
		timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to set progress: %w", err)
	}

	return timestamp, nil
}
