package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/kosyncd/internal/models"
	"github.com/iudanet/kosyncd/internal/server/storage"
)

// CreateUser creates a new user keyed by username.
// Existence is checked and the record written within one transaction, so two
// concurrent registrations for the same name cannot both succeed.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		if bucket.Get([]byte(user.Username)) != nil {
			return storage.ErrUserAlreadyExists
		}
		if err := bucket.Put([]byte(user.Username), data); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves a user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var user *models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketUsers).Get([]byte(username))
		if data == nil {
			return storage.ErrUserNotFound
		}

		user = &models.User{}
		if err := json.Unmarshal(data, user); err != nil {
			return fmt.Errorf("%w: user %q: %v", storage.ErrCorruptRecord, username, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
