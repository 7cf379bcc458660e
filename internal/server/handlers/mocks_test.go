package handlers

import (
	"context"
	"log/slog"
	"os"

	"github.com/iudanet/kosyncd/internal/models"
	"github.com/iudanet/kosyncd/internal/server/storage"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // only show errors in tests
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// mockUserStorage is an in-memory UserStorage for handler tests
type mockUserStorage struct {
	users map[string]*models.User
	err   error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.Username]; ok {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

// mockSyncStorage returns canned values for SyncStorage calls
type mockSyncStorage struct {
	progress    *models.Progress
	annotations *models.DocumentAnnotations
	setTS       int64
	version     uint64
	updateTS    int64
	err         error

	gotAnnotations []models.Annotation
	gotDeleted     []string
	gotBaseVersion *uint64
}

func (m *mockSyncStorage) GetProgress(ctx context.Context, username, document string) (*models.Progress, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.progress == nil {
		return &models.Progress{}, nil
	}
	return m.progress, nil
}

func (m *mockSyncStorage) SetProgress(ctx context.Context, username, document, position string, percentage float64, device, deviceID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.setTS, nil
}

func (m *mockSyncStorage) GetAnnotations(ctx context.Context, username, document string) (*models.DocumentAnnotations, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.annotations == nil {
		return models.NewDocumentAnnotations(), nil
	}
	return m.annotations, nil
}

func (m *mockSyncStorage) UpdateAnnotations(ctx context.Context, username, document string, annotations []models.Annotation, deleted []string, baseVersion *uint64) (uint64, int64, error) {
	m.gotAnnotations = annotations
	m.gotDeleted = deleted
	m.gotBaseVersion = baseVersion
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.version, m.updateTS, nil
}
