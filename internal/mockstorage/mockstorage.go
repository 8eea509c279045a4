// Package mockstorage provides a testify-based mock implementation
// of the internal storage interfaces used by the service package.
// It is used for unit testing the account operations by simulating
// storage behavior, including failures no real storage produces on demand.
package mockstorage

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/sgorbunov/shrtaccounts/internal/models"
	"github.com/sgorbunov/shrtaccounts/internal/user"
)

// StorageMock is a testify mock that implements all interfaces
// used by the service for storage operations.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks user creation and returns the stored ID.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User, tx *sql.Tx) (string, error) {
	args := m.Called(ctx, usr, tx)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks fetching a user by their ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string, tx *sql.Tx) (*user.User, bool, error) {
	args := m.Called(ctx, userID, tx)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetUserByEmail mocks fetching a user by email.
func (m *StorageMock) GetUserByEmail(ctx context.Context, email string, tx *sql.Tx) (*user.User, bool, error) {
	args := m.Called(ctx, email, tx)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// UpdateUser mocks overwriting a user's profile fields.
func (m *StorageMock) UpdateUser(ctx context.Context, usr *user.User, tx *sql.Tx) error {
	args := m.Called(ctx, usr, tx)
	return args.Error(0)
}

// DeleteUser mocks removing a user row.
func (m *StorageMock) DeleteUser(ctx context.Context, userID string, tx *sql.Tx) (bool, error) {
	args := m.Called(ctx, userID, tx)
	return args.Bool(0), args.Error(1)
}

// InsertLink mocks creating a link record.
func (m *StorageMock) InsertLink(ctx context.Context, link *models.Link, tx *sql.Tx) error {
	args := m.Called(ctx, link, tx)
	return args.Error(0)
}

// GetUserShortLinks mocks collecting a user's short codes.
func (m *StorageMock) GetUserShortLinks(ctx context.Context, userID string, tx *sql.Tx) ([]string, error) {
	args := m.Called(ctx, userID, tx)
	shortLinks, _ := args.Get(0).([]string)
	return shortLinks, args.Error(1)
}

// DeleteUserLinks mocks removing all links of a user.
func (m *StorageMock) DeleteUserLinks(ctx context.Context, userID string, tx *sql.Tx) error {
	args := m.Called(ctx, userID, tx)
	return args.Error(0)
}

// InsertVisitLog mocks recording a click event.
func (m *StorageMock) InsertVisitLog(ctx context.Context, visit *models.VisitLog, tx *sql.Tx) error {
	args := m.Called(ctx, visit, tx)
	return args.Error(0)
}

// DeleteVisitLogsByShortLinks mocks removing visit logs by short code set.
func (m *StorageMock) DeleteVisitLogsByShortLinks(ctx context.Context, shortLinks []string, tx *sql.Tx) error {
	args := m.Called(ctx, shortLinks, tx)
	return args.Error(0)
}

// GetUserClickStats mocks the dashboard analytics aggregation.
func (m *StorageMock) GetUserClickStats(ctx context.Context, userID string) (models.ClickStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.ClickStats), args.Error(1)
}

// GetNumberOfUsers mocks the user count.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfLinks mocks the link count.
func (m *StorageMock) GetNumberOfLinks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// BeginTransaction mocks the beginning of a transaction.
func (m *StorageMock) BeginTransaction() (*sql.Tx, error) {
	args := m.Called()
	tx, _ := args.Get(0).(*sql.Tx)
	return tx, args.Error(1)
}

// CommitTransaction mocks committing a transaction.
func (m *StorageMock) CommitTransaction(tx *sql.Tx) error {
	args := m.Called(tx)
	return args.Error(0)
}

// RollbackTransaction mocks rolling back a transaction.
func (m *StorageMock) RollbackTransaction(tx *sql.Tx) error {
	args := m.Called(tx)
	return args.Error(0)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
