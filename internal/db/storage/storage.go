// Package storage declares the persistence contract shared by the
// PostgreSQL, JSON file and in-memory storage implementations.
package storage

import (
	"context"
	"database/sql"

	"github.com/sgorbunov/shrtaccounts/internal/models"
	"github.com/sgorbunov/shrtaccounts/internal/user"
)

type Storage interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, bool, error)

	GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, bool, error)

	UpdateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) error

	DeleteUser(ctx context.Context, userID string, transaction *sql.Tx) (bool, error)

	InsertLink(ctx context.Context, link *models.Link, transaction *sql.Tx) error

	GetUserShortLinks(ctx context.Context, userID string, transaction *sql.Tx) ([]string, error)

	DeleteUserLinks(ctx context.Context, userID string, transaction *sql.Tx) error

	InsertVisitLog(ctx context.Context, visit *models.VisitLog, transaction *sql.Tx) error

	DeleteVisitLogsByShortLinks(ctx context.Context, shortLinks []string, transaction *sql.Tx) error

	GetUserClickStats(ctx context.Context, userID string) (models.ClickStats, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfLinks(ctx context.Context) (int64, error)

	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error

	Ping(ctx context.Context) error

	Close() error
}
