// Package memorystorage provides a purely in-memory storage implementation.
// It reuses the jsondb cache without the file persistence and is the default
// storage when neither a database DSN nor a storage file is configured.
package memorystorage

import (
	"github.com/sgorbunov/shrtaccounts/internal/db/jsondb"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: jsondb.NewInMemory(),
	}, nil
}
