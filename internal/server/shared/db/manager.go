// Package db groups the backend repositories behind one manager so the
// storage choice is made in a single place.
package db

import (
	"github.com/blogsphere/authsession/internal/server/refreshtokens"
	"github.com/blogsphere/authsession/internal/server/users"
)

type RepositoryManager interface {
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	Close() error
}

// NewRepositoryManager picks PostgreSQL when dsn is set and process memory
// otherwise.
func NewRepositoryManager(dsn string) (RepositoryManager, error) {
	if dsn == "" {
		return NewInMemoryRepositoryManager(), nil
	}
	return NewPostgresRepositoryManager(dsn)
}
