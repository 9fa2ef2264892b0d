package db

import (
	"github.com/blogsphere/authsession/internal/server/refreshtokens"
	"github.com/blogsphere/authsession/internal/server/users"
)

// InMemoryRepositoryManager keeps all backend state in process memory; it
// is lost on restart.
type InMemoryRepositoryManager struct {
	users         users.Repository
	refreshTokens refreshtokens.Repository
}

func (m InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m InMemoryRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m InMemoryRepositoryManager) Close() error {
	return nil
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return InMemoryRepositoryManager{
		users:         users.NewInMemoryRepository(),
		refreshTokens: refreshtokens.NewInMemoryRepository(),
	}
}
