// Package credentials persists the current access and refresh token.
//
// The store is a plain durable map: it does not validate token contents and
// has no side effects beyond persistence. Concurrent writers are last-write-wins
// at the granularity of a whole Pair; callers serialize writes.
package credentials

import (
	"context"
	"fmt"

	"github.com/blogsphere/authsession/internal/client/repositories/metadata"
	"github.com/blogsphere/authsession/internal/common"
)

// Pair is the credential pair. An empty string means the token is absent.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether neither token is present.
func (p Pair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// Reader is the read side used by the request authorizer.
type Reader interface {
	Get(ctx context.Context) (Pair, error)
}

// Store is the read/write credential store.
type Store interface {
	Reader
	// Set replaces the whole pair; empty fields are removed.
	Set(ctx context.Context, p Pair) error
	SetAccessToken(ctx context.Context, token string) error
	ClearAccessToken(ctx context.Context) error
	// Clear removes both tokens. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// RepositoryStore keeps the pair in a metadata.Repository under the
// well-known keys common.AccessTokenKey and common.RefreshTokenKey.
type RepositoryStore struct {
	repo metadata.Repository
}

var _ Store = (*RepositoryStore)(nil)

func NewStore(repo metadata.Repository) *RepositoryStore {
	return &RepositoryStore{repo: repo}
}

func (s *RepositoryStore) Get(ctx context.Context) (Pair, error) {
	access, err := s.repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return Pair{}, fmt.Errorf("read access token: %w", err)
	}
	refresh, err := s.repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return Pair{}, fmt.Errorf("read refresh token: %w", err)
	}
	return Pair{AccessToken: string(access), RefreshToken: string(refresh)}, nil
}

func (s *RepositoryStore) Set(ctx context.Context, p Pair) error {
	err := s.repo.Apply(ctx,
		change(common.AccessTokenKey, p.AccessToken),
		change(common.RefreshTokenKey, p.RefreshToken),
	)
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s *RepositoryStore) SetAccessToken(ctx context.Context, token string) error {
	if err := s.repo.Apply(ctx, change(common.AccessTokenKey, token)); err != nil {
		return fmt.Errorf("write access token: %w", err)
	}
	return nil
}

func (s *RepositoryStore) ClearAccessToken(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.AccessTokenKey); err != nil {
		return fmt.Errorf("clear access token: %w", err)
	}
	return nil
}

func (s *RepositoryStore) Clear(ctx context.Context) error {
	err := s.repo.Apply(ctx,
		metadata.Change{Key: common.AccessTokenKey},
		metadata.Change{Key: common.RefreshTokenKey},
	)
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func change(key, token string) metadata.Change {
	if token == "" {
		return metadata.Change{Key: key}
	}
	return metadata.Change{Key: key, Value: []byte(token)}
}
