package credentials

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/blogsphere/authsession/internal/client/repositories"
	"github.com/blogsphere/authsession/internal/client/repositories/metadata"
	"github.com/blogsphere/authsession/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*RepositoryStore, metadata.Repository) {
	t.Helper()
	repos, err := repositories.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return NewStore(repos.Metadata), repos.Metadata
}

func TestStore_EmptyByDefault(t *testing.T) {
	s, _ := newStore(t)

	p, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Empty())
}

func TestStore_SetWritesWellKnownKeys(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, Pair{AccessToken: "A", RefreshToken: "R"}))

	access, err := repo.Get(ctx, common.AccessTokenKey)
	require.NoError(t, err)
	refresh, err := repo.Get(ctx, common.RefreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "A", string(access))
	assert.Equal(t, "R", string(refresh))

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Pair{AccessToken: "A", RefreshToken: "R"}, p)
}

func TestStore_SetReplacesWholePair(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, Pair{AccessToken: "A1", RefreshToken: "R1"}))
	require.NoError(t, s.Set(ctx, Pair{RefreshToken: "R2"}))

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Pair{RefreshToken: "R2"}, p)
}

func TestStore_AccessTokenOnlyOperations(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, Pair{AccessToken: "A1", RefreshToken: "R"}))

	require.NoError(t, s.ClearAccessToken(ctx))
	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Pair{RefreshToken: "R"}, p)

	require.NoError(t, s.SetAccessToken(ctx, "A2"))
	p, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Pair{AccessToken: "A2", RefreshToken: "R"}, p)
}

func TestStore_ClearIsIdempotentAndKeepsOtherKeys(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, common.SessionSnapshotKey, []byte(`{}`)))
	require.NoError(t, s.Set(ctx, Pair{AccessToken: "A", RefreshToken: "R"}))

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.True(t, p.Empty())

	snap, err := repo.Get(ctx, common.SessionSnapshotKey)
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestStore_DurableAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "session.db")

	repos, err := repositories.InitDatabase(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, NewStore(repos.Metadata).Set(ctx, Pair{AccessToken: "A", RefreshToken: "R"}))
	require.NoError(t, repos.Close())

	repos, err = repositories.InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer repos.Close()

	p, err := NewStore(repos.Metadata).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Pair{AccessToken: "A", RefreshToken: "R"}, p)
}

type failingRepo struct {
	metadata.Repository
	err error
}

func (f failingRepo) Get(context.Context, string) ([]byte, error) {
	return nil, f.err
}

func (f failingRepo) Delete(context.Context, string) error {
	return f.err
}

func (f failingRepo) Apply(context.Context, ...metadata.Change) error {
	return f.err
}

func TestStore_WrapsRepositoryErrors(t *testing.T) {
	boom := errors.New("disk full")
	s := NewStore(failingRepo{err: boom})
	ctx := context.Background()

	_, err := s.Get(ctx)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, s.Set(ctx, Pair{AccessToken: "A"}), boom)
	require.ErrorIs(t, s.SetAccessToken(ctx, "A"), boom)
	require.ErrorIs(t, s.ClearAccessToken(ctx), boom)
	require.ErrorIs(t, s.Clear(ctx), boom)
}
