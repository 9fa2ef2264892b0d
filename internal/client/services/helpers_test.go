package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/blogsphere/authsession/internal/client/client"
	"github.com/blogsphere/authsession/internal/client/credentials"
	"github.com/blogsphere/authsession/internal/client/metrics"
	"github.com/blogsphere/authsession/internal/client/repositories"
	"github.com/blogsphere/authsession/internal/client/session"
	"github.com/blogsphere/authsession/internal/client/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// token signs a JWT for userID expiring at exp relative to testNow.
func token(t *testing.T, userID string, exp time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{"exp": testNow.Add(exp).Unix(), "iat": testNow.Unix()}
	if userID != "" {
		claims["userID"] = userID
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// ---- fake client ----

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	mu sync.Mutex

	AuthURLRet string
	AuthURLErr error

	ExchangeRet client.TokenPair
	ExchangeErr error

	RefreshRet client.TokenPair
	RefreshErr error

	Users      map[string]session.User
	GetUserErr error

	UpdateErr error

	// When set, ExchangeCode and Refresh signal Started and wait for Release.
	Started chan struct{}
	Release chan struct{}

	AuthURLCalls  int
	ExchangeCalls int
	RefreshCalls  int
	GetUserCalls  int

	LastExchangeCode  string
	LastExchangeState string
	LastRefreshToken  string
	LastGetUserID     string
	LastDescription   string
	ExchangeCtxErr    error
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) block(ctx context.Context) error {
	if f.Started == nil {
		return nil
	}
	f.Started <- struct{}{}
	<-f.Release
	return ctx.Err()
}

func (f *fakeClient) AuthURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AuthURLCalls++
	return f.AuthURLRet, f.AuthURLErr
}

func (f *fakeClient) ExchangeCode(ctx context.Context, code, state string) (client.TokenPair, error) {
	f.mu.Lock()
	f.ExchangeCalls++
	f.LastExchangeCode = code
	f.LastExchangeState = state
	f.mu.Unlock()

	ctxErr := f.block(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExchangeCtxErr = ctxErr
	return f.ExchangeRet, f.ExchangeErr
}

func (f *fakeClient) Refresh(ctx context.Context, refreshToken string) (client.TokenPair, error) {
	f.mu.Lock()
	f.RefreshCalls++
	f.LastRefreshToken = refreshToken
	f.mu.Unlock()

	_ = f.block(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeClient) GetUser(_ context.Context, userID string) (session.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetUserCalls++
	f.LastGetUserID = userID
	if f.GetUserErr != nil {
		return session.User{}, f.GetUserErr
	}
	u, ok := f.Users[userID]
	if !ok {
		return session.User{}, client.ErrNotFound
	}
	return u, nil
}

func (f *fakeClient) UpdateDescription(_ context.Context, userID, description string) (session.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastDescription = description
	if f.UpdateErr != nil {
		return session.User{}, f.UpdateErr
	}
	u := f.Users[userID]
	u.Description = description
	f.Users[userID] = u
	return u, nil
}

func (f *fakeClient) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.AuthURLCalls + f.ExchangeCalls + f.RefreshCalls + f.GetUserCalls
}

// ---- notifier ----

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

// ---- wiring ----

type fixture struct {
	deps     Deps
	api      *fakeClient
	store    credentials.Store
	state    *session.State
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, err := repositories.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	api := &fakeClient{Users: map[string]session.User{
		"u1": {ID: "u1", Username: "neev"},
	}}
	store := credentials.NewStore(repos.Metadata)
	state := session.NewState()
	n := &recordingNotifier{}

	return &fixture{
		deps: Deps{
			Store:    store,
			Session:  state,
			API:      api,
			Codec:    tokens.NewCodec(func() time.Time { return testNow }),
			Notifier: n,
			Metrics:  metrics.New(prometheus.NewRegistry()),
		},
		api:      api,
		store:    store,
		state:    state,
		notifier: n,
	}
}

func (f *fixture) pair(t *testing.T) credentials.Pair {
	t.Helper()
	p, err := f.store.Get(context.Background())
	require.NoError(t, err)
	return p
}

func (f *fixture) seed(t *testing.T, p credentials.Pair) {
	t.Helper()
	require.NoError(t, f.store.Set(context.Background(), p))
}
