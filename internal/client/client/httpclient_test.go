package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blogsphere/authsession/internal/client/credentials"
	"github.com/blogsphere/authsession/internal/client/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, opts Options) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	c, err := NewHTTPClient(opts)
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://x", "://bad"} {
		_, err := NewHTTPClient(Options{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestHTTPClient_AuthURL(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/auth/google", r.URL.Path)
		_, _ = w.Write([]byte(`{"url":"https://accounts.example/o/auth?state=s1"}`))
	}), Options{})

	u, err := c.AuthURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example/o/auth?state=s1", u)
}

func TestHTTPClient_AuthURLEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}), Options{})

	_, err := c.AuthURL(context.Background())
	require.Error(t, err)
}

func TestHTTPClient_ExchangeCode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/google/callback", r.URL.Path)
		assert.Equal(t, "abc", r.URL.Query().Get("code"))
		assert.Equal(t, "xyz", r.URL.Query().Get("state"))
		_, _ = w.Write([]byte(`{"access_token":"A","refresh_token":"R"}`))
	}), Options{})

	pair, err := c.ExchangeCode(context.Background(), "abc", "xyz")
	require.NoError(t, err)
	assert.Equal(t, TokenPair{AccessToken: "A", RefreshToken: "R"}, pair)
}

func TestHTTPClient_Refresh(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "R", in["refresh_token"])
		_, _ = w.Write([]byte(`{"access_token":"A2"}`))
	}), Options{})

	pair, err := c.Refresh(context.Background(), "R")
	require.NoError(t, err)
	assert.Equal(t, TokenPair{AccessToken: "A2"}, pair)
}

func TestHTTPClient_GetUserCarriesStoredToken(t *testing.T) {
	store := &fakeReader{pair: credentials.Pair{AccessToken: "A", RefreshToken: "R"}}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/u1", r.URL.Path)
		assert.Equal(t, "Bearer A", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"u1","username":"neev","email":"neev@example.com"}`))
	}), Options{Credentials: store})

	u, err := c.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "neev", u.Username)
	assert.Equal(t, "neev@example.com", u.Email)
}

func TestHTTPClient_GetUserRejectsBadID(t *testing.T) {
	c, err := NewHTTPClient(Options{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	for _, id := range []string{"", "../admin", "a/b", ".."} {
		_, err := c.GetUser(context.Background(), id)
		assert.Error(t, err, id)
	}
}

func TestHTTPClient_UpdateDescription(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/users/u1", r.URL.Path)
		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_, _ = w.Write([]byte(`{"id":"u1","username":"neev","description":"` + in["description"] + `"}`))
	}), Options{})

	u, err := c.UpdateDescription(context.Background(), "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", u.Description)
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
		{"bad gateway", http.StatusBadGateway, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}), Options{})

			_, err := c.GetUser(context.Background(), "u1")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPClient_OtherStatusIsStatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusBadRequest)
	}), Options{})

	_, err := c.ExchangeCode(context.Background(), "abc", "xyz")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "bad code", se.Body)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestHTTPClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}), Options{})

	_, err := c.Refresh(context.Background(), "R")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestHTTPClient_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewHTTPClient(Options{BaseURL: base})
	require.NoError(t, err)

	_, err = c.AuthURL(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	reg := prometheus.NewRegistry()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), Options{
		Breaker: BreakerConfig{Timeout: time.Minute, ConsecutiveFailures: 2},
		Metrics: metrics.New(reg),
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.AuthURL(ctx)
		require.ErrorIs(t, err, ErrUnavailable)
	}
	_, err := c.AuthURL(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must short-circuit")
}

func TestHTTPClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}), Options{Breaker: BreakerConfig{Timeout: time.Minute, ConsecutiveFailures: 1}})

	for i := 0; i < 3; i++ {
		_, err := c.GetUser(context.Background(), "u1")
		require.ErrorIs(t, err, ErrUnauthorized)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestHTTPClient_CanceledContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"x"}`))
	}), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.AuthURL(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
