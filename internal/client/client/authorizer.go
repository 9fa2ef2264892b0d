package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/blogsphere/authsession/internal/client/credentials"
	"github.com/blogsphere/authsession/internal/common"
)

// Authorizer attaches the stored access token to every request it carries.
//
// The store is read right before each send, so a token written by a refresh
// is picked up by the next request without any call-site change. Requests
// without a stored token go out with no Authorization header at all.
type Authorizer struct {
	store credentials.Reader
	next  http.RoundTripper
}

var _ http.RoundTripper = (*Authorizer)(nil)

type accessTokenKey struct{}

// WithAccessToken makes requests sent with ctx carry token instead of the
// stored one. It is used to act with a token before it has been persisted.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func accessTokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(string)
	return token, ok && token != ""
}

// NewAuthorizer wraps next; a nil next means http.DefaultTransport.
func NewAuthorizer(store credentials.Reader, next http.RoundTripper) *Authorizer {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Authorizer{store: store, next: next}
}

func (a *Authorizer) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := accessTokenFrom(req.Context())
	if !ok {
		pair, err := a.store.Get(req.Context())
		if err != nil {
			if req.Body != nil {
				_ = req.Body.Close()
			}
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		token = pair.AccessToken
	}

	// A RoundTripper must not modify the caller's request.
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	} else {
		r.Header.Del(common.AuthorizationHeaderName)
	}
	return a.next.RoundTrip(r)
}
