package client

import (
	"context"

	"github.com/blogsphere/authsession/internal/client/session"
)

// TokenPair is the body returned by the code exchange and refresh endpoints.
// Refresh may leave RefreshToken empty when the server does not reissue it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type Client interface {
	// AuthURL returns the identity provider URL to start sign-in.
	AuthURL(ctx context.Context) (string, error)
	ExchangeCode(ctx context.Context, code, state string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	GetUser(ctx context.Context, userID string) (session.User, error)
	UpdateDescription(ctx context.Context, userID, description string) (session.User, error)
}
