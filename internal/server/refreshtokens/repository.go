// Package refreshtokens tracks issued refresh tokens so each one can be
// redeemed exactly once.
package refreshtokens

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownToken is returned by Consume for tokens that were never issued,
// were already redeemed, or have expired.
var ErrUnknownToken = errors.New("unknown refresh token")

type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	// Consume removes token and returns the user it was issued to.
	Consume(ctx context.Context, token string) (string, error)
	// DeleteByUser revokes every token of userID.
	DeleteByUser(ctx context.Context, userID string) error
}
