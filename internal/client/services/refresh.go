package services

import (
	"context"
	"fmt"

	"github.com/blogsphere/authsession/internal/client/client"
	"github.com/blogsphere/authsession/internal/client/credentials"
	"github.com/blogsphere/authsession/internal/common"
	"golang.org/x/sync/singleflight"
)

// Refresher exchanges the stored refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshCoordinator performs the refresh exchange and applies its result.
//
// The operation is all-or-nothing: the store and the session are written
// only after the new access token decodes and its user is fetched. On any
// failure the stale pair is left untouched for the caller to act on.
// Concurrent calls share a single remote exchange.
type RefreshCoordinator struct {
	deps  Deps
	group singleflight.Group
}

var _ Refresher = (*RefreshCoordinator)(nil)

func NewRefreshCoordinator(d Deps) *RefreshCoordinator {
	return &RefreshCoordinator{deps: d.withDefaults()}
}

// Refresh returns nil on success, or an error wrapping one of
// common.ErrNoCredential, common.ErrRemoteExchangeFailed,
// common.ErrMalformedToken or common.ErrUserFetchFailed.
func (r *RefreshCoordinator) Refresh(ctx context.Context) error {
	// Once sent, a refresh must complete: the server may already have
	// rotated the refresh token.
	ctx = context.WithoutCancel(ctx)

	_, err, shared := r.group.Do("refresh", func() (any, error) {
		return nil, r.refresh(ctx)
	})
	if shared {
		r.deps.Logger.Debug(ctx, "joined in-flight refresh")
	}
	return err
}

func (r *RefreshCoordinator) refresh(ctx context.Context) error {
	d := r.deps

	pair, err := d.Store.Get(ctx)
	if err != nil {
		d.Metrics.RefreshOutcome("store_failed")
		d.Notifier.Error(ctx, NoticeRefreshFailed)
		return fmt.Errorf("read credentials: %w", err)
	}
	if pair.RefreshToken == "" {
		d.Metrics.RefreshOutcome("no_credential")
		d.Notifier.Error(ctx, NoticeRefreshFailed)
		return common.ErrNoCredential
	}

	resp, err := d.API.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		d.Metrics.RefreshOutcome("remote_failed")
		d.Logger.Warn(ctx, "refresh request failed", "error", err)
		d.Notifier.Error(ctx, NoticeRefreshFailed)
		return fmt.Errorf("%w: %w", common.ErrRemoteExchangeFailed, err)
	}
	if resp.AccessToken == "" {
		d.Metrics.RefreshOutcome("remote_failed")
		d.Notifier.Error(ctx, NoticeRefreshFailed)
		return fmt.Errorf("%w: no access token in response", common.ErrRemoteExchangeFailed)
	}

	subject, ok := d.Codec.Subject(resp.AccessToken)
	if !ok {
		d.Metrics.RefreshOutcome("malformed_token")
		d.Notifier.Error(ctx, NoticeRefreshDecodeFailed)
		return fmt.Errorf("%w: refreshed access token has no subject", common.ErrMalformedToken)
	}

	user, err := d.API.GetUser(client.WithAccessToken(ctx, resp.AccessToken), subject)
	if err != nil {
		d.Metrics.RefreshOutcome("user_fetch_failed")
		d.Logger.Warn(ctx, "user fetch after refresh failed", "user_id", subject, "error", err)
		d.Notifier.Error(ctx, NoticeRefreshUserFailed)
		return fmt.Errorf("%w: %w", common.ErrUserFetchFailed, err)
	}

	next := credentials.Pair{AccessToken: resp.AccessToken, RefreshToken: pair.RefreshToken}
	if resp.RefreshToken != "" {
		next.RefreshToken = resp.RefreshToken
	}
	if err := d.Store.Set(ctx, next); err != nil {
		d.Metrics.RefreshOutcome("store_failed")
		d.Notifier.Error(ctx, NoticeRefreshFailed)
		return fmt.Errorf("persist credentials: %w", err)
	}
	d.Session.SetUser(ctx, user)

	d.Metrics.RefreshOutcome("ok")
	d.Logger.Info(ctx, "access token refreshed", "user_id", subject, "rotated", resp.RefreshToken != "")
	return nil
}
