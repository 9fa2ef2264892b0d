package services

import (
	"context"
	"fmt"

	"github.com/blogsphere/authsession/internal/client/session"
	"github.com/blogsphere/authsession/internal/common"
)

// AuthService is the sign-in/sign-out facade used by the UI.
//
// Contract:
//   - SignInURL: provider URL to start sign-in; on failure a notice is shown
//     and the URL is empty.
//   - SignOut: clear both tokens and the session. Idempotent.
//   - CurrentUser: the session user, hydrated from the stored access token
//     when the session is empty. nil means nobody is signed in.
//   - UpdateDescription: change the signed-in user's profile text.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	SignInURL(ctx context.Context) (string, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (*session.User, error)
	UpdateDescription(ctx context.Context, description string) (*session.User, error)
}

// authService is the concrete AuthService over the shared Deps.
type authService struct {
	deps Deps
}

func NewAuthService(d Deps) AuthService {
	return &authService{deps: d.withDefaults()}
}

func (a *authService) SignInURL(ctx context.Context) (string, error) {
	u, err := a.deps.API.AuthURL(ctx)
	if err != nil {
		a.deps.Notifier.Error(ctx, NoticeAuthURLFailed)
		return "", fmt.Errorf("get auth url error: %w", err)
	}
	return u, nil
}

// SignOut is local; the backend is not told. The session is cleared even
// when the stored credentials could not be.
func (a *authService) SignOut(ctx context.Context) error {
	err := a.deps.Store.Clear(ctx)
	a.deps.Session.ClearUser(ctx)
	if err != nil {
		return fmt.Errorf("clear credentials error: %w", err)
	}
	a.deps.Notifier.Success(ctx, NoticeLoggedOut)
	return nil
}

func (a *authService) CurrentUser(ctx context.Context) (*session.User, error) {
	if cur := a.deps.Session.Current(); cur.User != nil {
		return cur.User, nil
	}

	pair, err := a.deps.Store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read credentials error: %w", err)
	}
	if pair.AccessToken == "" || a.deps.Codec.IsExpired(pair.AccessToken) {
		return nil, nil
	}
	subject, ok := a.deps.Codec.Subject(pair.AccessToken)
	if !ok {
		return nil, nil
	}

	user, err := a.deps.API.GetUser(ctx, subject)
	if err != nil {
		a.deps.Notifier.Error(ctx, NoticeUserFetchFailed)
		return nil, fmt.Errorf("%w: %w", common.ErrUserFetchFailed, err)
	}
	a.deps.Session.SetUser(ctx, user)
	return &user, nil
}

func (a *authService) UpdateDescription(ctx context.Context, description string) (*session.User, error) {
	cur, err := a.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, common.ErrNoCredential
	}

	user, err := a.deps.API.UpdateDescription(ctx, cur.ID, description)
	if err != nil {
		a.deps.Notifier.Error(ctx, NoticeUpdateProfileFailed)
		return nil, fmt.Errorf("update description error: %w", err)
	}
	a.deps.Session.SetUser(ctx, user)
	return &user, nil
}
