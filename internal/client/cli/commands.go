package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blogsphere/authsession/internal/client/services"
	"github.com/blogsphere/authsession/internal/common"
)

var (
	errSignInTimeout = errors.New("timed out waiting for the sign-in redirect")
	errSignedOut     = errors.New("not signed in")
)

// Login prints the provider URL and waits for the browser to come back to
// the callback listener.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already signed in. Use 'logout' first to switch accounts.")
		return nil
	}

	u, err := a.auth.SignInURL(ctx)
	if err != nil {
		a.logger.Debug(ctx, "sign-in url", "error", err)
		return err
	}

	s := a.beginSignIn()
	defer a.endSignIn(s)

	printlnFn("Open this URL in your browser to sign in:")
	printlnFn(u)
	printlnFn(fmt.Sprintf("Waiting for the redirect (up to %s)...", a.config.SignInTimeout))

	timer := time.NewTimer(a.config.SignInTimeout)
	defer timer.Stop()

	select {
	case res := <-s.done:
		return res.Err
	case <-timer.C:
		if a.abandon(s) {
			return nil
		}
		printlnFn("Sign-in timed out. Type 'login' to try again.")
		return errSignInTimeout
	case <-ctx.Done():
		if a.abandon(s) {
			return nil
		}
		return ctx.Err()
	}
}

// abandon tears s down and reports whether its redirect had already signed
// the user in. After Teardown the handler's state is final.
func (a *App) abandon(s *signIn) bool {
	s.handler.Teardown()
	select {
	case res := <-s.done:
		return res.Err == nil
	default:
	}
	return s.handler.State() == services.CallbackSignedIn
}

// beginSignIn makes a fresh handler the target of the callback listener.
// A previous, abandoned one is torn down.
func (a *App) beginSignIn() *signIn {
	s := &signIn{
		handler: services.NewCallbackHandler(a.deps),
		done:    make(chan services.CallbackResult, 1),
	}

	a.mu.Lock()
	prev := a.pending
	a.pending = s
	a.mu.Unlock()

	if prev != nil {
		prev.handler.Teardown()
	}
	return s
}

func (a *App) endSignIn(s *signIn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == s {
		a.pending = nil
	}
}

// authorize runs one guard activation, drawing the loading indicator while
// it checks.
func (a *App) authorize(ctx context.Context) services.GuardState {
	act := a.guard.Activate().OnChange(a.indicator())
	st := act.Run(ctx)
	if st == services.GuardUnauthorized {
		a.logger.Debug(ctx, "redirect", "to", act.Redirect())
	}
	return st
}

// Status checks the session, refreshing an expired access token.
func (a *App) Status(ctx context.Context) error {
	if a.authorize(ctx) != services.GuardAuthorized {
		printlnFn("Not signed in. Type 'login' to sign in.")
		return nil
	}

	if name := a.currentName(); name != "" {
		printlnFn("Signed in as " + name + ".")
	} else {
		printlnFn("Signed in.")
	}
	return nil
}

func (a *App) currentName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName
}

// WhoAmI is protected: it shows the signed-in user's profile.
func (a *App) WhoAmI(ctx context.Context) error {
	if a.authorize(ctx) != services.GuardAuthorized {
		printlnFn("Not signed in. Type 'login' to sign in.")
		return errSignedOut
	}

	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		printlnFn("Not signed in. Type 'login' to sign in.")
		return common.ErrNoCredential
	}

	printlnFn("Username:   ", u.Username)
	printlnFn("Email:      ", u.Email)
	printlnFn("ID:         ", u.ID)
	if u.Description != "" {
		printlnFn("Description:", u.Description)
	}
	return nil
}

// Bio is protected: it replaces the profile description.
func (a *App) Bio(ctx context.Context, text string) error {
	if a.authorize(ctx) != services.GuardAuthorized {
		printlnFn("Not signed in. Type 'login' to sign in.")
		return errSignedOut
	}

	if _, err := a.auth.UpdateDescription(ctx, text); err != nil {
		return err
	}
	printlnFn("Description updated.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		printlnFn("Logout failed:", err.Error())
		return err
	}
	return nil
}
