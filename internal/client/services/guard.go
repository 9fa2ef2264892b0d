package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/blogsphere/authsession/internal/common"
)

type GuardState int

const (
	GuardChecking GuardState = iota
	GuardAuthorized
	GuardUnauthorized
)

func (s GuardState) String() string {
	switch s {
	case GuardChecking:
		return "checking"
	case GuardAuthorized:
		return "authorized"
	case GuardUnauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("guard_state(%d)", int(s))
	}
}

// SessionGuard decides whether a protected view may render.
type SessionGuard struct {
	deps    Deps
	refresh Refresher
}

func NewSessionGuard(d Deps, r Refresher) *SessionGuard {
	return &SessionGuard{deps: d.withDefaults(), refresh: r}
}

// Activate starts a new evaluation for one activation of a protected view.
func (g *SessionGuard) Activate() *GuardActivation {
	return &GuardActivation{guard: g}
}

// GuardActivation is a single evaluation. It stays in GuardChecking until
// Run finishes; the view must neither render protected content nor redirect
// while it does.
type GuardActivation struct {
	guard *SessionGuard
	once  sync.Once

	mu       sync.Mutex
	state    GuardState
	onChange func(GuardState)
}

// OnChange registers fn to be called with every state the activation
// enters, starting with GuardChecking when Run begins. Register before Run.
func (a *GuardActivation) OnChange(fn func(GuardState)) *GuardActivation {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
	return a
}

func (a *GuardActivation) State() GuardState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Redirect is the path to navigate to: common.SignInPath once Unauthorized,
// empty otherwise.
func (a *GuardActivation) Redirect() string {
	if a.State() == GuardUnauthorized {
		return common.SignInPath
	}
	return ""
}

// Run evaluates the session once. Later calls return the first result.
func (a *GuardActivation) Run(ctx context.Context) GuardState {
	a.once.Do(func() {
		a.set(GuardChecking)
		st := a.guard.evaluate(ctx)
		a.guard.deps.Metrics.GuardOutcome(st.String())
		a.set(st)
	})
	return a.State()
}

func (a *GuardActivation) set(st GuardState) {
	a.mu.Lock()
	a.state = st
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

func (g *SessionGuard) evaluate(ctx context.Context) GuardState {
	d := g.deps

	pair, err := d.Store.Get(ctx)
	if err != nil {
		d.Logger.Error(ctx, "failed to read credentials", "error", err)
		g.signOut(ctx)
		return GuardUnauthorized
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" || d.Codec.IsExpired(pair.RefreshToken) {
		d.Logger.Debug(ctx, "no usable refresh token",
			"has_access", pair.AccessToken != "", "has_refresh", pair.RefreshToken != "")
		g.signOut(ctx)
		return GuardUnauthorized
	}

	if !d.Codec.IsExpired(pair.AccessToken) {
		return GuardAuthorized
	}

	d.Logger.Debug(ctx, "access token expired, refreshing", "error", common.ErrTokenExpired)
	d.Session.ClearUser(ctx)
	if err := d.Store.ClearAccessToken(ctx); err != nil {
		d.Logger.Error(ctx, "failed to clear access token", "error", err)
	}

	if err := g.refresh.Refresh(ctx); err != nil {
		d.Logger.Warn(ctx, "refresh failed, signing out", "error", err)
		g.signOut(ctx)
		return GuardUnauthorized
	}
	return GuardAuthorized
}

// signOut clears the session and both tokens.
func (g *SessionGuard) signOut(ctx context.Context) {
	g.deps.Session.ClearUser(ctx)
	if err := g.deps.Store.Clear(ctx); err != nil {
		g.deps.Logger.Error(ctx, "failed to clear credentials", "error", err)
	}
}
