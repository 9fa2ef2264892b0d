package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/blogsphere/authsession/internal/client/client"
	"github.com/blogsphere/authsession/internal/client/credentials"
	"github.com/blogsphere/authsession/internal/client/session"
	"github.com/blogsphere/authsession/internal/common"
)

type CallbackState int

const (
	CallbackIdle CallbackState = iota
	CallbackExchanging
	CallbackSignedIn
	CallbackSignedOut
)

func (s CallbackState) String() string {
	switch s {
	case CallbackIdle:
		return "idle"
	case CallbackExchanging:
		return "exchanging"
	case CallbackSignedIn:
		return "signed_in"
	case CallbackSignedOut:
		return "signed_out"
	default:
		return fmt.Sprintf("callback_state(%d)", int(s))
	}
}

// CallbackResult is the outcome of one Handle call. Redirect is the path to
// navigate to, empty when there is nowhere to go (duplicate or detached).
type CallbackResult struct {
	State     CallbackState
	Redirect  string
	Duplicate bool
	Err       error
}

// CallbackHandler processes one identity-provider redirect.
//
// Only the first Handle call does anything; later calls report Duplicate.
// Once the exchange has started it runs to completion, but if Teardown was
// called in the meantime its result is dropped without touching the store
// or the session.
type CallbackHandler struct {
	deps Deps

	mu       sync.Mutex
	state    CallbackState
	started  bool
	detached bool
}

func NewCallbackHandler(d Deps) *CallbackHandler {
	return &CallbackHandler{deps: d.withDefaults()}
}

func (h *CallbackHandler) State() CallbackState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Teardown detaches the handler from its owner.
func (h *CallbackHandler) Teardown() {
	h.mu.Lock()
	h.detached = true
	h.mu.Unlock()
}

func (h *CallbackHandler) Handle(ctx context.Context, code, state string) CallbackResult {
	d := h.deps

	h.mu.Lock()
	if h.started {
		cur := h.state
		h.mu.Unlock()
		d.Logger.Debug(ctx, "ignoring duplicate callback", "state", cur.String())
		return CallbackResult{State: cur, Duplicate: true}
	}
	h.started = true

	if code == "" || state == "" {
		h.state = CallbackSignedOut
		h.mu.Unlock()
		d.Metrics.CallbackOutcome("missing_params")
		d.Notifier.Error(ctx, NoticeGoogleAuthFailed)
		return CallbackResult{State: CallbackSignedOut, Redirect: common.SignInPath, Err: common.ErrMissingRedirectParams}
	}
	h.state = CallbackExchanging
	h.mu.Unlock()

	// Not cancellable once started: the code is single-use.
	ctx = context.WithoutCancel(ctx)
	pair, user, notice, err := h.exchange(ctx, code, state)

	// Holding the lock across the writes keeps Teardown from landing between them.
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.detached {
		h.state = CallbackSignedOut
		d.Metrics.CallbackOutcome("detached")
		d.Logger.Info(ctx, "callback finished after teardown; result dropped", "error", err)
		return CallbackResult{State: CallbackSignedOut, Err: common.ErrDetached}
	}

	if err == nil {
		if err = d.Store.Set(ctx, pair); err != nil {
			err = fmt.Errorf("persist credentials: %w", err)
		}
	}
	if err != nil {
		h.state = CallbackSignedOut
		d.Metrics.CallbackOutcome("signed_out")
		d.Logger.Warn(ctx, "sign-in failed", "error", err)
		if notice != "" {
			d.Notifier.Error(ctx, notice)
		}
		d.Notifier.Error(ctx, NoticeSignInFailed)
		return CallbackResult{State: CallbackSignedOut, Redirect: common.SignInPath, Err: err}
	}

	d.Session.SetUser(ctx, user)
	h.state = CallbackSignedIn
	d.Metrics.CallbackOutcome("signed_in")
	d.Logger.Info(ctx, "signed in", "user_id", user.ID)
	d.Notifier.Success(ctx, NoticeSignedIn)
	return CallbackResult{State: CallbackSignedIn, Redirect: common.HomePath}
}

// exchange trades the code for a pair and loads the user. It writes
// nothing; on failure it returns the notice describing the failed step.
func (h *CallbackHandler) exchange(ctx context.Context, code, state string) (credentials.Pair, session.User, string, error) {
	d := h.deps

	resp, err := d.API.ExchangeCode(ctx, code, state)
	if err != nil {
		return credentials.Pair{}, session.User{}, NoticeGoogleAuthFailed,
			fmt.Errorf("%w: %w", common.ErrRemoteExchangeFailed, err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return credentials.Pair{}, session.User{}, NoticeGoogleAuthFailed,
			fmt.Errorf("%w: incomplete token pair", common.ErrRemoteExchangeFailed)
	}

	subject, ok := d.Codec.Subject(resp.AccessToken)
	if !ok {
		return credentials.Pair{}, session.User{}, NoticeDecodeFailed,
			fmt.Errorf("%w: access token has no subject", common.ErrMalformedToken)
	}

	user, err := d.API.GetUser(client.WithAccessToken(ctx, resp.AccessToken), subject)
	if err != nil {
		return credentials.Pair{}, session.User{}, NoticeUserFetchFailed,
			fmt.Errorf("%w: %w", common.ErrUserFetchFailed, err)
	}

	return credentials.Pair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, user, "", nil
}
