package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/blogsphere/authsession/internal/client/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const callbackPath = "/callback"

func (a *App) callbackRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(callbackPath, a.handleCallback)
	return r
}

// serveCallbacks runs the local redirect listener until ctx is done.
func (a *App) serveCallbacks(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           a.callbackRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Debug(ctx, "callback listener started", "address", l.Addr().String())
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleCallback feeds the redirect to the pending sign-in and answers the
// browser.
func (a *App) handleCallback(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	s := a.pending
	a.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if s == nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("No sign-in is in progress. Type 'login' in the terminal first.\n"))
		return
	}

	q := r.URL.Query()
	res := s.handler.Handle(r.Context(), q.Get("code"), q.Get("state"))

	if res.Duplicate {
		_, _ = w.Write([]byte("This sign-in was already handled. You can close this window.\n"))
		return
	}

	select {
	case s.done <- res:
	default:
	}

	if res.State == services.CallbackSignedIn {
		_, _ = w.Write([]byte("Signed in. You can close this window and return to the terminal.\n"))
		return
	}
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte("Sign-in failed. Return to the terminal and try again.\n"))
}
