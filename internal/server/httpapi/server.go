// Package httpapi exposes the development backend over HTTP: the simulated
// provider sign-in, token endpoints and user profiles.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/blogsphere/authsession/internal/logging"
	"github.com/blogsphere/authsession/internal/server/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address string
	users   *users.Service
	logger  logging.Logger
	metrics *serverMetrics
	gather  prometheus.Gatherer
}

// NewHTTPServer builds the server. reg receives the request metrics and is
// served on /metrics; a nil reg disables both.
func NewHTTPServer(a string, l logging.Logger, us *users.Service, reg *prometheus.Registry) *HTTPServer {
	s := &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
	}
	if reg != nil {
		s.metrics = newServerMetrics(reg)
		s.gather = reg
	}
	return s
}

// Handler returns the routed API.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	if s.gather != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/google", s.handleSignInURL)
		r.Get("/google/callback", s.handleCallback)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/logout", s.handleLogout)
	})

	r.Get("/dev/authorize", s.handleAuthorize)

	r.Get("/users/{userID}", s.handleGetUser)
	r.With(s.accessTokenMiddleware).Patch("/users/{userID}", s.handleUpdateUser)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
