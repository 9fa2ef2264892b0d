package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/blogsphere/authsession/internal/client/client"
	"github.com/blogsphere/authsession/internal/client/config"
	"github.com/blogsphere/authsession/internal/client/credentials"
	"github.com/blogsphere/authsession/internal/client/metrics"
	"github.com/blogsphere/authsession/internal/client/repositories"
	"github.com/blogsphere/authsession/internal/client/services"
	"github.com/blogsphere/authsession/internal/client/session"
	"github.com/blogsphere/authsession/internal/client/tokens"
	"github.com/blogsphere/authsession/internal/filex"
	"github.com/blogsphere/authsession/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  *repositories.Repositories
	deps   services.Deps
	auth   services.AuthService
	guard  *services.SessionGuard
	out    io.Writer
	// outFd is the descriptor behind out, or -1 when out is not a file.
	outFd int

	mu          sync.Mutex
	userName    string
	pending     *signIn
	unsubscribe func()
}

// signIn is one `login` waiting for its redirect.
type signIn struct {
	handler *services.CallbackHandler
	done    chan services.CallbackResult
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.New(c.LogBackend, c.LogLevel, c.LogFormat, os.Stderr)

	dbPath, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	repos, err := repositories.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := credentials.NewStore(repos.Metadata)
	state := session.NewState(session.WithRepository(repos.Metadata), session.WithLogger(logger))
	if err := state.Restore(ctx); err != nil {
		logger.Warn(ctx, "could not restore session", "error", err)
	}

	m := metrics.New(prometheus.NewRegistry())

	api, err := client.NewHTTPClient(client.Options{
		BaseURL:     c.APIBaseURL,
		Timeout:     c.RequestTimeout,
		Credentials: store,
		Breaker: client.BreakerConfig{
			Timeout:             c.BreakerTimeout,
			ConsecutiveFailures: c.BreakerFailures,
		},
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	d := services.Deps{
		Store:    store,
		Session:  state,
		API:      api,
		Codec:    tokens.NewCodec(time.Now),
		Notifier: newConsoleNotifier(os.Stdout),
		Logger:   logger,
		Metrics:  m,
	}

	a := newApp(c, d, os.Stdout)
	a.repos = repos
	a.outFd = int(os.Stdout.Fd())
	return a, nil
}

func newApp(c *config.Config, d services.Deps, out io.Writer) *App {
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	a := &App{
		config: c,
		logger: logger.With("module", "cli"),
		deps:   d,
		auth:   services.NewAuthService(d),
		guard:  services.NewSessionGuard(d, services.NewRefreshCoordinator(d)),
		out:    out,
		outFd:  -1,
	}
	a.unsubscribe = d.Session.Subscribe(a.onSession)
	a.onSession(d.Session.Current())
	return a
}

// onSession keeps the prompt in step with the session.
func (a *App) onSession(s session.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s.User != nil {
		a.userName = s.User.Username
	} else {
		a.userName = ""
	}
}

func (a *App) isLoggedIn() bool {
	return a.deps.Session.Current().Authenticated
}

// Run serves the callback listener and the REPL until the user exits or
// the listener fails.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	l, err := net.Listen("tcp", a.config.CallbackAddr)
	if err != nil {
		return fmt.Errorf("callback listener: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.serveCallbacks(gctx, l)
	})
	g.Go(func() error {
		defer cancel()
		a.Root(gctx, os.Stdin)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Root prints the banner, reports the restored session and runs the REPL
// over in.
func (a *App) Root(ctx context.Context, in io.Reader) {
	printlnFn("Welcome to the authsession client (type 'help' for commands)")
	_ = a.Status(ctx)
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(in))
}

// Close tears down a pending sign-in and releases the database. A redirect
// being finished concurrently completes its writes before the database goes.
func (a *App) Close() {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	repos := a.repos
	a.repos = nil
	a.mu.Unlock()

	// Outside a.mu: Teardown waits for Handle, whose session update calls onSession.
	if pending != nil {
		pending.handler.Teardown()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	if repos != nil {
		if err := repos.Close(); err != nil {
			a.logger.Warn(context.Background(), "close database", "error", err)
		}
	}
}
