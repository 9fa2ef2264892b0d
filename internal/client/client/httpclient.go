package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blogsphere/authsession/internal/client/credentials"
	"github.com/blogsphere/authsession/internal/client/metrics"
	"github.com/blogsphere/authsession/internal/client/session"
	"github.com/blogsphere/authsession/internal/logging"
	"github.com/sony/gobreaker/v2"
)

const maxBodySize = 1 << 20

// BreakerConfig tunes the circuit breaker in front of the backend.
type BreakerConfig struct {
	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker. 0 means 5.
	ConsecutiveFailures uint32
}

type Options struct {
	BaseURL string
	// Timeout bounds a whole request, body included. 0 means no limit.
	Timeout time.Duration
	// Transport is the base round tripper. nil means http.DefaultTransport.
	Transport http.RoundTripper
	// Credentials, when set, makes every request carry the stored access token.
	Credentials credentials.Reader
	Breaker     BreakerConfig
	Logger      logging.Logger
	Metrics     *metrics.Metrics
}

type response struct {
	status int
	body   []byte
}

// HTTPClient implements Client against the JSON API.
type HTTPClient struct {
	base    *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}

	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if opts.Credentials != nil {
		transport = NewAuthorizer(opts.Credentials, transport)
	}

	failures := opts.Breaker.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	m := opts.Metrics
	name := "backend:" + base.Host
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opts.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
			m.BreakerState(name, to)
		},
	}
	m.BreakerState(name, gobreaker.StateClosed)

	return &HTTPClient{
		base:    base,
		http:    &http.Client{Transport: transport, Timeout: opts.Timeout},
		breaker: gobreaker.NewCircuitBreaker[response](settings),
		log:     log,
	}, nil
}

func (c *HTTPClient) AuthURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "auth", "google"), nil, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("empty auth url in response")
	}
	return out.URL, nil
}

func (c *HTTPClient) ExchangeCode(ctx context.Context, code, state string) (TokenPair, error) {
	q := url.Values{"code": {code}, "state": {state}}
	var out TokenPair
	if err := c.do(ctx, http.MethodGet, c.endpoint(q, "auth", "google", "callback"), nil, &out); err != nil {
		return TokenPair{}, err
	}
	return out, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	in := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}
	var out TokenPair
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "auth", "refresh"), in, &out); err != nil {
		return TokenPair{}, err
	}
	return out, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, userID string) (session.User, error) {
	if err := checkID(userID); err != nil {
		return session.User{}, err
	}
	var out session.User
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "users", userID), nil, &out); err != nil {
		return session.User{}, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateDescription(ctx context.Context, userID, description string) (session.User, error) {
	if err := checkID(userID); err != nil {
		return session.User{}, err
	}
	in := struct {
		Description string `json:"description"`
	}{Description: description}
	var out session.User
	if err := c.do(ctx, http.MethodPatch, c.endpoint(nil, "users", userID), in, &out); err != nil {
		return session.User{}, err
	}
	return out, nil
}

func (c *HTTPClient) endpoint(q url.Values, elem ...string) string {
	u := c.base.JoinPath(elem...)
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *HTTPClient) do(ctx context.Context, method, target string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	res, err := c.breaker.Execute(func() (response, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return response{}, err
		}
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return response{}, err
		}
		defer func() { _ = resp.Body.Close() }()

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return response{}, fmt.Errorf("read response: %w", err)
		}
		r := response{status: resp.StatusCode, body: b}
		// 5xx count against the breaker; 4xx are the caller's problem.
		if r.status >= http.StatusInternalServerError {
			return r, statusError(r)
		}
		return r, nil
	})
	if err != nil {
		c.log.Debug(ctx, "backend call failed", "method", method, "url", target, "error", err)
		return mapError(err)
	}
	if res.status < 200 || res.status >= 300 {
		return mapError(statusError(res))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(r response) *StatusError {
	return &StatusError{Status: r.status, Body: strings.TrimSpace(string(r.body))}
}

// mapError converts transport and status failures to the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var se *StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	switch {
	case se.Status == http.StatusUnauthorized, se.Status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, se)
	case se.Status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, se)
	case se.Status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", ErrUnavailable, se)
	default:
		return se
	}
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, "/?#") || id == "." || id == ".." {
		return fmt.Errorf("invalid user id %q", id)
	}
	return nil
}
