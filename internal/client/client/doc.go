// Package client talks to the blog backend over HTTP.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     authentication endpoints: AuthURL, ExchangeCode, Refresh, GetUser and
//     UpdateDescription.
//  2. A concrete JSON-over-HTTP implementation (see HTTPClient). Every call
//     goes through a circuit breaker; nothing is retried because code
//     exchange and refresh are not idempotent.
//  3. The request authorizer (see Authorizer), an http.RoundTripper that
//     attaches the stored access token to each outgoing request. It never
//     refreshes and never retries.
//
// # Error Handling
//
// Response statuses are mapped in one place to sentinel errors that callers
// can match with errors.Is: ErrUnauthorized (401, 403), ErrNotFound (404) and
// ErrUnavailable (5xx, transport failures, open breaker). Any other status is
// returned as a *StatusError.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation and timeouts.
package client
