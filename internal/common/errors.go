// Package common defines shared constants and sentinel errors used across
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Redirect handling.
	ErrMissingRedirectParams = errors.New("missing authorization code or state")

	// Remote token endpoints (code exchange and refresh).
	ErrRemoteExchangeFailed = errors.New("remote token exchange failed")

	// Token payload could not be trusted (malformed, missing claims).
	ErrMalformedToken = errors.New("malformed token")

	ErrUserFetchFailed = errors.New("user fetch failed")

	// Refresh attempted with nothing stored.
	ErrNoCredential = errors.New("no credential")

	// Token lifecycle errors. ErrTokenExpired drives a refresh and is not
	// surfaced to the user.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// A flow finished after its owner was torn down.
	ErrDetached = errors.New("flow detached")
)
