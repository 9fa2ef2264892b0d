// Package services implements the session lifecycle of the client: the OAuth
// callback, the session guard in front of protected views, token refresh and
// the sign-in/sign-out facade.
//
// The services are the only writers of the credential store and the session
// state. Writes are serialized by gating rather than locking: a callback
// handler fires once, a guard activation runs once, and concurrent refreshes
// are coalesced.
package services

import (
	"github.com/blogsphere/authsession/internal/client/client"
	"github.com/blogsphere/authsession/internal/client/credentials"
	"github.com/blogsphere/authsession/internal/client/metrics"
	"github.com/blogsphere/authsession/internal/client/session"
	"github.com/blogsphere/authsession/internal/client/tokens"
	"github.com/blogsphere/authsession/internal/logging"
)

// Deps are the collaborators shared by all services. Store, Session and API
// are required; the rest default to no-ops and the system clock.
type Deps struct {
	Store    credentials.Store
	Session  *session.State
	API      client.Client
	Codec    *tokens.Codec
	Notifier Notifier
	Logger   logging.Logger
	Metrics  *metrics.Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Codec == nil {
		d.Codec = tokens.NewCodec(nil)
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	return d
}
