// Package common contains shared constants and sentinel errors used across
// the session client and the development backend.
package common

const (
	// AccessTokenKey and RefreshTokenKey are the well-known keys the
	// credential pair is persisted under.
	AccessTokenKey  = "access-token"
	RefreshTokenKey = "refresh-token"

	// SessionSnapshotKey holds the last known session user.
	SessionSnapshotKey = "user-storage"

	// AuthorizationHeaderName is the header used to carry the access token
	// on outbound requests.
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "

	// SignInPath and HomePath are the navigation targets of the auth flows.
	SignInPath = "/signin"
	HomePath   = "/"
)
