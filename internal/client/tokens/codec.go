// Package tokens reads the claim set of bearer tokens issued by the backend.
//
// Signatures are NOT verified: that is the server's job. The payload is
// untrusted and every failure to read it is treated as "cannot trust this
// token": no subject, and expired.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/blogsphere/authsession/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingSubject = errors.New("missing subject")
	errMissingExpiry  = errors.New("missing expiry")
)

// Claims is the part of the payload the client relies on.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// payload is the wire shape. The backend puts the user id in "userID";
// the registered "sub" claim is accepted as a fallback.
type payload struct {
	jwt.RegisteredClaims
	UserID string `json:"userID,omitempty"`
}

func (p *payload) subject() string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.RegisteredClaims.Subject
}

// Codec decodes token payloads against a clock.
type Codec struct {
	now    func() time.Time
	parser *jwt.Parser
}

// NewCodec returns a Codec using now as the wall clock. A nil now means time.Now.
func NewCodec(now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{now: now, parser: jwt.NewParser()}
}

// Decode returns the subject and expiry of raw, or an error wrapping
// common.ErrMalformedToken when the payload is unreadable or either claim is missing.
func (c *Codec) Decode(raw string) (Claims, error) {
	p, err := c.parse(raw)
	if err != nil {
		return Claims{}, err
	}
	sub := p.subject()
	if sub == "" {
		return Claims{}, fmt.Errorf("%w: %w", common.ErrMalformedToken, errMissingSubject)
	}
	if p.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: %w", common.ErrMalformedToken, errMissingExpiry)
	}
	return Claims{Subject: sub, ExpiresAt: p.ExpiresAt.Time}, nil
}

// Subject returns the subject of raw; ok is false when it cannot be read.
func (c *Codec) Subject(raw string) (string, bool) {
	p, err := c.parse(raw)
	if err != nil {
		return "", false
	}
	sub := p.subject()
	return sub, sub != ""
}

// IsExpired reports whether raw must be considered expired: its expiry is
// absent, unreadable, or not strictly after the current time. There is no
// clock-skew allowance.
func (c *Codec) IsExpired(raw string) bool {
	p, err := c.parse(raw)
	if err != nil || p.ExpiresAt == nil {
		return true
	}
	return !p.ExpiresAt.Time.After(c.now())
}

func (c *Codec) parse(raw string) (*payload, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", common.ErrMalformedToken)
	}
	p := &payload{}
	if _, _, err := c.parser.ParseUnverified(raw, p); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedToken, err)
	}
	return p, nil
}

var defaultCodec = NewCodec(nil)

// Decode uses a Codec on the system clock.
func Decode(raw string) (Claims, error) { return defaultCodec.Decode(raw) }

// Subject uses a Codec on the system clock.
func Subject(raw string) (string, bool) { return defaultCodec.Subject(raw) }

// IsExpired uses a Codec on the system clock.
func IsExpired(raw string) bool { return defaultCodec.IsExpired(raw) }
