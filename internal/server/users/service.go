// Package users implements the account side of the development backend:
// the simulated provider sign-in, token issuance and profile updates.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/blogsphere/authsession/internal/common"
	"github.com/blogsphere/authsession/internal/server/auth"
	"github.com/blogsphere/authsession/internal/server/config"
	"github.com/blogsphere/authsession/internal/server/refreshtokens"
	"github.com/google/uuid"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidState = errors.New("invalid or expired state")
	ErrInvalidGrant = errors.New("invalid or expired authorization code")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// TokenPair is the body returned by the code exchange and refresh endpoints.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	grants                       *grants
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	publicURL                    string
	redirectURL                  string
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		grants:                       newGrants(cfg.StateValidityDuration),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		publicURL:                    strings.TrimRight(cfg.PublicURL, "/"),
		redirectURL:                  cfg.RedirectURL,
	}
}

// BeginSignIn registers a fresh state and returns the provider URL the
// user should open.
func (s *Service) BeginSignIn(ctx context.Context) (string, error) {
	state := uuid.NewString()
	s.grants.addState(state)
	return s.publicURL + "/dev/authorize?" + url.Values{"state": {state}}.Encode(), nil
}

// Authorize plays the provider's consent step: it signs login in (creating
// the account on first use), mints an authorization code bound to state and
// returns the redirect target carrying code and state.
func (s *Service) Authorize(ctx context.Context, state, login string) (string, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return "", fmt.Errorf("%w: empty login", ErrInvalidInput)
	}
	if !s.grants.takeState(state) {
		return "", ErrInvalidState
	}

	user, err := s.findOrCreate(ctx, login)
	if err != nil {
		return "", err
	}

	code := uuid.NewString()
	s.grants.addCode(code, user.ID, state)

	u, err := url.Parse(s.redirectURL)
	if err != nil {
		return "", fmt.Errorf("redirect url: %w", err)
	}
	q := u.Query()
	q.Set("code", code)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Service) findOrCreate(ctx context.Context, login string) (*User, error) {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user, err = s.repo.Create(ctx, &User{
		GoogleID: "dev-" + login,
		Username: login,
		Email:    login + "@example.com",
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// ExchangeCode redeems a single-use authorization code.
func (s *Service) ExchangeCode(ctx context.Context, code, state string) (*TokenPair, error) {
	g, ok := s.grants.takeCode(code)
	if !ok || g.state != state {
		return nil, ErrInvalidGrant
	}
	return s.issue(ctx, g.userID)
}

// Refresh redeems a refresh token and rotates both tokens.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := auth.GetUserIDFromToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, ErrUnauthorized
	}

	owner, err := s.refreshTokenRepo.Consume(ctx, refreshToken)
	if err != nil || owner != userID {
		return nil, ErrUnauthorized
	}

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, ErrUnauthorized
	}

	return s.issue(ctx, userID)
}

// SignOut revokes the refresh tokens of the user that owns accessToken.
// An unusable token is not an error; there is nothing to revoke.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil
	}
	return s.refreshTokenRepo.DeleteByUser(ctx, userID)
}

// Authenticate returns the user id carried by a valid access token.
func (s *Service) Authenticate(accessToken string) (string, error) {
	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return "", ErrUnauthorized
	}
	return userID, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: user id", ErrInvalidInput)
	}
	return s.repo.GetUserByID(ctx, id)
}

// UpdateDescription changes the profile text of id. Only the user
// themselves may do so.
func (s *Service) UpdateDescription(ctx context.Context, callerID, id, description string) (*User, error) {
	if callerID != id {
		return nil, ErrForbidden
	}
	return s.repo.UpdateDescription(ctx, id, description)
}

func (s *Service) issue(ctx context.Context, userID string) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}

	refreshToken, err := auth.GenerateToken(userID, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	err = s.refreshTokenRepo.Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
