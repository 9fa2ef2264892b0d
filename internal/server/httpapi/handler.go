package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/blogsphere/authsession/internal/common"
	"github.com/blogsphere/authsession/internal/server/users"
	"github.com/go-chi/chi/v5"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps users.Service errors to HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, users.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, users.ErrUnauthorized),
		errors.Is(err, users.ErrInvalidGrant),
		errors.Is(err, users.ErrInvalidState):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		s.logger.Error(r.Context(), "internal error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	return dec.Decode(v)
}

func (s *HTTPServer) handleSignInURL(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.BeginSignIn(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u})
}

const authorizePage = `<!doctype html>
<html><body>
<h1>Development sign-in</h1>
<form method="get" action="/dev/authorize">
<input type="hidden" name="state" value="%s">
<label>Login <input name="login" autofocus></label>
<button type="submit">Continue</button>
</form>
</body></html>
`

// handleAuthorize stands in for the provider's consent screen. Without a
// login it renders a form; with one it redirects back to the client.
func (s *HTTPServer) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	login := r.URL.Query().Get("login")

	if state == "" {
		writeError(w, http.StatusBadRequest, "missing state")
		return
	}
	if login == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, authorizePage, html.EscapeString(state))
		return
	}

	target, err := s.users.Authorize(r.Context(), state, login)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *HTTPServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "missing code or state")
		return
	}

	pair, err := s.users.ExchangeCode(r.Context(), code, state)
	if err != nil {
		s.logger.Warn(r.Context(), "code exchange failed", "error", err)
		writeError(w, http.StatusUnauthorized, "could not authenticate with google")
		return
	}

	s.logger.Info(r.Context(), "signed in")
	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(w, r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "missing refresh token")
		return
	}

	pair, err := s.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := s.users.SignOut(r.Context(), token); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type updateUserRequest struct {
	Description string `json:"description"`
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	callerID, _ := r.Context().Value(UserIDKey).(string)

	var req updateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.users.UpdateDescription(r.Context(), callerID, chi.URLParam(r, "userID"), req.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
