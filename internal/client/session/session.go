// Package session holds the client's belief about who is signed in.
//
// State is shared by the whole application but handed out explicitly: the
// services that write it and the views that read it receive the same *State.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/blogsphere/authsession/internal/client/repositories/metadata"
	"github.com/blogsphere/authsession/internal/common"
	"github.com/blogsphere/authsession/internal/logging"
	"github.com/google/uuid"
)

// User is the backend's user record.
type User struct {
	ID          string    `json:"id"`
	GoogleID    string    `json:"google_id,omitempty"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session is a snapshot of the state. Authenticated is true iff User is set.
type Session struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// Listener receives the new session after every change.
type Listener func(Session)

type subscription struct {
	id uuid.UUID
	fn Listener
}

// State is an observable Session.
type State struct {
	// notifyMu is taken before mu by writers and held through delivery, so
	// listeners see changes one at a time and in the order they happened.
	notifyMu sync.Mutex

	mu   sync.Mutex
	cur  Session
	subs []subscription

	repo metadata.Repository
	log  logging.Logger
}

type Option func(*State)

// WithRepository persists a snapshot of the session under common.SessionSnapshotKey.
func WithRepository(repo metadata.Repository) Option {
	return func(s *State) { s.repo = repo }
}

func WithLogger(l logging.Logger) Option {
	return func(s *State) { s.log = l }
}

func NewState(opts ...Option) *State {
	s := &State{log: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Current returns a copy of the session.
func (s *State) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.clone()
}

// SetUser marks the session authenticated as u.
func (s *State) SetUser(ctx context.Context, u User) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.cur = Session{Authenticated: true, User: &u}
	s.persistLocked(ctx)
	snap, subs := s.cur.clone(), s.listenersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// ClearUser signs the session out. Clearing a cleared session notifies nobody.
func (s *State) ClearUser(ctx context.Context) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !s.cur.Authenticated && s.cur.User == nil {
		s.mu.Unlock()
		return
	}
	s.cur = Session{}
	s.persistLocked(ctx)
	snap, subs := s.cur.clone(), s.listenersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// Subscribe registers fn and returns a function that removes it.
// Listeners run synchronously, in subscription order, after the state lock
// is released. A listener must not call SetUser or ClearUser.
func (s *State) Subscribe(fn Listener) func() {
	id := uuid.New()

	s.mu.Lock()
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Restore loads the persisted snapshot, if any. An unreadable snapshot is
// discarded and the session stays signed out.
func (s *State) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	raw, err := s.repo.Get(ctx, common.SessionSnapshotKey)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	var snap Session
	if err := json.Unmarshal(raw, &snap); err != nil || (snap.Authenticated != (snap.User != nil)) {
		s.log.Warn(ctx, "discarding unreadable session snapshot", "error", err)
		if err := s.repo.Delete(ctx, common.SessionSnapshotKey); err != nil {
			s.log.Error(ctx, "failed to delete session snapshot", "error", err)
		}
		return nil
	}
	if snap.User == nil {
		return nil
	}

	s.SetUser(ctx, *snap.User)
	return nil
}

func (s *State) listenersLocked() []Listener {
	out := make([]Listener, len(s.subs))
	for i, sub := range s.subs {
		out[i] = sub.fn
	}
	return out
}

// persistLocked writes the snapshot. Failures are logged only: the
// in-memory state is authoritative.
func (s *State) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}
	if s.cur.User == nil {
		if err := s.repo.Delete(ctx, common.SessionSnapshotKey); err != nil {
			s.log.Error(ctx, "failed to delete session snapshot", "error", err)
		}
		return
	}
	raw, err := json.Marshal(s.cur)
	if err != nil {
		s.log.Error(ctx, "failed to encode session snapshot", "error", err)
		return
	}
	if err := s.repo.Set(ctx, common.SessionSnapshotKey, raw); err != nil {
		s.log.Error(ctx, "failed to write session snapshot", "error", err)
	}
}

func (s Session) clone() Session {
	if s.User == nil {
		return Session{Authenticated: s.Authenticated}
	}
	u := *s.User
	return Session{Authenticated: s.Authenticated, User: &u}
}

func notify(subs []Listener, snap Session) {
	for _, fn := range subs {
		fn(snap.clone())
	}
}
