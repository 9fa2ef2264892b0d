package users

import (
	"context"
	"sync"
	"time"

	"github.com/blogsphere/authsession/internal/common"
	"github.com/google/uuid"
)

// InMemoryRepository is a Repository kept in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byLogin map[string]string
	now     func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*User),
		byLogin: make(map[string]string),
		now:     time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[user.Username]; ok {
		return nil, ErrUserExists
	}

	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = r.now().UTC()
	u.UpdatedAt = u.CreatedAt

	r.byID[u.ID] = &u
	r.byLogin[u.Username] = u.ID

	out := u
	return &out, nil
}

func (r *InMemoryRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *InMemoryRepository) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byLogin[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *InMemoryRepository) UpdateDescription(ctx context.Context, id, description string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Description = description
	u.UpdatedAt = r.now().UTC()

	out := *u
	return &out, nil
}
