package refreshtokens

import (
	"context"
	"sync"
	"time"
)

type record struct {
	userID  string
	expires time.Time
}

// InMemoryRepository is a Repository kept in process memory.
type InMemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]record
	now    func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tokens: make(map[string]record), now: time.Now}
}

func (r *InMemoryRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = record{userID: userID, expires: r.now().Add(validity)}
	return nil
}

func (r *InMemoryRepository) Consume(ctx context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tokens[token]
	if !ok {
		return "", ErrUnknownToken
	}
	delete(r.tokens, token)

	if !r.now().Before(rec.expires) {
		return "", ErrUnknownToken
	}
	return rec.userID, nil
}

func (r *InMemoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for t, rec := range r.tokens {
		if rec.userID == userID {
			delete(r.tokens, t)
		}
	}
	return nil
}
