package users

import (
	"context"
)

// Repository persists user accounts. Lookups of unknown users return
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByLogin(ctx context.Context, login string) (*User, error)
	UpdateDescription(ctx context.Context, id, description string) (*User, error)
}
