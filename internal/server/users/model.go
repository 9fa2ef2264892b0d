package users

import "time"

// User is the account record served by GET /users/{id}.
type User struct {
	ID          string    `json:"id"`
	GoogleID    string    `json:"google_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
