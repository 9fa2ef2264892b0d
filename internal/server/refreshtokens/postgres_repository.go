package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresRepository is a Repository on the refresh_tokens table.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {

	query :=
		`INSERT INTO refresh_tokens (user_id, token, expires_at)
         VALUES ($1, $2, $3)
		 `

	_, err := r.db.ExecContext(ctx, query, userID, token, r.now().Add(validity).UTC())

	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

// Consume deletes the row and reads it back in one statement, so two
// concurrent redemptions of one token cannot both succeed.
func (r *PostgresRepository) Consume(ctx context.Context, token string) (string, error) {

	query :=
		`DELETE FROM refresh_tokens
		 WHERE token = $1
		 RETURNING user_id, expires_at
		 `

	var (
		userID  string
		expires time.Time
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(&userID, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUnknownToken
		}
		return "", fmt.Errorf("error performing sql request: %w", err)
	}

	if !r.now().Before(expires) {
		return "", ErrUnknownToken
	}
	return userID, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}
