package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a row of the user directory. Password holds whatever the
// configured password scheme stores: plaintext or a bcrypt hash.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) CreateUser(ctx context.Context, username, password string, isAdmin bool) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (id, username, password, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, password, is_admin, created_at
	`, uuid.New(), username, password, isAdmin).Scan(
		&u.ID, &u.Username, &u.Password, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrConflict
		}
		return User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT id, username, password, is_admin, created_at
		FROM users WHERE username = $1
	`, username).Scan(
		&u.ID, &u.Username, &u.Password, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return u, nil
}
