package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/huckwnmo101/taskdeck/internal/types"
)

// CreateUser inserts a new account. The email column is UNIQUE; callers
// should check for an existing account first to report a clean conflict.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *types.User) (*types.User, error) {
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, name, password_hash, created_at, updated_at, last_signed_in)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.Email, user.Name, user.PasswordHash, now, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUser retrieves a user by ID
func (s *SQLiteStorage) GetUser(ctx context.Context, id int64) (*types.User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email address
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.getUserWhere(ctx, "email = ?", email)
}

// TouchUserSignIn records a successful sign-in
func (s *SQLiteStorage) TouchUserSignIn(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_signed_in = ?, updated_at = ? WHERE id = ?
	`, time.Now(), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update sign-in time: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) getUserWhere(ctx context.Context, where string, arg interface{}) (*types.User, error) {
	var user types.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at, updated_at, last_signed_in
		FROM users
		WHERE `+where,
		arg,
	).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt, &user.LastSignedIn,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
