package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stellar/internal/models"
)

const userColumns = `id, username, email, password_hash, is_active, is_email_verified,
	verification_token, verification_token_expires, created_at`

// CreateUser inserts u, assigning an id and creation time when they are unset.
// A duplicate username or email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = dbTime(u.CreatedAt)
	if u.VerificationTokenExpires != nil {
		exp := dbTime(*u.VerificationTokenExpires)
		u.VerificationTokenExpires = &exp
	}

	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.IsEmailVerified,
		u.VerificationToken, u.VerificationTokenExpires, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT `+userColumns+` FROM users WHERE `+where), arg)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

func (s *Store) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return s.getUser(ctx, "verification_token = ?", token)
}

// MarkEmailVerified sets the verified flag and clears the pending token.
func (s *Store) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET is_email_verified = ?,
		verification_token = NULL, verification_token_expires = NULL WHERE id = ?`), true, userID)
	if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) SetVerificationToken(ctx context.Context, userID, token string, expires time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET verification_token = ?,
		verification_token_expires = ? WHERE id = ?`), token, dbTime(expires), userID)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	return requireAffected(res)
}

// DeleteUsersByEmailLike removes users whose email matches a SQL LIKE pattern. Their
// records go with them.
func (s *Store) DeleteUsersByEmailLike(ctx context.Context, pattern string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM records WHERE user_id IN
		(SELECT id FROM users WHERE email LIKE ?)`), pattern); err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users WHERE email LIKE ?`), pattern)
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}
