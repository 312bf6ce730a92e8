// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wildstack/server/internal/auth"
	"github.com/wildstack/server/internal/models"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords, so callers leak nothing about which one failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CreateUser hashes the plaintext password and inserts the account. The
// user's ID is assigned here if unset.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash

	q := `INSERT INTO users (id, email, password, username) VALUES ($1, $2, $3, $4)`
	err = pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, user.ID, user.Email, user.Password, user.Username)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches one account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	q := `SELECT id, email, password, username FROM users WHERE email=$1`
	if err := s.Pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Password, &u.Username); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches one account by ID.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	q := `SELECT id, email, password, username FROM users WHERE id=$1`
	if err := s.Pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Password, &u.Username); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate checks email and password and returns the account on success.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
