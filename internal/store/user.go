// Package store provides database access methods for all TechBlog
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"techblog/internal/models"
)

// Unique-constraint failures surfaced to the identity layer.
var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// mapUnique translates a unique violation on a known constraint into one of
// the duplicate sentinels. Any other error is returned unchanged.
func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return ErrDuplicateEmail
	case "profiles_username_key":
		return ErrDuplicateUsername
	default:
		return err
	}
}

// UserStore handles identity rows: users and their 1:1 profiles.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// CreateWithProfile inserts a user and its profile in one transaction. The
// password must already be hashed. Duplicate emails and usernames come back
// as ErrDuplicateEmail and ErrDuplicateUsername.
func (s *UserStore) CreateWithProfile(ctx context.Context, email, passwordHash, username string, fullName *string) (*models.User, *models.Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	u := &models.User{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash) VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at
	`, email, passwordHash).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", mapUnique(err))
	}

	p := &models.Profile{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO profiles (id, username, full_name) VALUES ($1, $2, $3)
		RETURNING id, username, full_name, bio, created_at
	`, u.ID, username, fullName).Scan(&p.ID, &p.Username, &p.FullName, &p.Bio, &p.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("create profile: %w", mapUnique(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit user: %w", err)
	}
	return u, p, nil
}

// Delete removes a user by ID. The profile and the user's posts cascade.
func (s *UserStore) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
