package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"techblog/internal/models"
)

// ProfileStore reads the public half of accounts.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore returns a new ProfileStore.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// FindByID retrieves a profile by its user ID. Returns nil if not found.
func (s *ProfileStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, full_name, bio, created_at FROM profiles WHERE id = $1
	`, id).Scan(&p.ID, &p.Username, &p.FullName, &p.Bio, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}
