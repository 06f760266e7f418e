// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity: the credentials half of an account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public half of an account, one-to-one with a User.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  *string   `json:"full_name"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName prefers the full name and falls back to the username.
func (p *Profile) DisplayName() string {
	return AuthorRef{Username: p.Username, FullName: p.FullName}.DisplayName()
}
