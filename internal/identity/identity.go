// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity signs users in and up against the local account tables.
// It hands out the User value every flow takes as its acting identity;
// how that value is carried between requests (session cookie or bearer
// token) is up to the caller.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"techblog/internal/apperr"
	"techblog/internal/models"
	"techblog/internal/store"
)

// User is the signed-in identity passed to every flow.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// Accounts is the persistence the provider needs. *store.UserStore
// satisfies it.
type Accounts interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateWithProfile(ctx context.Context, email, passwordHash, username string, fullName *string) (*models.User, *models.Profile, error)
}

// Profiles resolves usernames. *store.ProfileStore satisfies it.
type Profiles interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Email    string
	Password string
	Username string
	FullName string
}

// Provider implements sign-in, sign-up and identity lookup.
type Provider struct {
	accounts Accounts
	profiles Profiles
	cost     int
}

// Option configures a Provider.
type Option func(*Provider)

// WithBcryptCost overrides the bcrypt work factor.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

// NewProvider creates a Provider over the given account stores.
func NewProvider(accounts Accounts, profiles Profiles, opts ...Option) *Provider {
	p := &Provider{accounts: accounts, profiles: profiles, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var errBadCredentials = apperr.New(apperr.ErrAuthRequired, "Invalid email or password")

// SignIn checks credentials and returns the identity.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.New(apperr.ErrValidation, "Email and password are required")
	}

	u, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Remote("Sign in failed", err)
	}
	if u == nil {
		return nil, errBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		slog.Info("sign in rejected", "email", email)
		return nil, errBadCredentials
	}

	prof, err := p.profiles.FindByID(ctx, u.ID)
	if err != nil {
		return nil, apperr.Remote("Sign in failed", err)
	}
	out := &User{ID: u.ID, Email: u.Email}
	if prof != nil {
		out.Username = prof.Username
	}
	return out, nil
}

// SignUp creates an identity and its profile.
func (p *Provider) SignUp(ctx context.Context, in SignUpInput) (*User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.FullName = strings.TrimSpace(in.FullName)

	if msg := validateSignUp(in); msg != "" {
		return nil, apperr.New(apperr.ErrValidation, msg)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.cost)
	if err != nil {
		return nil, apperr.Remote("Sign up failed", err)
	}

	var fullName *string
	if in.FullName != "" {
		fullName = &in.FullName
	}

	u, prof, err := p.accounts.CreateWithProfile(ctx, in.Email, string(hash), in.Username, fullName)
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		return nil, apperr.New(apperr.ErrValidation, "An account with this email already exists")
	case errors.Is(err, store.ErrDuplicateUsername):
		return nil, apperr.New(apperr.ErrValidation, "This username is already taken")
	case err != nil:
		return nil, apperr.Remote("Sign up failed", err)
	}

	slog.Info("account created", "user_id", u.ID, "username", prof.Username)
	return &User{ID: u.ID, Email: u.Email, Username: prof.Username}, nil
}

// Lookup resolves an identity by ID. Returns nil if the account is gone.
func (p *Provider) Lookup(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := p.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Remote("Could not load account", err)
	}
	if u == nil {
		return nil, nil
	}
	prof, err := p.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Remote("Could not load account", err)
	}
	out := &User{ID: u.ID, Email: u.Email}
	if prof != nil {
		out.Username = prof.Username
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
