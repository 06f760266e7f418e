// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"techblog/internal/apperr"
	"techblog/internal/blog"
	"techblog/internal/identity"
	"techblog/internal/middleware"
	"techblog/internal/models"
)

// Accounts resolves the identity behind a bearer token.
// *identity.Provider satisfies it.
type Accounts interface {
	Authenticator
	Lookup(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// API serves the JSON-only endpoints. Listing, reading, deleting and the
// draft commands share the browser handlers, which answer JSON on /api
// paths.
type API struct {
	users   Accounts
	tokens  *identity.Tokens
	listing *blog.Listing
}

// NewAPI creates the API handler group.
func NewAPI(users Accounts, tokens *identity.Tokens, listing *blog.Listing) *API {
	return &API{users: users, tokens: tokens, listing: listing}
}

// apiPost is a post as the API returns it: the stored fields plus the
// rendered body.
type apiPost struct {
	models.PostDetail
	HTML     string `json:"html"`
	IsAuthor bool   `json:"is_author"`
}

func newAPIPost(v *blog.PostView) apiPost {
	return apiPost{PostDetail: v.PostDetail, HTML: string(v.Body), IsAuthor: v.IsAuthor}
}

type tokenResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *identity.User `json:"user"`
}

// Token exchanges email and password for a bearer token.
func (a *API) Token(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(w, r)
	if err != nil {
		fail(w, r, err, "")
		return
	}
	u, err := a.users.SignIn(r.Context(), c.Email, c.Password)
	if err != nil {
		fail(w, r, err, "")
		return
	}
	token, exp, err := a.tokens.Issue(*u)
	if err != nil {
		fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp, User: u})
}

// Me returns the account behind the token. A token whose account was
// deleted is treated as signed out.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	u, err := a.users.Lookup(r.Context(), middleware.CurrentUser(r.Context()).ID)
	if err != nil {
		fail(w, r, err, "")
		return
	}
	if u == nil {
		fail(w, r, apperr.New(apperr.ErrAuthRequired, "Please sign in to continue"), "")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Categories lists every category by name.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.listing.Categories(r.Context())
	if err != nil {
		fail(w, r, err, "")
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}
