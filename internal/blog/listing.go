// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"techblog/internal/apperr"
	"techblog/internal/identity"
	"techblog/internal/models"
)

// HomePage is the post index.
type HomePage struct {
	Posts      []models.PostDetail
	Categories []models.Category
	Category   string // active filter slug, "" for all
}

// ProfilePage is the signed-in author's dashboard.
type ProfilePage struct {
	User  identity.User
	Posts []models.PostDetail
	Stats models.PostStats
}

// Listing serves the index pages.
type Listing struct {
	posts      PostRepository
	categories CategoryRepository
}

// NewListing creates the listing flow.
func NewListing(posts PostRepository, categories CategoryRepository) *Listing {
	return &Listing{posts: posts, categories: categories}
}

// Home lists published posts, newest first, optionally within one
// category. Posts and categories are fetched independently.
func (l *Listing) Home(ctx context.Context, categorySlug string) (*HomePage, error) {
	page := &HomePage{Category: categorySlug}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		posts, err := l.posts.ListPublished(gctx, categorySlug)
		if err != nil {
			return apperr.Remote("Failed to load posts", err)
		}
		page.Posts = posts
		return nil
	})
	g.Go(func() error {
		cats, err := l.categories.List(gctx)
		if err != nil {
			return apperr.Remote("Failed to load categories", err)
		}
		page.Categories = cats
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// Categories lists every category by name.
func (l *Listing) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := l.categories.List(ctx)
	if err != nil {
		return nil, apperr.Remote("Failed to load categories", err)
	}
	return cats, nil
}

// Profile lists every post of the user, drafts included, with totals.
func (l *Listing) Profile(ctx context.Context, user *identity.User) (*ProfilePage, error) {
	if err := requireUser(user, msgLoginRequired); err != nil {
		return nil, err
	}
	posts, err := l.posts.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, apperr.Remote("Failed to load posts", err)
	}

	plain := make([]models.Post, len(posts))
	for i := range posts {
		plain[i] = posts[i].Post
	}
	return &ProfilePage{User: *user, Posts: posts, Stats: models.StatsFor(plain)}, nil
}
