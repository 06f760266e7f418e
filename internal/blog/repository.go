// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog implements the post flows: authoring through server-side
// drafts, presentation with view counting and author-only deletion, and the
// home and profile listings. Every flow takes the acting user explicitly;
// a nil *identity.User is an anonymous visitor.
package blog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"techblog/internal/media"
	"techblog/internal/models"
)

// PostRepository is the relational store for posts. *store.PostStore
// satisfies it.
type PostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*models.PostDetail, error)
	ListPublished(ctx context.Context, categorySlug string) ([]models.PostDetail, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.PostDetail, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Views(ctx context.Context, id uuid.UUID) (int, error)
	SetViews(ctx context.Context, id uuid.UUID, views int) error
}

// CategoryRepository reads categories. *store.CategoryStore satisfies it.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// DraftRepository keeps authoring sessions. *cache.DraftStore[Draft]
// satisfies it.
type DraftRepository interface {
	Save(ctx context.Context, id string, d *Draft) error
	Load(ctx context.Context, id string) (*Draft, error)
	Delete(ctx context.Context, id string) error
	// Claim takes the submit marker of a draft for ttl and reports
	// whether it was free.
	Claim(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id string) error
}

// BodyCache holds post bodies rendered from a given content.
// *cache.BodyCache satisfies it.
type BodyCache interface {
	Get(ctx context.Context, id uuid.UUID, content string) (string, bool)
	Set(ctx context.Context, id uuid.UUID, content, html string)
	Invalidate(ctx context.Context, id uuid.UUID)
}

// Uploader moves files into object storage. *media.Uploader satisfies it.
type Uploader interface {
	AddFiles(ctx context.Context, list media.Attachments, files []media.File) (media.Attachments, []media.Failure)
	UploadInline(ctx context.Context, userID uuid.UUID, f media.File) (*media.InlineFile, error)
}

// nopBodyCache is used when no cache is configured.
type nopBodyCache struct{}

func (nopBodyCache) Get(context.Context, uuid.UUID, string) (string, bool) { return "", false }
func (nopBodyCache) Set(context.Context, uuid.UUID, string, string)        {}
func (nopBodyCache) Invalidate(context.Context, uuid.UUID)                 {}
