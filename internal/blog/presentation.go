// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"html/template"
	"log/slog"

	"github.com/google/uuid"

	"techblog/internal/apperr"
	"techblog/internal/identity"
	"techblog/internal/models"
)

const (
	msgDeleted      = "Post deleted successfully"
	msgDeleteFailed = "Failed to delete post"
	msgNoDeletePerm = "You don't have permission to delete this post"
)

// PostView is a post ready for display.
type PostView struct {
	models.PostDetail
	Body     template.HTML
	IsAuthor bool
}

// Deleted is the outcome of a delete request.
type Deleted struct {
	Done     bool
	Notice   string
	Redirect string
}

// Presentation shows single posts and performs author-only deletion.
type Presentation struct {
	posts  PostRepository
	format Format
	bodies BodyCache
}

// NewPresentation creates the presentation flow. bodies may be nil.
func NewPresentation(posts PostRepository, format Format, bodies BodyCache) *Presentation {
	if bodies == nil {
		bodies = nopBodyCache{}
	}
	return &Presentation{posts: posts, format: format, bodies: bodies}
}

// View fetches a post with its author and category, counts the view and
// renders the body. Unpublished posts are visible to their author only.
func (p *Presentation) View(ctx context.Context, user *identity.User, id uuid.UUID) (*PostView, error) {
	d, err := p.posts.FindDetail(ctx, id)
	if err != nil {
		return nil, apperr.Remote(msgLoadFailed, err)
	}
	isAuthor := user != nil && d != nil && d.IsAuthoredBy(user.ID)
	if d == nil || (!d.Published && !isAuthor) {
		return nil, apperr.New(apperr.ErrNotFound, msgPostNotFound)
	}

	p.countView(ctx, id)

	body, err := p.body(ctx, &d.Post)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRemote, "Failed to render post", err)
	}
	return &PostView{PostDetail: *d, Body: body, IsAuthor: isAuthor}, nil
}

// countView bumps the counter with a separate read and write. Two viewers
// racing between them both write the same value, so views can under-count.
// Failures are logged and never fail the view.
func (p *Presentation) countView(ctx context.Context, id uuid.UUID) {
	views, err := p.posts.Views(ctx, id)
	if err != nil {
		slog.Warn("read views failed", "post", id, "error", err)
		return
	}
	if err := p.posts.SetViews(ctx, id, views+1); err != nil {
		slog.Warn("write views failed", "post", id, "error", err)
	}
}

func (p *Presentation) body(ctx context.Context, post *models.Post) (template.HTML, error) {
	if cached, ok := p.bodies.Get(ctx, post.ID, post.Content); ok {
		return template.HTML(cached), nil
	}
	html, err := p.format.Render(post.Content)
	if err != nil {
		return "", err
	}
	p.bodies.Set(ctx, post.ID, post.Content, string(html))
	return html, nil
}

// ConfirmDelete loads the post for the confirmation prompt. Only the
// author gets it.
func (p *Presentation) ConfirmDelete(ctx context.Context, user *identity.User, id uuid.UUID) (*models.PostDetail, error) {
	if err := requireUser(user, msgLoginRequired); err != nil {
		return nil, err
	}
	d, err := p.posts.FindDetail(ctx, id)
	if err != nil {
		return nil, apperr.Remote(msgLoadFailed, err)
	}
	if d == nil {
		return nil, apperr.New(apperr.ErrNotFound, msgPostNotFound)
	}
	if !d.IsAuthoredBy(user.ID) {
		return nil, apperr.New(apperr.ErrPermissionDenied, msgNoDeletePerm)
	}
	return d, nil
}

// Delete removes a post once the author has confirmed. Without
// confirmation nothing is read or written.
func (p *Presentation) Delete(ctx context.Context, user *identity.User, id uuid.UUID, confirmed bool) (*Deleted, error) {
	if !confirmed {
		return &Deleted{}, nil
	}
	if err := requireUser(user, msgLoginRequired); err != nil {
		return nil, err
	}

	post, err := p.posts.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Remote(msgDeleteFailed, err)
	}
	if post == nil {
		return nil, apperr.New(apperr.ErrNotFound, msgPostNotFound)
	}
	if !post.IsAuthoredBy(user.ID) {
		slog.Warn("delete refused", "post", id, "user", user.ID)
		return nil, apperr.New(apperr.ErrPermissionDenied, msgNoDeletePerm)
	}

	if err := p.posts.Delete(ctx, id); err != nil {
		return nil, apperr.Remote(msgDeleteFailed, err)
	}
	p.bodies.Invalidate(ctx, id)

	slog.Info("post deleted", "post", id, "author", user.ID)
	return &Deleted{Done: true, Notice: msgDeleted, Redirect: "/"}, nil
}
