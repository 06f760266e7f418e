// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"techblog/internal/apperr"
	"techblog/internal/identity"
	"techblog/internal/media"
	"techblog/internal/models"
	"techblog/internal/richtext"
)

// Notification texts of the authoring flow.
const (
	msgCreated         = "Post created successfully!"
	msgUpdated         = "Post updated successfully!"
	msgPostNotFound    = "Post not found"
	msgLoadFailed      = "Failed to load post"
	msgNoEditPerm      = "You don't have permission to edit this post"
	msgLoginToUpload   = "You must be logged in to upload files"
	msgLoginRequired   = "You must be logged in"
	msgDraftNotFound   = "This draft has expired or does not exist"
	msgNoDraftPerm     = "You don't have permission to edit this draft"
	msgDraftBusy       = "This draft is being submitted"
	msgUnknownShape    = "Unknown shape"
	msgUnknownCat      = "Unknown category"
	msgSaveFailed      = "Failed to save post"
	msgDraftSaveFailed = "Failed to save draft"
)

// submitTimeout bounds a submit. A draft left Submitting longer than this
// is treated as abandoned and accepts edits again.
const submitTimeout = 2 * time.Minute

// Submitted is the outcome of a successful submit.
type Submitted struct {
	Post     *models.Post
	Notice   string
	Redirect string
}

// Authoring runs the post authoring flow over drafts.
type Authoring struct {
	posts      PostRepository
	categories CategoryRepository
	drafts     DraftRepository
	uploader   Uploader
	format     Format
	bodies     BodyCache
	now        func() time.Time
}

// AuthoringOption configures Authoring.
type AuthoringOption func(*Authoring)

// WithBodyCache sets the rendered body cache to invalidate on update.
func WithBodyCache(c BodyCache) AuthoringOption {
	return func(a *Authoring) {
		if c != nil {
			a.bodies = c
		}
	}
}

// WithAuthoringClock replaces time.Now, for tests.
func WithAuthoringClock(now func() time.Time) AuthoringOption {
	return func(a *Authoring) { a.now = now }
}

// NewAuthoring creates the authoring flow.
func NewAuthoring(posts PostRepository, categories CategoryRepository, drafts DraftRepository,
	uploader Uploader, format Format, opts ...AuthoringOption) *Authoring {
	a := &Authoring{
		posts:      posts,
		categories: categories,
		drafts:     drafts,
		uploader:   uploader,
		format:     format,
		bodies:     nopBodyCache{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Format returns the content mode drafts are edited in.
func (a *Authoring) Format() Format {
	return a.format
}

func requireUser(user *identity.User, msg string) error {
	if user == nil || user.ID == uuid.Nil {
		return apperr.New(apperr.ErrAuthRequired, msg)
	}
	return nil
}

// Start opens a draft for a new post. It begins Ready.
func (a *Authoring) Start(ctx context.Context, user *identity.User) (*Draft, error) {
	if err := requireUser(user, msgLoginRequired); err != nil {
		return nil, err
	}
	d := &Draft{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		State:       StateReady,
		Attachments: media.Attachments{},
		CreatedAt:   a.now(),
	}
	if err := a.save(ctx, d); err != nil {
		return nil, err
	}
	slog.Debug("draft started", "draft", d.ID, "user", user.ID)
	return d, nil
}

// Edit opens a draft for an existing post. The draft begins Loading while
// the post is fetched and becomes Ready once the author check passes.
// A missing post or a non-author gets an error and no draft.
func (a *Authoring) Edit(ctx context.Context, user *identity.User, postID uuid.UUID) (*Draft, error) {
	if err := requireUser(user, msgLoginRequired); err != nil {
		return nil, err
	}
	d := &Draft{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		PostID:    &postID,
		State:     StateLoading,
		CreatedAt: a.now(),
	}

	p, err := a.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, apperr.Remote(msgLoadFailed, err)
	}
	if p == nil {
		return nil, apperr.New(apperr.ErrNotFound, msgPostNotFound)
	}
	if !p.IsAuthoredBy(user.ID) {
		slog.Warn("edit refused", "post", postID, "user", user.ID)
		return nil, apperr.New(apperr.ErrPermissionDenied, msgNoEditPerm)
	}

	d.Form = Form{
		Title:      p.Title,
		Content:    p.Content,
		Excerpt:    p.Excerpt,
		CategoryID: p.CategoryID,
		Published:  p.Published,
	}
	if p.CoverImage != nil {
		d.Form.CoverImage = *p.CoverImage
	}
	d.Attachments = append(media.Attachments{}, p.MediaAttachments...)
	if err := d.to(StateReady); err != nil {
		return nil, err
	}
	if err := a.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Draft loads a draft owned by user.
func (a *Authoring) Draft(ctx context.Context, user *identity.User, draftID string) (*Draft, error) {
	if err := requireUser(user, msgLoginRequired); err != nil {
		return nil, err
	}
	d, err := a.drafts.Load(ctx, draftID)
	if err != nil {
		return nil, apperr.Remote(msgDraftNotFound, err)
	}
	if d == nil {
		return nil, apperr.New(apperr.ErrNotFound, msgDraftNotFound)
	}
	if d.OwnerID != user.ID {
		return nil, apperr.New(apperr.ErrPermissionDenied, msgNoDraftPerm)
	}
	return d, nil
}

// ready loads an owned draft that accepts edits.
func (a *Authoring) ready(ctx context.Context, user *identity.User, draftID string) (*Draft, error) {
	d, err := a.Draft(ctx, user, draftID)
	if err != nil {
		return nil, err
	}
	if d.State == StateSubmitting && d.SubmittedAt != nil && a.now().Sub(*d.SubmittedAt) > submitTimeout {
		slog.Warn("recovering abandoned submit", "draft", d.ID, "since", *d.SubmittedAt)
		if err := d.to(StateReady); err != nil {
			return nil, err
		}
		d.SubmittedAt = nil
	}
	if d.State != StateReady {
		return nil, apperr.New(apperr.ErrValidation, msgDraftBusy)
	}
	return d, nil
}

func (a *Authoring) save(ctx context.Context, d *Draft) error {
	if err := a.drafts.Save(ctx, d.ID, d); err != nil {
		return apperr.Remote(msgDraftSaveFailed, err)
	}
	return nil
}

// UpdateForm replaces the form fields of a draft.
func (a *Authoring) UpdateForm(ctx context.Context, user *identity.User, draftID string, f Form) (*Draft, error) {
	d, err := a.ready(ctx, user, draftID)
	if err != nil {
		return nil, err
	}
	if err := a.applyForm(d, f); err != nil {
		return nil, err
	}
	if err := a.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (a *Authoring) applyForm(d *Draft, f Form) error {
	content, err := a.format.Ingest(f.Content)
	if err != nil {
		return err
	}
	d.Form.Title = f.Title
	d.Form.Excerpt = f.Excerpt
	d.Form.CategoryID = f.CategoryID
	d.Form.CoverImage = f.CoverImage
	d.Form.Published = f.Published
	d.setContent(content)
	return nil
}

// AddFiles uploads files to the draft's attachment list in selection
// order. Files that fail are returned and skipped.
func (a *Authoring) AddFiles(ctx context.Context, user *identity.User, draftID string, files []media.File) (*Draft, []media.Failure, error) {
	d, err := a.ready(ctx, user, draftID)
	if err != nil {
		return nil, nil, err
	}
	var failures []media.Failure
	d.Attachments, failures = a.uploader.AddFiles(ctx, d.Attachments, files)
	if err := a.save(ctx, d); err != nil {
		return nil, failures, err
	}
	return d, failures, nil
}

// RemoveAttachment drops one attachment. The stored object is kept.
func (a *Authoring) RemoveAttachment(ctx context.Context, user *identity.User, draftID, mediaID string) (*Draft, error) {
	d, err := a.ready(ctx, user, draftID)
	if err != nil {
		return nil, err
	}
	d.Attachments = d.Attachments.Remove(mediaID)
	if err := a.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetDisplaySize changes the preview size of an attachment.
func (a *Authoring) SetDisplaySize(ctx context.Context, user *identity.User, draftID, mediaID string, percent int) (*Draft, error) {
	d, err := a.ready(ctx, user, draftID)
	if err != nil {
		return nil, err
	}
	if err := d.Attachments.SetDisplaySize(mediaID, percent); err != nil {
		return nil, err
	}
	if err := a.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// InsertUpload stores a file from the editor's upload dialog and embeds
// it at the end of the content: images as images, anything else as a link.
func (a *Authoring) InsertUpload(ctx context.Context, user *identity.User, draftID string, f media.File) (*Draft, error) {
	if err := requireUser(user, msgLoginToUpload); err != nil {
		return nil, err
	}
	d, err := a.ready(ctx, user, draftID)
	if err != nil {
		return nil, err
	}
	up, err := a.uploader.UploadInline(ctx, user.ID, f)
	if err != nil {
		return nil, err
	}

	var content string
	if up.IsImage {
		content, err = a.format.InsertImage(d.Form.Content, up.URL, up.Name)
	} else {
		content, err = a.format.InsertLink(d.Form.Content, up.URL, up.Name)
	}
	if err != nil {
		return nil, err
	}
	d.setContent(content)
	if err := a.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// InsertShape embeds one of the built-in vector shapes.
func (a *Authoring) InsertShape(ctx context.Context, user *identity.User, draftID, shape string) (*Draft, error) {
	kind, ok := richtext.ParseShapeKind(shape)
	if !ok {
		return nil, apperr.New(apperr.ErrValidation, msgUnknownShape)
	}
	return a.editContent(ctx, user, draftID, func(content string) (string, error) {
		return a.format.InsertShape(content, kind)
	})
}

// ResizeImage sets the width of the index-th embedded image or shape.
func (a *Authoring) ResizeImage(ctx context.Context, user *identity.User, draftID string, index, width int) (*Draft, error) {
	return a.editContent(ctx, user, draftID, func(content string) (string, error) {
		return a.format.ResizeImage(content, index, width)
	})
}

func (a *Authoring) editContent(ctx context.Context, user *identity.User, draftID string, edit func(string) (string, error)) (*Draft, error) {
	d, err := a.ready(ctx, user, draftID)
	if err != nil {
		return nil, err
	}
	content, err := edit(d.Form.Content)
	if err != nil {
		return nil, err
	}
	d.setContent(content)
	if err := a.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Undo restores the content before the last change.
func (a *Authoring) Undo(ctx context.Context, user *identity.User, draftID string) (*Draft, error) {
	return a.step(ctx, user, draftID, (*richtext.History).Undo)
}

// Redo reapplies the last undone change.
func (a *Authoring) Redo(ctx context.Context, user *identity.User, draftID string) (*Draft, error) {
	return a.step(ctx, user, draftID, (*richtext.History).Redo)
}

func (a *Authoring) step(ctx context.Context, user *identity.User, draftID string, move func(*richtext.History, string) (string, bool)) (*Draft, error) {
	d, err := a.ready(ctx, user, draftID)
	if err != nil {
		return nil, err
	}
	content, changed := move(&d.History, d.Form.Content)
	if !changed {
		return d, nil
	}
	d.Form.Content = content
	if err := a.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Submit writes the draft to the posts table. A nil form submits the
// fields as last saved. On success the draft is deleted and the caller
// should navigate to the profile; on failure the draft returns to Ready
// with the error recorded. A second submit of a draft while one is running
// is refused.
func (a *Authoring) Submit(ctx context.Context, user *identity.User, draftID string, f *Form) (*Submitted, error) {
	if err := requireUser(user, msgLoginRequired); err != nil {
		return nil, err
	}
	claimed, err := a.drafts.Claim(ctx, draftID, submitTimeout)
	if err != nil {
		return nil, apperr.Remote(msgSaveFailed, err)
	}
	if !claimed {
		return nil, apperr.New(apperr.ErrValidation, msgDraftBusy)
	}

	// The draft must leave Submitting even when the request is cancelled
	// mid-write.
	persist := context.WithoutCancel(ctx)
	defer func() {
		if err := a.drafts.Release(persist, draftID); err != nil {
			slog.Warn("draft release failed", "draft", draftID, "error", err)
		}
	}()

	d, err := a.ready(ctx, user, draftID)
	if err != nil {
		return nil, err
	}
	if f != nil {
		if err := a.applyForm(d, *f); err != nil {
			return nil, err
		}
	}
	if err := d.to(StateSubmitting); err != nil {
		return nil, err
	}
	started := a.now()
	d.SubmittedAt = &started
	if err := a.save(persist, d); err != nil {
		return nil, err
	}

	post, err := a.write(ctx, user, d)
	if err != nil {
		d.LastError = apperr.Message(err)
		d.SubmittedAt = nil
		if terr := d.to(StateReady); terr != nil {
			slog.Error("draft transition failed", "draft", d.ID, "error", terr)
		}
		if serr := a.save(persist, d); serr != nil {
			slog.Error("draft save after failed submit", "draft", d.ID, "error", serr)
		}
		return nil, err
	}

	if err := d.to(StateSuccess); err != nil {
		return nil, err
	}
	if err := a.drafts.Delete(persist, d.ID); err != nil {
		slog.Warn("draft delete failed", "draft", d.ID, "error", err)
	}

	notice := msgCreated
	if !d.IsNew() {
		notice = msgUpdated
		a.bodies.Invalidate(persist, post.ID)
	}
	slog.Info("post submitted", "post", post.ID, "author", user.ID, "new", d.IsNew())
	return &Submitted{Post: post, Notice: notice, Redirect: "/profile"}, nil
}

// write validates the draft and inserts or updates the post.
func (a *Authoring) write(ctx context.Context, user *identity.User, d *Draft) (*models.Post, error) {
	if msg := validateForm(d.Form); msg != "" {
		return nil, apperr.New(apperr.ErrValidation, msg)
	}
	if d.Form.CategoryID != nil {
		cat, err := a.categories.FindByID(ctx, *d.Form.CategoryID)
		if err != nil {
			return nil, apperr.Remote(msgSaveFailed, err)
		}
		if cat == nil {
			return nil, apperr.New(apperr.ErrValidation, msgUnknownCat)
		}
	}

	title := strings.TrimSpace(d.Form.Title)
	p := &models.Post{
		Title:            title,
		Slug:             Slug(title),
		Content:          d.Form.Content,
		Excerpt:          Excerpt(d.Form.Excerpt, d.Form.Content),
		CategoryID:       d.Form.CategoryID,
		CoverImage:       CoverImage(d.Form.CoverImage, d.Attachments),
		Published:        d.Form.Published,
		AuthorID:         user.ID,
		MediaAttachments: d.Attachments,
	}

	if d.IsNew() {
		created, err := a.posts.Create(ctx, p)
		if err != nil {
			return nil, apperr.Remote(msgSaveFailed, err)
		}
		return created, nil
	}

	existing, err := a.posts.FindByID(ctx, *d.PostID)
	if err != nil {
		return nil, apperr.Remote(msgSaveFailed, err)
	}
	if existing == nil {
		return nil, apperr.New(apperr.ErrNotFound, msgPostNotFound)
	}
	if !existing.IsAuthoredBy(user.ID) {
		return nil, apperr.New(apperr.ErrPermissionDenied, msgNoEditPerm)
	}

	p.ID = existing.ID
	p.Views = existing.Views
	p.CreatedAt = existing.CreatedAt
	ok, err := a.posts.Update(ctx, p)
	if err != nil {
		return nil, apperr.Remote(msgSaveFailed, err)
	}
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, msgPostNotFound)
	}
	return p, nil
}
