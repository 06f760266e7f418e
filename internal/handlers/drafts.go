// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"techblog/internal/apperr"
	"techblog/internal/blog"
	"techblog/internal/config"
	"techblog/internal/identity"
	"techblog/internal/media"
	"techblog/internal/middleware"
	"techblog/internal/models"
	"techblog/internal/render"
)

// multipartMemory is how much of a multipart body is held in memory;
// the rest spills to temporary files.
const multipartMemory = 8 << 20

// Drafts groups the editor handlers. Every draft command posts the whole
// editor form, so unsaved field edits are applied before the command runs.
type Drafts struct {
	renderer  *render.Renderer
	authoring *blog.Authoring
	listing   *blog.Listing
	limits    media.Limits
}

// NewDrafts creates the Drafts handler group. limits are only displayed;
// the uploader enforces them.
func NewDrafts(renderer *render.Renderer, authoring *blog.Authoring, listing *blog.Listing, limits media.Limits) *Drafts {
	return &Drafts{renderer: renderer, authoring: authoring, listing: listing, limits: limits}
}

// draftView is the editor page model.
type draftView struct {
	Draft             *blog.Draft
	Categories        []models.Category
	Markdown          bool
	Images            []blog.ContentImage
	CanUndo           bool
	CanRedo           bool
	InlineLimitMB     int64
	AttachmentLimitMB int64
}

func draftPath(id string) string {
	return "/drafts/" + id
}

// Create opens a draft for a new post.
func (h *Drafts) Create(w http.ResponseWriter, r *http.Request) {
	d, err := h.authoring.Start(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	done(w, r, draftPath(d.ID), "", d)
}

// Edit opens a draft for an existing post. Missing posts and non-authors
// are sent home with the reason.
func (h *Drafts) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(chi.URLParam(r, "id"))
	if !ok {
		fail(w, r, apperr.New(apperr.ErrNotFound, "Post not found"), "/")
		return
	}
	d, err := h.authoring.Edit(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	done(w, r, draftPath(d.ID), "", d)
}

// Show renders the editor.
func (h *Drafts) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := h.authoring.Draft(ctx, middleware.CurrentUser(ctx), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, d)
		return
	}

	cats, err := h.listing.Categories(ctx)
	if err != nil {
		// The editor still works without the category list.
		render.SetFlash(w, r, render.FlashError, "Could not load categories")
	}

	format := h.authoring.Format()
	title := "New post"
	if !d.IsNew() {
		title = "Edit post"
	}
	h.renderer.Page(w, r, "draft", &render.PageData{
		Title: title,
		Data: draftView{
			Draft:             d,
			Categories:        cats,
			Markdown:          format.Mode() == config.ModeMarkdown,
			Images:            blog.ContentImages(format, d.Form.Content),
			CanUndo:           d.History.CanUndo(),
			CanRedo:           d.History.CanRedo(),
			InlineLimitMB:     h.limits.Inline >> 20,
			AttachmentLimitMB: h.limits.Attachment >> 20,
		},
	})
}

// Submit creates or updates the post from the draft.
func (h *Drafts) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := parseForm(r); err != nil {
		fail(w, r, err, draftPath(id))
		return
	}
	f, err := postedForm(r)
	if err != nil {
		fail(w, r, err, draftPath(id))
		return
	}
	res, err := h.authoring.Submit(ctx, middleware.CurrentUser(ctx), id, f)
	if err != nil {
		fail(w, r, err, draftPath(id))
		return
	}
	done(w, r, res.Redirect, res.Notice, res.Post)
}

// SaveForm stores the form fields without submitting.
func (h *Drafts) SaveForm(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "Draft saved", func(ctx context.Context, u *identity.User, id string) (*blog.Draft, error) {
		return h.authoring.Draft(ctx, u, id)
	})
}

// AddMedia uploads the selected files to the attachment list, in order.
// Each file that fails gets its own notification.
func (h *Drafts) AddMedia(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "", func(ctx context.Context, u *identity.User, id string) (*blog.Draft, error) {
		files, closeAll, err := formFiles(r, "files")
		if err != nil {
			return nil, err
		}
		defer closeAll()

		d, failures, err := h.authoring.AddFiles(ctx, u, id, files)
		for _, f := range failures {
			render.SetFlash(w, r, render.FlashError, f.Message())
		}
		return d, err
	})
}

// RemoveMedia drops one attachment.
func (h *Drafts) RemoveMedia(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "", func(ctx context.Context, u *identity.User, id string) (*blog.Draft, error) {
		return h.authoring.RemoveAttachment(ctx, u, id, chi.URLParam(r, "mid"))
	})
}

// SetSize changes an attachment's display size. The value comes from the
// attachment's own select (size-<mid>) or a plain size field.
func (h *Drafts) SetSize(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "", func(ctx context.Context, u *identity.User, id string) (*blog.Draft, error) {
		mid := chi.URLParam(r, "mid")
		raw := r.FormValue("size-" + mid)
		if raw == "" {
			raw = r.FormValue("size")
		}
		percent, msg := percentField(raw)
		if msg != "" {
			return nil, badRequest(msg)
		}
		return h.authoring.SetDisplaySize(ctx, u, id, mid, percent)
	})
}

// Upload stores the file from the editor's upload field and embeds it.
func (h *Drafts) Upload(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "", func(ctx context.Context, u *identity.User, id string) (*blog.Draft, error) {
		files, closeAll, err := formFiles(r, "upload")
		if err != nil {
			return nil, err
		}
		defer closeAll()
		if len(files) == 0 {
			return nil, badRequest("Choose a file to upload")
		}
		return h.authoring.InsertUpload(ctx, u, id, files[0])
	})
}

// Shape inserts one of the built-in shapes.
func (h *Drafts) Shape(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "", func(ctx context.Context, u *identity.User, id string) (*blog.Draft, error) {
		return h.authoring.InsertShape(ctx, u, id, r.FormValue("shape"))
	})
}

// Resize sets the width of an embedded image (?index=<n>, width-<n>).
func (h *Drafts) Resize(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "", func(ctx context.Context, u *identity.User, id string) (*blog.Draft, error) {
		index, msg := indexField(r.FormValue("index"))
		if msg != "" {
			return nil, badRequest(msg)
		}
		raw := r.FormValue("width-" + r.FormValue("index"))
		if raw == "" {
			raw = r.FormValue("width")
		}
		width, msg := percentField(raw)
		if msg != "" {
			return nil, badRequest(msg)
		}
		return h.authoring.ResizeImage(ctx, u, id, index, width)
	})
}

// Undo restores the previous content.
func (h *Drafts) Undo(w http.ResponseWriter, r *http.Request) {
	h.historyStep(w, r, h.authoring.Undo)
}

// Redo reapplies undone content.
func (h *Drafts) Redo(w http.ResponseWriter, r *http.Request) {
	h.historyStep(w, r, h.authoring.Redo)
}

// historyStep runs undo or redo without saving the posted form first,
// which would itself record a history entry.
func (h *Drafts) historyStep(w http.ResponseWriter, r *http.Request, step func(context.Context, *identity.User, string) (*blog.Draft, error)) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	d, err := step(ctx, middleware.CurrentUser(ctx), id)
	if err != nil {
		fail(w, r, err, draftPath(id))
		return
	}
	done(w, r, draftPath(id), "", d)
}

// command applies the posted form fields, when present, then runs cmd.
func (h *Drafts) command(w http.ResponseWriter, r *http.Request, notice string, cmd func(context.Context, *identity.User, string) (*blog.Draft, error)) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)
	id := chi.URLParam(r, "id")
	back := draftPath(id)

	if err := parseForm(r); err != nil {
		fail(w, r, err, back)
		return
	}
	f, err := postedForm(r)
	if err != nil {
		fail(w, r, err, back)
		return
	}
	if f != nil {
		if _, err := h.authoring.UpdateForm(ctx, user, id, *f); err != nil {
			fail(w, r, err, back)
			return
		}
	}

	d, err := cmd(ctx, user, id)
	if err != nil {
		fail(w, r, err, back)
		return
	}
	done(w, r, back, notice, d)
}

// parseForm reads urlencoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, http.ErrNotMultipart):
		return nil
	case errors.As(err, &tooLarge):
		return badRequest("The upload is too large")
	default:
		return badRequest("The form could not be read")
	}
}

// postedForm returns the editor fields, or nil when the request carries
// none (API clients posting a bare command).
func postedForm(r *http.Request) (*blog.Form, error) {
	if _, ok := r.Form["title"]; !ok {
		return nil, nil
	}
	f, msg := draftForm(r)
	if msg != "" {
		return nil, badRequest(msg)
	}
	return &f, nil
}

// formFiles opens the files of a multipart field in selection order.
// Empty file inputs are skipped. The returned func closes them all.
func formFiles(r *http.Request, field string) ([]media.File, func(), error) {
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[field]
	}

	var files []media.File
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, fh := range headers {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, badRequest("Failed to upload " + fh.Filename)
		}
		opened = append(opened, f)
		files = append(files, media.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return files, closeAll, nil
}
