// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"techblog/internal/apperr"
	"techblog/internal/blog"
	"techblog/internal/middleware"
	"techblog/internal/render"
)

// Public groups the reading side of the site: the index, single posts,
// post deletion and the author's profile.
type Public struct {
	renderer     *render.Renderer
	listing      *blog.Listing
	presentation *blog.Presentation
}

// NewPublic creates the Public handler group.
func NewPublic(renderer *render.Renderer, listing *blog.Listing, presentation *blog.Presentation) *Public {
	return &Public{renderer: renderer, listing: listing, presentation: presentation}
}

// Home lists published posts, optionally filtered by ?category=<slug>.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	page, err := p.listing.Home(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		p.errorPage(w, r, err)
		return
	}
	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, page)
		return
	}
	p.renderer.Page(w, r, "home", &render.PageData{Data: page})
}

// Post shows one post and counts the view.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(chi.URLParam(r, "id"))
	if !ok {
		p.errorPage(w, r, apperr.New(apperr.ErrNotFound, "Post not found"))
		return
	}
	view, err := p.presentation.View(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		p.errorPage(w, r, err)
		return
	}
	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, newAPIPost(view))
		return
	}
	p.renderer.Page(w, r, "post", &render.PageData{Title: view.Title, Data: view})
}

// DeletePage asks the author to confirm.
func (p *Public) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(chi.URLParam(r, "id"))
	if !ok {
		fail(w, r, apperr.New(apperr.ErrNotFound, "Post not found"), "/")
		return
	}
	post, err := p.presentation.ConfirmDelete(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		fail(w, r, err, "/post/"+id.String())
		return
	}
	p.renderer.Page(w, r, "post_delete", &render.PageData{Title: "Delete post", Data: post})
}

// Delete removes the post when the form carries confirm=yes. Anything
// else leaves the post alone and goes back to it.
func (p *Public) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(chi.URLParam(r, "id"))
	if !ok {
		fail(w, r, apperr.New(apperr.ErrNotFound, "Post not found"), "/")
		return
	}
	back := "/post/" + id.String()

	res, err := p.presentation.Delete(r.Context(), middleware.CurrentUser(r.Context()), id, r.FormValue("confirm") == "yes")
	if err != nil {
		fail(w, r, err, back)
		return
	}
	if !res.Done {
		done(w, r, back, "", res)
		return
	}
	done(w, r, res.Redirect, res.Notice, res)
}

// Profile shows the signed-in author's posts and statistics.
func (p *Public) Profile(w http.ResponseWriter, r *http.Request) {
	page, err := p.listing.Profile(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, page)
		return
	}
	p.renderer.Page(w, r, "profile", &render.PageData{Title: "Profile", Data: page})
}

// errorPage renders a failure in place. Used for read requests, where a
// redirect would either hide which page was missing or loop back to the
// page that failed.
func (p *Public) errorPage(w http.ResponseWriter, r *http.Request, err error) {
	if middleware.WantsJSON(r) || errors.Is(err, apperr.ErrAuthRequired) {
		fail(w, r, err, "/")
		return
	}
	detail := "It may have been removed, or it was never published."
	if !errors.Is(err, apperr.ErrNotFound) {
		slog.Error("page failed", "path", r.URL.Path, "error", err)
		detail = "Please try again in a moment."
	}
	p.renderer.PageStatus(w, r, apperr.Status(err), "error", &render.PageData{
		Title: apperr.Message(err),
		Data:  detail,
	})
}
