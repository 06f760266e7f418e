// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers maps the blog flows onto HTTP. Every handler answers
// browsers with a page or a redirect plus a flash notification, and
// answers JSON clients with a JSON body.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"techblog/internal/apperr"
	"techblog/internal/middleware"
	"techblog/internal/render"
)

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

// fail reports err at the boundary of an action. Browsers are sent back
// to back with the message as a flash (or to the sign-in page when the
// action needs a user); JSON clients get the message and a status code.
func fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError || errors.Is(err, apperr.ErrRemote) {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	msg := apperr.Message(err)
	if middleware.WantsJSON(r) {
		writeJSON(w, status, errorBody{Error: msg})
		return
	}
	if errors.Is(err, apperr.ErrAuthRequired) {
		back = "/auth"
	}
	render.SetFlash(w, r, render.FlashError, msg)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// done finishes a successful action: JSON clients get v, browsers are
// redirected to next with notice as a success flash.
func done(w http.ResponseWriter, r *http.Request, next, notice string, v any) {
	if middleware.WantsJSON(r) {
		writeJSON(w, http.StatusOK, v)
		return
	}
	if notice != "" {
		render.SetFlash(w, r, render.FlashSuccess, notice)
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// badRequest wraps a form parsing message as a validation failure.
func badRequest(msg string) error {
	return apperr.New(apperr.ErrValidation, msg)
}
