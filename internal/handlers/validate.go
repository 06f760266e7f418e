package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"techblog/internal/blog"
)

// Request-level input checks. Business rules (title length, cover URL,
// category existence) are enforced by the blog flows; this file only turns
// form values into typed input.

// draftForm reads the editor form fields. It returns a message when a
// field cannot be parsed at all.
func draftForm(r *http.Request) (blog.Form, string) {
	f := blog.Form{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		Excerpt:    r.FormValue("excerpt"),
		CoverImage: strings.TrimSpace(r.FormValue("cover_image")),
		Published:  formBool(r.FormValue("published")),
	}

	if raw := strings.TrimSpace(r.FormValue("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, "Please choose a valid category"
		}
		f.CategoryID = &id
	}
	return f, ""
}

// formBool accepts the values a checkbox or JSON client may send.
func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "yes", "1":
		return true
	}
	return false
}

// percentField parses a display size or image width in percent.
func percentField(v string) (int, string) {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(v, "%")))
	if err != nil {
		return 0, "Size must be a whole percentage"
	}
	return n, ""
}

// indexField parses a zero-based image position.
func indexField(v string) (int, string) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, "Unknown image"
	}
	return n, ""
}

// uuidParam parses a path id, reporting ok=false for malformed values.
func uuidParam(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	return id, err == nil
}
