// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render renders the site's HTML pages. Requests carrying the
// HX-Request header get only the page's "content" block so the editor
// script can swap it in place; every other request gets the full layout.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"techblog/internal/identity"
	"techblog/internal/middleware"
	"techblog/internal/richtext"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds everything a page template can read.
type PageData struct {
	Title     string
	SiteName  string
	User      *identity.User // nil for anonymous visitors
	CSRFToken string
	Flashes   []Flash
	Data      any // page-specific view model
}

// Renderer holds the parsed page templates.
type Renderer struct {
	siteName  string
	templates map[string]*template.Template
}

// standaloneTemplates render without the base layout.
var standaloneTemplates = map[string]bool{
	"auth": true,
}

// New parses every page template paired with the base layout.
func New(siteName string) (*Renderer, error) {
	r := &Renderer{
		siteName:  siteName,
		templates: make(map[string]*template.Template),
	}

	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		page := strings.TrimSuffix(name, ".html")

		files := []string{"templates/base.html", "templates/" + name}
		root := "base.html"
		if standaloneTemplates[page] {
			files = files[1:]
			root = name
		}

		tmpl, err := template.New(root).Funcs(funcMap).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[page] = tmpl
	}

	return r, nil
}

// Page renders name with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders name with the given status. Flashes pending in the
// request cookie, the CSRF token and the current user are filled in.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.SiteName = rn.siteName
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.User == nil {
		data.User = middleware.CurrentUser(r.Context())
	}
	data.Flashes = append(PopFlashes(w, r), data.Flashes...)

	exec := "base.html"
	switch {
	case isHTMX(r):
		exec = "content"
	case standaloneTemplates[name]:
		exec = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, exec, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

var funcMap = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
		return ptr != nil && *ptr == val
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	// sizeSteps are the display sizes offered for an attachment.
	"sizeSteps": func() []int {
		steps := make([]int, 0, 16)
		for p := 25; p <= 100; p += 5 {
			steps = append(steps, p)
		}
		return steps
	},
	"shapes":    richtext.Shapes,
	"colors":    func() []string { return richtext.TextColors },
	"fonts":     func() []string { return richtext.FontFamilies },
	"rawURL":    func(s string) template.URL { return template.URL(s) },
	"hasPrefix": strings.HasPrefix,
}
