// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"techblog/internal/media"
	"techblog/internal/slug"
)

// excerptLength is how many characters of content a generated excerpt keeps.
const excerptLength = 200

// Excerpt returns the explicit excerpt, or when it is blank the first 200
// characters of content followed by "...".
func Excerpt(excerpt, content string) string {
	if strings.TrimSpace(excerpt) != "" {
		return excerpt
	}
	if utf8.RuneCountInString(content) > excerptLength {
		content = string([]rune(content)[:excerptLength])
	}
	return content + "..."
}

// CoverImage returns the explicit cover, falling back to the first image
// attachment. Returns nil when there is neither.
func CoverImage(explicit string, attachments media.Attachments) *string {
	if c := strings.TrimSpace(explicit); c != "" {
		return &c
	}
	if u := attachments.FirstImageURL(); u != "" {
		return &u
	}
	return nil
}

// Slug derives the URL slug of a post title.
func Slug(title string) string {
	return slug.Generate(title)
}

// Validation limits for post fields.
const (
	maxTitleLen   = 300
	maxContentLen = 500_000
	maxExcerptLen = 1_000
	maxCoverLen   = 2_048
)

// validateForm checks the form and returns the first error found.
func validateForm(f Form) string {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(f.Content) > maxContentLen {
		return "Content is too long (max 500,000 characters)."
	}
	if utf8.RuneCountInString(f.Excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	if c := strings.TrimSpace(f.CoverImage); c != "" {
		if len(c) > maxCoverLen {
			return "Cover image URL is too long."
		}
		u, err := url.Parse(c)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "Cover image must be an http or https URL."
		}
	}
	return ""
}
