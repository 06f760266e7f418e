// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog article. Content holds either rich-text markup or raw
// Markdown depending on the deployment's content mode.
type Post struct {
	ID               uuid.UUID   `json:"id"`
	Title            string      `json:"title"`
	Slug             string      `json:"slug"`
	Content          string      `json:"content"`
	Excerpt          string      `json:"excerpt"`
	CategoryID       *uuid.UUID  `json:"category_id"`
	CoverImage       *string     `json:"cover_image"`
	Published        bool        `json:"published"`
	AuthorID         uuid.UUID   `json:"author_id"`
	Views            int         `json:"views"`
	CreatedAt        time.Time   `json:"created_at"`
	MediaAttachments []MediaItem `json:"media_attachments"`
}

// IsAuthoredBy reports whether userID owns the post.
func (p *Post) IsAuthoredBy(userID uuid.UUID) bool {
	return p.AuthorID == userID
}

// AuthorRef is the slice of the author's profile joined onto a post.
type AuthorRef struct {
	Username string  `json:"username"`
	FullName *string `json:"full_name"`
}

// DisplayName prefers the full name and falls back to the username.
func (a AuthorRef) DisplayName() string {
	if a.FullName != nil && *a.FullName != "" {
		return *a.FullName
	}
	return a.Username
}

// CategoryRef is the slice of a category joined onto a post.
type CategoryRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostDetail is a post with its author and category joins.
type PostDetail struct {
	Post
	Author   AuthorRef    `json:"author"`
	Category *CategoryRef `json:"category,omitempty"`
}

// PostStats summarizes an author's posts on the profile page.
type PostStats struct {
	Posts     int `json:"posts"`
	Published int `json:"published"`
	Views     int `json:"views"`
}

// StatsFor computes statistics over posts.
func StatsFor(posts []Post) PostStats {
	s := PostStats{Posts: len(posts)}
	for _, p := range posts {
		if p.Published {
			s.Published++
		}
		s.Views += p.Views
	}
	return s
}
