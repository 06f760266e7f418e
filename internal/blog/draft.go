// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"techblog/internal/media"
	"techblog/internal/richtext"
)

// State is the authoring state of a draft.
//
//	Loading -> Ready -> Submitting -> Success
//	                         |
//	                         +-> Ready (on failure)
type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
)

var transitions = map[State][]State{
	StateLoading:    {StateReady},
	StateReady:      {StateSubmitting},
	StateSubmitting: {StateSuccess, StateReady},
}

// to moves the draft to next, rejecting transitions outside the graph.
func (d *Draft) to(next State) error {
	for _, s := range transitions[d.State] {
		if s == next {
			d.State = next
			return nil
		}
	}
	return fmt.Errorf("draft %s: invalid transition %s -> %s", d.ID, d.State, next)
}

// Form is the editable post fields.
type Form struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Excerpt    string     `json:"excerpt"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	CoverImage string     `json:"cover_image"`
	Published  bool       `json:"published"`
}

// Draft is one authoring session: the form, the attachment list and the
// content history of a new or existing post. It is owned by one user and
// nothing in it reaches the posts table until Submit.
type Draft struct {
	ID          string            `json:"id"`
	OwnerID     uuid.UUID         `json:"owner_id"`
	PostID      *uuid.UUID        `json:"post_id,omitempty"`
	State       State             `json:"state"`
	Form        Form              `json:"form"`
	Attachments media.Attachments `json:"attachments"`
	History     richtext.History  `json:"history"`
	LastError   string            `json:"last_error,omitempty"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// IsNew reports whether submitting the draft creates a post.
func (d *Draft) IsNew() bool {
	return d.PostID == nil
}

// setContent replaces the content, recording the old value for undo when
// it changes.
func (d *Draft) setContent(content string) {
	if content == d.Form.Content {
		return
	}
	d.History.Record(d.Form.Content)
	d.Form.Content = content
}
