// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media manages the attachments of the post being authored and the
// uploads behind them. Attachments is an ordered list of MediaItem values;
// Uploader moves selected files into object storage and appends the
// resulting items in selection order.
package media

import (
	"fmt"

	"techblog/internal/apperr"
	"techblog/internal/models"
)

// Display size bounds for attachment previews, in percent.
const (
	MinDisplaySize  = 25
	MaxDisplaySize  = 100
	DisplaySizeStep = 5
)

// Attachments is the ordered attachment list of one post.
type Attachments []models.MediaItem

// Contains reports whether an item with the given id is present.
func (a Attachments) Contains(id string) bool {
	return a.index(id) >= 0
}

// Remove returns the list without the item with the given id. Removing an
// unknown id is a no-op.
func (a Attachments) Remove(id string) Attachments {
	out := make(Attachments, 0, len(a))
	for _, item := range a {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// SetDisplaySize changes how large an attachment preview is drawn.
func (a Attachments) SetDisplaySize(id string, percent int) error {
	if percent < MinDisplaySize || percent > MaxDisplaySize || percent%DisplaySizeStep != 0 {
		return apperr.New(apperr.ErrValidation,
			fmt.Sprintf("Display size must be between %d%% and %d%% in steps of %d", MinDisplaySize, MaxDisplaySize, DisplaySizeStep))
	}
	i := a.index(id)
	if i < 0 {
		return apperr.New(apperr.ErrNotFound, "Attachment not found")
	}
	p := percent
	a[i].DisplaySize = &p
	return nil
}

// FirstImageURL returns the URL of the first image attachment, or "".
func (a Attachments) FirstImageURL() string {
	for _, item := range a {
		if item.IsImage() {
			return item.URL
		}
	}
	return ""
}

func (a Attachments) index(id string) int {
	for i, item := range a {
		if item.ID == id {
			return i
		}
	}
	return -1
}
