// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
)

// MediaType classifies an attachment.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

// ClassifyMediaType maps a declared content type to a MediaType by prefix.
func ClassifyMediaType(contentType string) MediaType {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo
	default:
		return MediaDocument
	}
}

// Dimensions is the intrinsic pixel size of an image attachment.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MediaItem is one attachment of a post, stored in order inside the
// post's media_attachments column.
type MediaItem struct {
	ID          string      `json:"id"`
	URL         string      `json:"url"`
	Type        MediaType   `json:"type"`
	Name        string      `json:"name"`
	DisplaySize *int        `json:"display_size,omitempty"` // percent, 25-100
	Size        *Dimensions `json:"size,omitempty"`
}

// IsImage returns true if the item is an image attachment.
func (m *MediaItem) IsImage() bool {
	return m.Type == MediaImage
}

// DisplayPercent returns the display size, defaulting to 100.
func (m *MediaItem) DisplayPercent() int {
	if m.DisplaySize == nil {
		return 100
	}
	return *m.DisplaySize
}
