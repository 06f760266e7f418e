// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"techblog/internal/apperr"
	"techblog/internal/models"
)

// attachmentPrefix is the key prefix for post attachments in the bucket.
const attachmentPrefix = "attachments/"

// ObjectStore is the slice of object storage the uploader needs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) error
	FileURL(bucket, key string) string
}

// File is one user-selected file.
type File struct {
	Name        string
	ContentType string // as declared by the client
	Size        int64  // as declared by the client; 0 if unknown
	Body        io.Reader
}

// Failure records a file that could not be attached.
type Failure struct {
	Name string
	Err  error
}

// Message is the notification shown for the failed file.
func (f Failure) Message() string {
	return "Failed to upload " + f.Name
}

// InlineFile is the result of an editor upload, ready to embed in content.
type InlineFile struct {
	URL     string
	Name    string
	IsImage bool
}

// Limits bounds upload sizes in bytes. Zero means unlimited.
type Limits struct {
	Attachment int64
	Inline     int64
}

// Uploader stores selected files in one bucket.
type Uploader struct {
	store  ObjectStore
	bucket string
	limits Limits
	now    func() time.Time
	suffix func() string
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithLimits sets the per-file size limits.
func WithLimits(l Limits) Option {
	return func(u *Uploader) { u.limits = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) { u.now = now }
}

// WithSuffix replaces the random id suffix generator, for tests.
func WithSuffix(fn func() string) Option {
	return func(u *Uploader) { u.suffix = fn }
}

// NewUploader returns an Uploader writing to bucket.
func NewUploader(store ObjectStore, bucket string, opts ...Option) *Uploader {
	u := &Uploader{
		store:  store,
		bucket: bucket,
		now:    time.Now,
		suffix: randomSuffix,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// AddFiles uploads files one after another, in the given order, and returns
// the list with an item appended for each success. A failed file is
// reported and skipped; the remaining files are still attempted.
func (u *Uploader) AddFiles(ctx context.Context, list Attachments, files []File) (Attachments, []Failure) {
	var failures []Failure
	for _, f := range files {
		item, err := u.attach(ctx, list, f)
		if err != nil {
			slog.Warn("attachment upload failed", "name", f.Name, "error", err)
			failures = append(failures, Failure{Name: f.Name, Err: err})
			continue
		}
		list = append(list, *item)
	}
	return list, failures
}

func (u *Uploader) attach(ctx context.Context, list Attachments, f File) (*models.MediaItem, error) {
	if u.store == nil {
		return nil, apperr.New(apperr.ErrRemote, "File storage is not configured")
	}
	data, err := readLimited(f, u.limits.Attachment)
	if err != nil {
		return nil, err
	}

	contentType := resolveContentType(f.ContentType, data)
	ext := extension(f.Name, contentType)

	id := u.newID(ext)
	base := strings.TrimSuffix(id, "."+ext)
	for n := 2; list.Contains(id); n++ {
		id = fmt.Sprintf("%s-%d.%s", base, n, ext)
	}
	key := attachmentPrefix + id

	if err := u.store.Upload(ctx, u.bucket, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, apperr.Remote("Failed to upload "+f.Name, err)
	}

	item := &models.MediaItem{
		ID:   id,
		URL:  u.store.FileURL(u.bucket, key),
		Type: models.ClassifyMediaType(contentType),
		Name: f.Name,
	}
	if item.IsImage() {
		item.Size = dimensions(data)
	}
	return item, nil
}

// UploadInline stores a file picked from the editor's upload dialog under
// the uploading user's prefix. The size limit is checked before anything
// is read or sent.
func (u *Uploader) UploadInline(ctx context.Context, userID uuid.UUID, f File) (*InlineFile, error) {
	if userID == uuid.Nil {
		return nil, apperr.New(apperr.ErrAuthRequired, "You must be logged in to upload files")
	}
	if u.store == nil {
		return nil, apperr.New(apperr.ErrRemote, "File storage is not configured")
	}
	data, err := readLimited(f, u.limits.Inline)
	if err != nil {
		return nil, err
	}

	contentType := resolveContentType(f.ContentType, data)
	key := fmt.Sprintf("%s/%d.%s", userID, u.now().UnixMilli(), extension(f.Name, contentType))

	if err := u.store.Upload(ctx, u.bucket, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, apperr.Remote("Failed to upload file", err)
	}

	return &InlineFile{
		URL:     u.store.FileURL(u.bucket, key),
		Name:    f.Name,
		IsImage: models.ClassifyMediaType(contentType) == models.MediaImage,
	}, nil
}

// readLimited reads the file body, rejecting it when the declared or
// actual size exceeds limit.
func readLimited(f File, limit int64) ([]byte, error) {
	tooLarge := apperr.New(apperr.ErrValidation, fmt.Sprintf("File size must be less than %s", humanLimit(limit)))
	if limit > 0 && f.Size > limit {
		return nil, tooLarge
	}
	if f.Body == nil {
		return nil, apperr.New(apperr.ErrValidation, "File is empty")
	}

	r := f.Body
	if limit > 0 {
		r = io.LimitReader(f.Body, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrValidation, "Could not read "+f.Name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, tooLarge
	}
	return data, nil
}

func humanLimit(limit int64) string {
	if limit >= 1<<20 && limit%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", limit>>20)
	}
	return fmt.Sprintf("%d bytes", limit)
}

func (u *Uploader) newID(ext string) string {
	return fmt.Sprintf("%d-%s.%s", u.now().UnixMilli(), u.suffix(), ext)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSuffix() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}
