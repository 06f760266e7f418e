// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// body.go caches the rendered HTML of post bodies. Rendering Markdown with
// syntax highlighting, or re-parsing rich-text markup, is the expensive part
// of a post view. Entries are keyed by post and content digest, so a body
// rendered from an older revision is never served for a newer one.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	bodyKeyPrefix = "body:"

	// DefaultBodyTTL is how long a rendered body stays cached.
	DefaultBodyTTL = time.Hour
)

// BodyCache stores rendered post bodies in Valkey under
// body:<post id>:<content digest>.
type BodyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBodyCache creates a body cache. A zero ttl selects DefaultBodyTTL.
func NewBodyCache(client *redis.Client, ttl time.Duration) *BodyCache {
	if ttl == 0 {
		ttl = DefaultBodyTTL
	}
	return &BodyCache{client: client, ttl: ttl}
}

func postBodyPrefix(id uuid.UUID) string {
	return bodyKeyPrefix + id.String() + ":"
}

func bodyKey(id uuid.UUID, content string) string {
	sum := sha256.Sum256([]byte(content))
	return postBodyPrefix(id) + hex.EncodeToString(sum[:8])
}

// Get returns the body rendered from this exact content. Errors count as a
// miss.
func (c *BodyCache) Get(ctx context.Context, id uuid.UUID, content string) (string, bool) {
	val, err := c.client.Get(ctx, bodyKey(id, content)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		slog.Warn("body cache get error", "post", id, "error", err)
		return "", false
	}
	slog.Debug("body cache hit", "post", id)
	return val, true
}

// Set stores the body rendered from content.
func (c *BodyCache) Set(ctx context.Context, id uuid.UUID, content, html string) {
	if err := c.client.Set(ctx, bodyKey(id, content), html, c.ttl).Err(); err != nil {
		slog.Warn("body cache set error", "post", id, "error", err)
	}
}

// Invalidate drops every cached revision of one post.
func (c *BodyCache) Invalidate(ctx context.Context, id uuid.UUID) {
	deleteByPrefix(ctx, c.client, postBodyPrefix(id))
}

// InvalidateAll drops every cached body. Called at startup so a change of
// content mode or renderer never serves stale output.
func (c *BodyCache) InvalidateAll(ctx context.Context) {
	if n := deleteByPrefix(ctx, c.client, bodyKeyPrefix); n > 0 {
		slog.Info("body cache cleared", "deleted", n)
	}
}
