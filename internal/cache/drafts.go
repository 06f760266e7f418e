// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix = "draft:"
	claimKeyPrefix = "draft-submit:"

	// DefaultDraftTTL bounds how long an abandoned authoring session lives.
	DefaultDraftTTL = 24 * time.Hour
)

// DraftStore keeps authoring sessions as JSON in Valkey. Every Save resets
// the TTL, so a draft expires a full TTL after its last change.
type DraftStore[T any] struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftStore creates a draft store. A zero ttl selects DefaultDraftTTL.
func NewDraftStore[T any](client *redis.Client, ttl time.Duration) *DraftStore[T] {
	if ttl == 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore[T]{client: client, ttl: ttl}
}

// Save writes the draft under id.
func (s *DraftStore[T]) Save(ctx context.Context, id string, v *T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("draft marshal: %w", err)
	}
	if err := s.client.Set(ctx, draftKeyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("draft save: %w", err)
	}
	return nil
}

// Load reads the draft under id. Returns nil if it is missing or expired.
func (s *DraftStore[T]) Load(ctx context.Context, id string) (*T, error) {
	payload, err := s.client.Get(ctx, draftKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft load: %w", err)
	}
	v := new(T)
	if err := json.Unmarshal(payload, v); err != nil {
		return nil, fmt.Errorf("draft unmarshal: %w", err)
	}
	return v, nil
}

// Delete removes the draft under id.
func (s *DraftStore[T]) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("draft delete: %w", err)
	}
	return nil
}

// Claim sets the submit marker of a draft unless it is already set. The
// marker expires after ttl so a crashed submit cannot hold it forever.
func (s *DraftStore[T]) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, claimKeyPrefix+id, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("draft claim: %w", err)
	}
	return ok, nil
}

// Release clears the submit marker of a draft.
func (s *DraftStore[T]) Release(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, claimKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("draft release: %w", err)
	}
	return nil
}
