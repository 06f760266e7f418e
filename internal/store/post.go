// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"techblog/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.category_id,
	p.cover_image, p.published, p.author_id, p.views, p.created_at, p.media_attachments`

// detailSelect joins the author profile and the optional category.
const detailSelect = `SELECT ` + postColumns + `,
	a.username, a.full_name, c.name, c.slug
	FROM posts p
	JOIN profiles a ON a.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

type rowScanner interface{ Scan(...any) error }

func scanPost(row rowScanner, extra ...any) (*models.Post, error) {
	var p models.Post
	var media []byte
	dest := append([]any{
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.CategoryID,
		&p.CoverImage, &p.Published, &p.AuthorID, &p.Views, &p.CreatedAt, &media,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := decodeMedia(media, &p.MediaAttachments); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanDetail(row rowScanner) (*models.PostDetail, error) {
	var (
		d       models.PostDetail
		catName sql.NullString
		catSlug sql.NullString
	)
	p, err := scanPost(row, &d.Author.Username, &d.Author.FullName, &catName, &catSlug)
	if err != nil {
		return nil, err
	}
	d.Post = *p
	if catName.Valid {
		d.Category = &models.CategoryRef{Name: catName.String, Slug: catSlug.String}
	}
	return &d, nil
}

func decodeMedia(raw []byte, dst *[]models.MediaItem) error {
	*dst = []models.MediaItem{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode media_attachments: %w", err)
	}
	return nil
}

func encodeMedia(items []models.MediaItem) (string, error) {
	if items == nil {
		items = []models.MediaItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode media_attachments: %w", err)
	}
	return string(b), nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindDetail retrieves a post with its author and category. Returns nil if
// not found.
func (s *PostStore) FindDetail(ctx context.Context, id uuid.UUID) (*models.PostDetail, error) {
	row := s.db.QueryRowContext(ctx, detailSelect+` WHERE p.id = $1`, id)
	d, err := scanDetail(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post detail: %w", err)
	}
	return d, nil
}

// ListPublished returns published posts, newest first. A non-empty
// categorySlug restricts the list to that category.
func (s *PostStore) ListPublished(ctx context.Context, categorySlug string) ([]models.PostDetail, error) {
	query := detailSelect + ` WHERE p.published = TRUE`
	var args []any
	if categorySlug != "" {
		query += ` AND c.slug = $1`
		args = append(args, categorySlug)
	}
	query += ` ORDER BY p.created_at DESC`
	return s.listDetails(ctx, "list published posts", query, args...)
}

// ListByAuthor returns every post of an author, published or not, newest first.
func (s *PostStore) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.PostDetail, error) {
	return s.listDetails(ctx, "list posts by author",
		detailSelect+` WHERE p.author_id = $1 ORDER BY p.created_at DESC`, authorID)
}

func (s *PostStore) listDetails(ctx context.Context, op, query string, args ...any) ([]models.PostDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.PostDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// Create inserts a new post and returns it with the generated ID.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	media, err := encodeMedia(p.MediaAttachments)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts AS p (title, slug, content, excerpt, category_id, cover_image,
		                        published, author_id, media_attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryID, p.CoverImage,
		p.Published, p.AuthorID, media,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update writes the editable fields of an existing post. Views, author and
// creation time are left alone. Returns false when no row matched.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (bool, error) {
	media, err := encodeMedia(p.MediaAttachments)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, content = $3, excerpt = $4, category_id = $5,
			cover_image = $6, published = $7, media_attachments = $8
		WHERE id = $9
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryID,
		p.CoverImage, p.Published, media, p.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	return n > 0, nil
}

// Delete removes a post by ID.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Views reads the current view counter of a post.
func (s *PostStore) Views(ctx context.Context, id uuid.UUID) (int, error) {
	var views int
	err := s.db.QueryRowContext(ctx, `SELECT views FROM posts WHERE id = $1`, id).Scan(&views)
	if err != nil {
		return 0, fmt.Errorf("read views: %w", err)
	}
	return views, nil
}

// SetViews overwrites the view counter. Paired with Views this is a plain
// read-then-write; concurrent viewers can under-count.
func (s *PostStore) SetViews(ctx context.Context, id uuid.UUID, views int) error {
	_, err := s.db.ExecContext(ctx, `UPDATE posts SET views = $1 WHERE id = $2`, views, id)
	if err != nil {
		return fmt.Errorf("write views: %w", err)
	}
	return nil
}
