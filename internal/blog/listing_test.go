package blog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techblog/internal/apperr"
	"techblog/internal/models"
)

func TestHomeListsPublishedNewestFirst(t *testing.T) {
	f := newFixture()
	now := time.Now()
	f.posts.add(models.Post{Title: "old", Published: true, AuthorID: f.author.ID, CreatedAt: now.Add(-time.Hour)})
	f.posts.add(models.Post{Title: "new", Published: true, AuthorID: f.other.ID, CreatedAt: now, CategoryID: &f.category.ID})
	f.posts.add(models.Post{Title: "draft", Published: false, AuthorID: f.author.ID, CreatedAt: now})

	l := NewListing(f.posts, memCategories{f.posts})
	page, err := l.Home(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "new", page.Posts[0].Title)
	assert.Equal(t, "old", page.Posts[1].Title)
	require.Len(t, page.Categories, 1)

	page, err = l.Home(context.Background(), "databases")
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "new", page.Posts[0].Title)
	assert.Equal(t, "databases", page.Category)
}

func TestProfileStats(t *testing.T) {
	f := newFixture()
	f.posts.add(models.Post{Title: "a", Published: true, Views: 10, AuthorID: f.author.ID})
	f.posts.add(models.Post{Title: "b", Published: false, Views: 2, AuthorID: f.author.ID})
	f.posts.add(models.Post{Title: "c", Published: true, Views: 99, AuthorID: f.other.ID})

	l := NewListing(f.posts, memCategories{f.posts})
	page, err := l.Profile(context.Background(), f.author)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, models.PostStats{Posts: 2, Published: 1, Views: 12}, page.Stats)

	_, err = l.Profile(context.Background(), nil)
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)
}
