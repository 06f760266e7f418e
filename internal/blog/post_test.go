package blog

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techblog/internal/media"
	"techblog/internal/models"
)

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("abcdefghij", 30) // 300 chars

	tests := []struct {
		name    string
		excerpt string
		content string
		want    string
	}{
		{"explicit kept", "My summary", long, "My summary"},
		{"long content truncated", "", long, long[:200] + "..."},
		{"blank excerpt and content", "", "", "..."},
		{"whitespace excerpt falls back", "   ", "short", "short..."},
		{"short content", "", "tiny post", "tiny post..."},
		{"exactly 200", "", long[:200], long[:200] + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.excerpt, tt.content))
		})
	}
}

func TestExcerptCountsCharactersNotBytes(t *testing.T) {
	content := strings.Repeat("é", 250)
	got := Excerpt("", content)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 203, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestCoverImage(t *testing.T) {
	atts := media.Attachments{
		{ID: "1", URL: "https://cdn.test/doc.pdf", Type: models.MediaDocument},
		{ID: "2", URL: "https://cdn.test/first.png", Type: models.MediaImage},
		{ID: "3", URL: "https://cdn.test/second.png", Type: models.MediaImage},
	}

	got := CoverImage("https://img.test/explicit.jpg", atts)
	require.NotNil(t, got)
	assert.Equal(t, "https://img.test/explicit.jpg", *got)

	got = CoverImage("", atts)
	require.NotNil(t, got)
	assert.Equal(t, "https://cdn.test/first.png", *got)

	assert.Nil(t, CoverImage("", atts[:1]))
	assert.Nil(t, CoverImage("  ", nil))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "hello-world", Slug("Hello, World!"))
}

func TestValidateForm(t *testing.T) {
	assert.Equal(t, "Title is required.", validateForm(Form{Title: "  "}))
	assert.Equal(t, "", validateForm(Form{Title: "Ok"}))
	assert.Equal(t, "Cover image must be an http or https URL.",
		validateForm(Form{Title: "Ok", CoverImage: "javascript:alert(1)"}))
	assert.Equal(t, "Title is too long (max 300 characters).",
		validateForm(Form{Title: strings.Repeat("x", 301)}))
}
