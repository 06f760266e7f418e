// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"techblog/internal/blog"
	"techblog/internal/config"
	"techblog/internal/models"
	"techblog/internal/render"
)

func TestHomeListsPublishedPosts(t *testing.T) {
	env := newTestEnv(t, config.ModeMarkdown)
	env.publishedPost("Replication lag", "Followers fall behind.")
	env.Posts.add(models.Post{Title: "Secret draft", AuthorID: env.Author.ID})

	rr := httptest.NewRecorder()
	env.Public.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Replication lag") {
		t.Error("home should list the published post")
	}
	if strings.Contains(body, "Secret draft") {
		t.Error("home should not list unpublished posts")
	}
}

func TestHomeJSONFiltersByCategory(t *testing.T) {
	env := newTestEnv(t, config.ModeMarkdown)
	env.publishedPost("Replication lag", "Followers fall behind.")

	tests := []struct {
		category string
		want     int
	}{
		{"", 1},
		{"databases", 1},
		{"frontend", 0},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/posts?category="+tt.category, nil)
		rr := httptest.NewRecorder()
		env.Public.Home(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("category %q: status %d", tt.category, rr.Code)
		}
		var page blog.HomePage
		decodeJSON(t, rr, &page)
		if len(page.Posts) != tt.want {
			t.Errorf("category %q: got %d posts, want %d", tt.category, len(page.Posts), tt.want)
		}
		if len(page.Categories) != 1 {
			t.Errorf("category %q: got %d categories", tt.category, len(page.Categories))
		}
	}
}

func TestHomeFailureRendersInPlace(t *testing.T) {
	env := newTestEnv(t, config.ModeMarkdown)
	env.Posts.failList = errors.New("connection refused")

	rr := httptest.NewRecorder()
	env.Public.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Failed to load posts") {
		t.Error("error page should name the failure")
	}
}

func TestPostPage(t *testing.T) {
	env := newTestEnv(t, config.ModeMarkdown)
	post := env.publishedPost("Vacuum", "Dead tuples **pile up**.")

	req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/post/x", nil), "id", post.ID.String())
	rr := httptest.NewRecorder()
	env.Public.Post(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<strong>pile up</strong>") {
		t.Error("post body should be rendered from Markdown")
	}
	if stored, _ := env.Posts.FindByID(req.Context(), post.ID); stored.Views != 1 {
		t.Errorf("views: got %d, want 1", stored.Views)
	}
}

func TestPostNotFound(t *testing.T) {
	env := newTestEnv(t, config.ModeMarkdown)
	hidden := env.Posts.add(models.Post{Title: "Unpublished", AuthorID: env.Author.ID})

	for _, id := range []string{"nope", hidden.ID.String()} {
		req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/post/x", nil), "id", id)
		rr := httptest.NewRecorder()
		env.Public.Post(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("id %s: got %d, want 404", id, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Post not found") {
			t.Errorf("id %s: error page should say the post is missing", id)
		}
	}
}

func TestPostJSONForAuthor(t *testing.T) {
	env := newTestEnv(t, config.ModeMarkdown)
	post := env.publishedPost("Vacuum", "Dead tuples.")

	req := withChiURLParams(asUser(httptest.NewRequest(http.MethodGet, "/api/posts/x", nil), env.Author), "id", post.ID.String())
	rr := httptest.NewRecorder()
	env.Public.Post(rr, req)

	var got struct {
		ID       string `json:"id"`
		HTML     string `json:"html"`
		IsAuthor bool   `json:"is_author"`
		Author   struct {
			Username string `json:"username"`
		} `json:"author"`
	}
	decodeJSON(t, rr, &got)
	if got.ID != post.ID.String() || !got.IsAuthor || got.Author.Username != "author" {
		t.Errorf("post: %+v", got)
	}
	if !strings.Contains(got.HTML, "<p>Dead tuples.</p>") {
		t.Errorf("html: %q", got.HTML)
	}
}

func TestDeleteFlow(t *testing.T) {
	env := newTestEnv(t, config.ModeMarkdown)
	post := env.publishedPost("Vacuum", "Dead tuples.")
	path := "/post/" + post.ID.String()

	t.Run("confirmation page for the author", func(t *testing.T) {
		req := withChiURLParams(asUser(httptest.NewRequest(http.MethodGet, path+"/delete", nil), env.Author), "id", post.ID.String())
		rr := httptest.NewRecorder()
		env.Public.DeletePage(rr, req)

		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Vacuum") {
			t.Errorf("status %d, body %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("other users are refused", func(t *testing.T) {
		req := withChiURLParams(asUser(formPost(path+"/delete", url.Values{"confirm": {"yes"}}), env.Other), "id", post.ID.String())
		rr := httptest.NewRecorder()
		env.Public.Delete(rr, req)

		assertRedirect(t, rr, path)
		if !hasFlash(t, rr, render.FlashError, "You don't have permission to delete this post") {
			t.Errorf("flashes: %+v", flashes(t, rr))
		}
		if env.Posts.count() != 1 {
			t.Error("post should still exist")
		}
	})

	t.Run("declining keeps the post", func(t *testing.T) {
		req := withChiURLParams(asUser(formPost(path+"/delete", url.Values{"confirm": {"no"}}), env.Author), "id", post.ID.String())
		rr := httptest.NewRecorder()
		env.Public.Delete(rr, req)

		assertRedirect(t, rr, path)
		if env.Posts.count() != 1 {
			t.Error("post should still exist")
		}
	})

	t.Run("author confirms", func(t *testing.T) {
		req := withChiURLParams(asUser(formPost(path+"/delete", url.Values{"confirm": {"yes"}}), env.Author), "id", post.ID.String())
		rr := httptest.NewRecorder()
		env.Public.Delete(rr, req)

		if rr.Code != http.StatusSeeOther {
			t.Fatalf("status: got %d", rr.Code)
		}
		if !hasFlash(t, rr, render.FlashSuccess, "Post deleted successfully") {
			t.Errorf("flashes: %+v", flashes(t, rr))
		}
		if env.Posts.count() != 0 {
			t.Error("post should be gone")
		}
	})
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t, config.ModeMarkdown)
	env.publishedPost("Vacuum", "Dead tuples.")

	t.Run("anonymous visitors sign in first", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.Public.Profile(rr, httptest.NewRequest(http.MethodGet, "/profile", nil))
		assertRedirect(t, rr, "/auth")
	})

	t.Run("author sees own posts", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.Public.Profile(rr, asUser(httptest.NewRequest(http.MethodGet, "/profile", nil), env.Author))
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Vacuum") {
			t.Error("profile should list the author's post")
		}
	})

	t.Run("json", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodGet, "/api/profile", nil), env.Other)
		rr := httptest.NewRecorder()
		env.Public.Profile(rr, req)

		var page blog.ProfilePage
		decodeJSON(t, rr, &page)
		if len(page.Posts) != 0 || page.Stats.Posts != 0 {
			t.Errorf("other user's profile: %+v", page)
		}
	})
}
