// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler
// tests: in-memory repositories behind the real blog flows, a real uploader
// over an in-memory object store, and fake sessions and accounts.
package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"techblog/internal/apperr"
	"techblog/internal/blog"
	"techblog/internal/identity"
	"techblog/internal/media"
	"techblog/internal/middleware"
	"techblog/internal/models"
	"techblog/internal/render"
	"techblog/internal/session"
)

// memPosts is an in-memory blog.PostRepository.
type memPosts struct {
	mu       sync.Mutex
	posts    map[uuid.UUID]*models.Post
	authors  map[uuid.UUID]models.AuthorRef
	cats     map[uuid.UUID]models.Category
	failList error
}

func newMemPosts() *memPosts {
	return &memPosts{
		posts:   map[uuid.UUID]*models.Post{},
		authors: map[uuid.UUID]models.AuthorRef{},
		cats:    map[uuid.UUID]models.Category{},
	}
}

func (m *memPosts) add(p models.Post) *models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	m.posts[p.ID] = &p
	cp := p
	return &cp
}

func (m *memPosts) detail(p *models.Post) models.PostDetail {
	d := models.PostDetail{Post: *p, Author: m.authors[p.AuthorID]}
	if p.CategoryID != nil {
		if c, ok := m.cats[*p.CategoryID]; ok {
			d.Category = &models.CategoryRef{Name: c.Name, Slug: c.Slug}
		}
	}
	return d
}

func (m *memPosts) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memPosts) FindDetail(_ context.Context, id uuid.UUID) (*models.PostDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	d := m.detail(p)
	return &d, nil
}

func (m *memPosts) list(keep func(*models.Post) bool) []models.PostDetail {
	var out []models.PostDetail
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, m.detail(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memPosts) ListPublished(_ context.Context, categorySlug string) ([]models.PostDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	return m.list(func(p *models.Post) bool {
		if !p.Published {
			return false
		}
		return categorySlug == "" || (p.CategoryID != nil && m.cats[*p.CategoryID].Slug == categorySlug)
	}), nil
}

func (m *memPosts) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]models.PostDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (m *memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	return m.add(*p), nil
}

func (m *memPosts) Update(_ context.Context, p *models.Post) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.ID]; !ok {
		return false, nil
	}
	cp := *p
	m.posts[p.ID] = &cp
	return true, nil
}

func (m *memPosts) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return nil
}

func (m *memPosts) Views(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		return p.Views, nil
	}
	return 0, nil
}

func (m *memPosts) SetViews(_ context.Context, id uuid.UUID, views int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		p.Views = views
	}
	return nil
}

func (m *memPosts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

// memCategories serves the categories of a memPosts.
type memCategories struct{ m *memPosts }

func (c memCategories) List(context.Context) ([]models.Category, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	var out []models.Category
	for _, cat := range c.m.cats {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	cat, ok := c.m.cats[id]
	if !ok {
		return nil, nil
	}
	return &cat, nil
}

// memDrafts stores drafts as JSON, the way the Valkey store does.
type memDrafts struct {
	mu     sync.Mutex
	data   map[string][]byte
	claims map[string]bool
}

func (m *memDrafts) Save(_ context.Context, id string, d *blog.Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = b
	return nil
}

func (m *memDrafts) Load(_ context.Context, id string) (*blog.Draft, error) {
	m.mu.Lock()
	b, ok := m.data[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var d blog.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (m *memDrafts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memDrafts) Claim(_ context.Context, id string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims[id] {
		return false, nil
	}
	m.claims[id] = true
	return true, nil
}

func (m *memDrafts) Release(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, id)
	return nil
}

func (m *memDrafts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// memObjects is an in-memory media.ObjectStore.
type memObjects struct {
	mu   sync.Mutex
	keys []string
}

func (s *memObjects) Upload(_ context.Context, bucket, key, contentType string, body io.Reader, size int64) error {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return nil
}

func (s *memObjects) FileURL(bucket, key string) string {
	return "https://cdn.test/" + bucket + "/" + key
}

// fakeSessions records created and destroyed sessions.
type fakeSessions struct {
	created   []*session.Data
	destroyed int
	failWith  error
}

func (s *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	if s.failWith != nil {
		return "", s.failWith
	}
	s.created = append(s.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sess-1", Path: "/"})
	return "sess-1", nil
}

func (s *fakeSessions) Destroy(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	s.destroyed++
	return s.failWith
}

// fakeAccount is one registered account in fakeUsers.
type fakeAccount struct {
	user     identity.User
	password string
}

// fakeUsers is an in-memory Accounts.
type fakeUsers struct {
	mu       sync.Mutex
	accounts map[string]*fakeAccount
}

func (f *fakeUsers) register(email, password, username string) *identity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &fakeAccount{user: identity.User{ID: uuid.New(), Email: email, Username: username}, password: password}
	f.accounts[email] = a
	u := a.user
	return &u
}

func (f *fakeUsers) SignIn(_ context.Context, email, password string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || a.password != password {
		return nil, apperr.New(apperr.ErrAuthRequired, "Invalid email or password")
	}
	u := a.user
	return &u, nil
}

func (f *fakeUsers) SignUp(_ context.Context, in identity.SignUpInput) (*identity.User, error) {
	if len(in.Password) < 6 {
		return nil, apperr.New(apperr.ErrValidation, "Password must be at least 6 characters.")
	}
	f.mu.Lock()
	_, taken := f.accounts[in.Email]
	f.mu.Unlock()
	if taken {
		return nil, apperr.New(apperr.ErrValidation, "An account with this email already exists")
	}
	return f.register(in.Email, in.Password, in.Username), nil
}

func (f *fakeUsers) Lookup(_ context.Context, id uuid.UUID) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.user.ID == id {
			u := a.user
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) remove(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accounts, email)
}

// testLimits are small enough to exceed in a test.
var testLimits = media.Limits{Attachment: 4 << 10, Inline: 4 << 10}

// testEnv holds every handler group over shared fakes.
type testEnv struct {
	Posts    *memPosts
	Drafts   *memDrafts
	Objects  *memObjects
	Users    *fakeUsers
	Sessions *fakeSessions
	Tokens   *identity.Tokens
	Author   *identity.User
	Other    *identity.User
	Category models.Category

	Authoring *blog.Authoring
	Auth      *Auth
	Public    *Public
	Editor    *Drafts
	API       *API
}

// newTestEnv wires the handlers for the given content mode.
func newTestEnv(t *testing.T, mode string) *testEnv {
	t.Helper()

	renderer, err := render.New("TechBlog")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	env := &testEnv{
		Posts:    newMemPosts(),
		Drafts:   &memDrafts{data: map[string][]byte{}, claims: map[string]bool{}},
		Objects:  &memObjects{},
		Users:    &fakeUsers{accounts: map[string]*fakeAccount{}},
		Sessions: &fakeSessions{},
		Tokens:   identity.NewTokens("handler-test-secret", time.Hour),
		Category: models.Category{ID: uuid.New(), Name: "Databases", Slug: "databases"},
	}
	env.Author = env.Users.register("author@techblog.local", "correct-horse", "author")
	env.Other = env.Users.register("other@techblog.local", "battery-staple", "other")
	env.Posts.authors[env.Author.ID] = models.AuthorRef{Username: "author"}
	env.Posts.authors[env.Other.ID] = models.AuthorRef{Username: "other"}
	env.Posts.cats[env.Category.ID] = env.Category

	format := blog.FormatFor(mode)
	uploader := media.NewUploader(env.Objects, "techblog-test", media.WithLimits(testLimits))
	categories := memCategories{env.Posts}
	listing := blog.NewListing(env.Posts, categories)
	presentation := blog.NewPresentation(env.Posts, format, nil)
	env.Authoring = blog.NewAuthoring(env.Posts, categories, env.Drafts, uploader, format)

	env.Auth = NewAuth(renderer, env.Sessions, env.Users)
	env.Public = NewPublic(renderer, listing, presentation)
	env.Editor = NewDrafts(renderer, env.Authoring, listing, testLimits)
	env.API = NewAPI(env.Users, env.Tokens, listing)
	return env
}

// publishedPost stores a published post by the env's author.
func (env *testEnv) publishedPost(title, content string) *models.Post {
	return env.Posts.add(models.Post{
		Title:      title,
		Slug:       blog.Slug(title),
		Content:    content,
		Excerpt:    blog.Excerpt("", content),
		CategoryID: &env.Category.ID,
		Published:  true,
		AuthorID:   env.Author.ID,
	})
}

// startDraft opens a new-post draft for the author.
func (env *testEnv) startDraft(t *testing.T) *blog.Draft {
	t.Helper()
	d, err := env.Authoring.Start(context.Background(), env.Author)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return d
}

func (env *testEnv) draft(t *testing.T, id string) *blog.Draft {
	t.Helper()
	d, err := env.Drafts.Load(context.Background(), id)
	if err != nil || d == nil {
		t.Fatalf("load draft %s: %v", id, err)
	}
	return d
}

// asUser puts u in the request context the way the auth middleware does.
func asUser(r *http.Request, u *identity.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

// withChiURLParams adds chi URL parameters, given as key/value pairs.
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// formPost builds a urlencoded POST.
func formPost(target string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// upload is one file part of a multipart request.
type upload struct {
	field       string
	name        string
	contentType string
	data        []byte
}

// multipartPost builds a multipart POST with the given fields and files.
func multipartPost(t *testing.T, target string, values url.Values, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, vals := range values {
		for _, v := range vals {
			if err := mw.WriteField(key, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(f.data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, target, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

// pngBytes encodes a blank image of the given size.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// flashes decodes the flash cookie a response set.
func flashes(t *testing.T, rr *httptest.ResponseRecorder) []render.Flash {
	t.Helper()
	var value string
	for _, c := range rr.Result().Cookies() {
		if c.Name == render.FlashCookieName {
			value = c.Value
		}
	}
	if value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		t.Fatalf("decode flash cookie: %v", err)
	}
	var out []render.Flash
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal flash cookie: %v", err)
	}
	return out
}

// hasFlash reports whether the response queued msg with the given type.
func hasFlash(t *testing.T, rr *httptest.ResponseRecorder, kind, msg string) bool {
	t.Helper()
	for _, f := range flashes(t, rr) {
		if f.Type == kind && f.Message == msg {
			return true
		}
	}
	return false
}

// assertRedirect checks for a 303 to want.
func assertRedirect(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303 (body %q)", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != want {
		t.Errorf("Location: got %q, want %q", loc, want)
	}
}

// decodeJSON unmarshals a response body into v.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode json %q: %v", rr.Body.String(), err)
	}
}
