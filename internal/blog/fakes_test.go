package blog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"techblog/internal/identity"
	"techblog/internal/media"
	"techblog/internal/models"
)

var errBackend = errors.New("backend unavailable")

// memPosts is an in-memory PostRepository that counts calls.
type memPosts struct {
	mu        sync.Mutex
	posts     map[uuid.UUID]*models.Post
	profiles  map[uuid.UUID]models.AuthorRef
	cats      map[uuid.UUID]models.Category
	calls     int
	failWrite error
	failViews error
	// onWrite runs before Create and Update touch the map.
	onWrite func()
}

func newMemPosts() *memPosts {
	return &memPosts{
		posts:    map[uuid.UUID]*models.Post{},
		profiles: map[uuid.UUID]models.AuthorRef{},
		cats:     map[uuid.UUID]models.Category{},
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
	return &p
}

func (m *memPosts) detail(p *models.Post) models.PostDetail {
	d := models.PostDetail{Post: *p, Author: m.profiles[p.AuthorID]}
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
	m.calls++
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
	m.calls++
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
	m.calls++
	return m.list(func(p *models.Post) bool {
		if !p.Published {
			return false
		}
		if categorySlug == "" {
			return true
		}
		return p.CategoryID != nil && m.cats[*p.CategoryID].Slug == categorySlug
	}), nil
}

func (m *memPosts) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]models.PostDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.list(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (m *memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	if m.onWrite != nil {
		m.onWrite()
	}
	m.mu.Lock()
	m.calls++
	fail := m.failWrite
	m.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return m.add(*p), nil
}

func (m *memPosts) Update(_ context.Context, p *models.Post) (bool, error) {
	if m.onWrite != nil {
		m.onWrite()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failWrite != nil {
		return false, m.failWrite
	}
	old, ok := m.posts[p.ID]
	if !ok {
		return false, nil
	}
	cp := *p
	cp.Views = old.Views
	cp.CreatedAt = old.CreatedAt
	cp.AuthorID = old.AuthorID
	m.posts[p.ID] = &cp
	return true, nil
}

func (m *memPosts) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failWrite != nil {
		return m.failWrite
	}
	delete(m.posts, id)
	return nil
}

func (m *memPosts) Views(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	p, ok := m.posts[id]
	if !ok {
		return 0, errors.New("no rows")
	}
	return p.Views, nil
}

func (m *memPosts) SetViews(_ context.Context, id uuid.UUID, views int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failViews != nil {
		return m.failViews
	}
	if p, ok := m.posts[id]; ok {
		p.Views = views
	}
	return nil
}

func (m *memPosts) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

func (m *memPosts) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// memCategories serves the categories of a memPosts.
type memCategories struct{ m *memPosts }

func (c memCategories) List(context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, cat := range c.m.cats {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	cat, ok := c.m.cats[id]
	if !ok {
		return nil, nil
	}
	return &cat, nil
}

// memDrafts stores drafts as JSON, as Valkey would, and fails on a done
// context the way a network client does.
type memDrafts struct {
	mu     sync.Mutex
	data   map[string][]byte
	claims map[string]bool
	saves  int
}

func newMemDrafts() *memDrafts {
	return &memDrafts{data: map[string][]byte{}, claims: map[string]bool{}}
}

func (m *memDrafts) Save(ctx context.Context, id string, d *Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = b
	m.saves++
	return nil
}

func (m *memDrafts) Load(ctx context.Context, id string) (*Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	b, ok := m.data[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var d Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (m *memDrafts) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memDrafts) Claim(ctx context.Context, id string, _ time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims[id] {
		return false, nil
	}
	m.claims[id] = true
	return true, nil
}

func (m *memDrafts) Release(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, id)
	return nil
}

func (m *memDrafts) claimed(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims[id]
}

func (m *memDrafts) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// memBodies is a BodyCache keyed like the Valkey one. It records
// invalidations, and onMiss runs between a miss and the following Set.
type memBodies struct {
	data        map[string]string
	invalidated []uuid.UUID
	onMiss      func()
}

func newMemBodies() *memBodies {
	return &memBodies{data: map[string]string{}}
}

func bodyKey(id uuid.UUID, content string) string {
	return id.String() + "\x00" + content
}

func (b *memBodies) Get(_ context.Context, id uuid.UUID, content string) (string, bool) {
	v, ok := b.data[bodyKey(id, content)]
	if !ok && b.onMiss != nil {
		hook := b.onMiss
		b.onMiss = nil
		hook()
	}
	return v, ok
}

func (b *memBodies) Set(_ context.Context, id uuid.UUID, content, html string) {
	b.data[bodyKey(id, content)] = html
}

func (b *memBodies) Invalidate(_ context.Context, id uuid.UUID) {
	prefix := id.String() + "\x00"
	for k := range b.data {
		if strings.HasPrefix(k, prefix) {
			delete(b.data, k)
		}
	}
	b.invalidated = append(b.invalidated, id)
}

// stubUploader attaches files without storage. Names in fail are rejected.
type stubUploader struct {
	fail    map[string]bool
	inlined []string
}

func (s *stubUploader) AddFiles(_ context.Context, list media.Attachments, files []media.File) (media.Attachments, []media.Failure) {
	var failures []media.Failure
	for _, f := range files {
		if s.fail[f.Name] {
			failures = append(failures, media.Failure{Name: f.Name, Err: errBackend})
			continue
		}
		list = append(list, models.MediaItem{
			ID:   uuid.NewString() + "-" + f.Name,
			URL:  "https://cdn.test/" + f.Name,
			Type: models.ClassifyMediaType(f.ContentType),
			Name: f.Name,
		})
	}
	return list, failures
}

func (s *stubUploader) UploadInline(_ context.Context, userID uuid.UUID, f media.File) (*media.InlineFile, error) {
	if f.Body != nil {
		io.Copy(io.Discard, f.Body)
	}
	s.inlined = append(s.inlined, f.Name)
	return &media.InlineFile{
		URL:     "https://cdn.test/" + userID.String() + "/" + f.Name,
		Name:    f.Name,
		IsImage: models.ClassifyMediaType(f.ContentType) == models.MediaImage,
	}, nil
}

// fixture wires the flows over in-memory fakes.
type fixture struct {
	posts    *memPosts
	drafts   *memDrafts
	bodies   *memBodies
	uploader *stubUploader
	author   *identity.User
	other    *identity.User
	category models.Category
}

func newFixture() *fixture {
	f := &fixture{
		posts:    newMemPosts(),
		drafts:   newMemDrafts(),
		bodies:   newMemBodies(),
		uploader: &stubUploader{fail: map[string]bool{}},
		author:   &identity.User{ID: uuid.New(), Email: "author@test.local", Username: "author"},
		other:    &identity.User{ID: uuid.New(), Email: "other@test.local", Username: "other"},
		category: models.Category{ID: uuid.New(), Name: "Databases", Slug: "databases"},
	}
	f.posts.profiles[f.author.ID] = models.AuthorRef{Username: "author"}
	f.posts.profiles[f.other.ID] = models.AuthorRef{Username: "other"}
	f.posts.cats[f.category.ID] = f.category
	return f
}

func (f *fixture) authoring(format Format) *Authoring {
	return NewAuthoring(f.posts, memCategories{f.posts}, f.drafts, f.uploader, format, WithBodyCache(f.bodies))
}

func (f *fixture) presentation(format Format) *Presentation {
	return NewPresentation(f.posts, format, f.bodies)
}
