// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store, so no external services are
// needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/store/memory"
	"blogapi/internal/token"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Store    *memory.Store
	Tokens   *token.Manager
	Cache    *fakeListCache
	Auth     *Auth
	Posts    *Posts
	Comments *Comments
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := memory.New()
	tokens, err := token.NewManager("handler-test-secret", time.Hour, token.NewMemoryDenylist())
	if err != nil {
		t.Fatalf("token.NewManager: %v", err)
	}
	lc := newFakeListCache()

	return &testEnv{
		Store:    st,
		Tokens:   tokens,
		Cache:    lc,
		Auth:     NewAuth(st.Users(), tokens),
		Posts:    NewPosts(st.Posts(), st.Comments(), lc),
		Comments: NewComments(st.Posts(), st.Comments()),
	}
}

// user creates a user with the given roles.
func (e *testEnv) user(t *testing.T, name, email string, roles ...models.Role) *models.User {
	t.Helper()
	u, err := e.Store.Users().Create(name, email, "secret123", roles...)
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// post creates a post owned by author.
func (e *testEnv) post(t *testing.T, author *models.User, title, category string) *models.Post {
	t.Helper()
	p, err := e.Store.Posts().Create(&models.Post{
		Title:    title,
		Content:  "Content of " + title,
		Category: category,
		AuthorID: author.ID,
	})
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return p
}

// jsonRequest builds a request with body encoded as JSON. A string body is
// sent verbatim.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withActor attaches an authenticated user to the request, as the
// Authenticate middleware would.
func withActor(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ActorKey, u))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody unmarshals a recorded response body.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

// assertStatus fails the test when the recorded status differs.
func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, want, strings.TrimSpace(rr.Body.String()))
	}
}

// fakeListCache is an in-process ListCache that counts invalidations.
type fakeListCache struct {
	mu          sync.Mutex
	gen         int64
	entries     map[string][]byte
	invalidated int
}

func newFakeListCache() *fakeListCache {
	return &fakeListCache{entries: make(map[string][]byte)}
}

func (c *fakeListCache) Generation(context.Context) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, true
}

func (c *fakeListCache) Get(_ context.Context, gen int64, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[fakeKey(gen, key)]
	return b, ok
}

func (c *fakeListCache) Set(_ context.Context, gen int64, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fakeKey(gen, key)] = body
}

func (c *fakeListCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries = make(map[string][]byte)
	c.invalidated++
}

func (c *fakeListCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func fakeKey(gen int64, key string) string {
	return strconv.FormatInt(gen, 10) + "|" + key
}
