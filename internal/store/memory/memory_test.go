package memory

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/query"
)

// fixedClock makes created_at values predictable; each call advances a minute.
func fixedClock(s *Store, start time.Time) {
	t := start
	s.now = func() time.Time {
		cur := t
		t = t.Add(time.Minute)
		return cur
	}
}

func mustQuery(t *testing.T, raw string) query.PostQuery {
	t.Helper()
	v, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	q, err := query.Parse(v)
	if err != nil {
		t.Fatalf("query %q: %v", raw, err)
	}
	return q
}

func mustUser(t *testing.T, s *Store, name, email string, roles ...models.Role) *models.User {
	t.Helper()
	u, err := s.Users().Create(name, email, "secret123", roles...)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func mustPost(t *testing.T, s *Store, author *models.User, title, category string) *models.Post {
	t.Helper()
	p, err := s.Posts().Create(&models.Post{Title: title, Content: "c", Category: category, AuthorID: author.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func TestUserStoreCreate(t *testing.T) {
	s := New()
	u := mustUser(t, s, "Ann", "ann@test.com", models.RoleAuthor)

	if u.PasswordHash == "" || u.PasswordHash == "secret123" {
		t.Error("password must be stored hashed")
	}
	if !s.Users().CheckPassword(u, "secret123") {
		t.Error("expected password to verify")
	}

	_, err := s.Users().Create("Other", "ann@test.com", "secret123")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if _, err := s.Users().Create("Bad", "bad@test.com", "secret123", models.Role("root")); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestUserStoreReturnsCopies(t *testing.T) {
	s := New()
	u := mustUser(t, s, "Ann", "ann@test.com")
	u.Roles = append(u.Roles, models.RoleAdmin)

	found, _ := s.Users().FindByID(u.ID)
	if found.IsAdmin() {
		t.Fatal("mutating a returned user must not change the stored one")
	}

	if err := s.Users().AssignRole(u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if err := s.Users().AssignRole(u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("AssignRole (repeat): %v", err)
	}
	found, _ = s.Users().FindByEmail("ann@test.com")
	if !found.IsAdmin() || len(found.Roles) != 1 {
		t.Fatalf("expected exactly the admin role, got %v", found.Roles)
	}

	if missing, err := s.Users().FindByEmail("nobody@test.com"); missing != nil || err != nil {
		t.Fatalf("expected nil, nil; got %v, %v", missing, err)
	}
}

func TestPostStoreCRUD(t *testing.T) {
	s := New()
	author := mustUser(t, s, "Ann", "ann@test.com", models.RoleAuthor)
	p := mustPost(t, s, author, "Hello", "General")

	if p.Author.Name != "Ann" {
		t.Errorf("author name: got %q", p.Author.Name)
	}

	title := "Changed"
	updated, err := s.Posts().Update(p.ID, models.PostChanges{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Changed" || updated.Category != "General" || updated.AuthorID != author.ID {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if _, err := s.Comments().Create(p.ID, author.ID, "hi"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if err := s.Posts().Delete(p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if found, _ := s.Posts().FindByID(p.ID); found != nil {
		t.Fatal("post still present after delete")
	}
	if comments, _ := s.Comments().ListByPost(p.ID); len(comments) != 0 {
		t.Errorf("expected comments to go with the post, got %d", len(comments))
	}

	if err := s.Posts().Delete(p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Posts().Update(p.ID, models.PostChanges{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Posts().Create(&models.Post{Title: "x", AuthorID: uuid.New()}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown author, got %v", err)
	}
}

func TestPostStoreListSearchAndCategory(t *testing.T) {
	s := New()
	admin := mustUser(t, s, "Admin", "admin@test.com", models.RoleAdmin)
	author := mustUser(t, s, "Writer", "writer@test.com", models.RoleAuthor)

	mustPost(t, s, admin, "Admin Post", "Technology")
	mustPost(t, s, author, "Author Post", "Technology")
	mustPost(t, s, admin, "Admin Recipes", "Food")

	posts, total, err := s.Posts().List(mustQuery(t, "search=Admin&category=Technology"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(posts) != 1 || posts[0].Title != "Admin Post" {
		t.Fatalf("expected only Admin Post, got %d (total %d)", len(posts), total)
	}
	if posts[0].Author.Name != "Admin" {
		t.Errorf("author not populated: %+v", posts[0].Author)
	}

	// Search also matches the author's name.
	_, total, _ = s.Posts().List(mustQuery(t, "search=writer"))
	if total != 1 {
		t.Errorf("author-name search: got total %d, want 1", total)
	}
}

func TestPostStoreListOrderAndPaging(t *testing.T) {
	s := New()
	fixedClock(s, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	author := mustUser(t, s, "Ann", "ann@test.com", models.RoleAuthor)

	mustPost(t, s, author, "Older", "General")
	mustPost(t, s, author, "Newer", "General")

	posts, total, _ := s.Posts().List(mustQuery(t, "per_page=1"))
	if total != 2 || len(posts) != 1 || posts[0].Title != "Newer" {
		t.Fatalf("page 1: got %d posts (total %d)", len(posts), total)
	}
	meta, _ := mustQuery(t, "per_page=1").Paginate("/posts", total)
	if meta.LastPage != 2 {
		t.Errorf("last page: got %d, want 2", meta.LastPage)
	}

	posts, _, _ = s.Posts().List(mustQuery(t, "per_page=1&page=2"))
	if len(posts) != 1 || posts[0].Title != "Older" {
		t.Fatalf("page 2: got %+v", posts)
	}

	posts, _, _ = s.Posts().List(mustQuery(t, "per_page=1&page=3"))
	if len(posts) != 0 {
		t.Errorf("page past the end should be empty, got %d", len(posts))
	}

	posts, total, err := s.Posts().List(mustQuery(t, "page=922337203685477582&per_page=100"))
	if err != nil {
		t.Fatalf("huge page: %v", err)
	}
	if len(posts) != 0 || total != 2 {
		t.Errorf("huge page: got %d posts (total %d), want empty page of 2", len(posts), total)
	}
}

func TestPostStoreListTiesAreDeterministic(t *testing.T) {
	s := New()
	s.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	author := mustUser(t, s, "Ann", "ann@test.com", models.RoleAuthor)
	for range 5 {
		mustPost(t, s, author, "Same", "General")
	}

	first, _, _ := s.Posts().List(mustQuery(t, "sort=title"))
	for range 10 {
		again, _, _ := s.Posts().List(mustQuery(t, "sort=title"))
		for i := range first {
			if first[i].ID != again[i].ID {
				t.Fatalf("order changed between calls at index %d", i)
			}
		}
	}
}

func TestCommentStore(t *testing.T) {
	s := New()
	author := mustUser(t, s, "Ann", "ann@test.com", models.RoleAuthor)
	reader := mustUser(t, s, "Rob", "rob@test.com")
	p := mustPost(t, s, author, "Hello", "General")

	c, err := s.Comments().Create(p.ID, reader.ID, "first")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.User.Name != "Rob" || c.PostID != p.ID {
		t.Errorf("unexpected comment: %+v", c)
	}
	s.Comments().Create(p.ID, author.ID, "second")

	comments, _ := s.Comments().ListByPost(p.ID)
	if len(comments) != 2 || comments[0].Body != "first" || comments[1].User.Name != "Ann" {
		t.Fatalf("unexpected comments: %+v", comments)
	}

	if _, err := s.Comments().Create(uuid.New(), reader.ID, "lost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
