// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/query"
)

func strPtr(s string) *string { return &s }

func createTestPost(t *testing.T, s *PostStore, author *models.User, title, category string) *models.Post {
	t.Helper()
	p, err := s.Create(&models.Post{Title: title, Content: "body of " + title, Category: category, AuthorID: author.ID})
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return p
}

func TestPostStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, "test-post-create@store-test.local", "Post Author", models.RoleAuthor)

	created := createTestPost(t, s, author, "Hello", "General")
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if created.Author.ID != author.ID || created.Author.Name != "Post Author" {
		t.Errorf("author: got %+v", created.Author)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil || found.Title != "Hello" || found.Category != "General" {
		t.Fatalf("unexpected post: %+v", found)
	}

	missing, err := s.FindByID(uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing post; got %+v, %v", missing, err)
	}
}

func TestPostStoreCreateUnknownAuthor(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	_, err := s.Create(&models.Post{Title: "Orphan", Content: "x", Category: "c", AuthorID: uuid.New()})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostStoreUpdate(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := createTestUser(t, db, "test-post-update@store-test.local", "Updater", models.RoleAuthor)
	p := createTestPost(t, s, author, "Before", "General")

	updated, err := s.Update(p.ID, models.PostChanges{Title: strPtr("After")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "After" {
		t.Errorf("title: got %q, want %q", updated.Title, "After")
	}
	if updated.Content != p.Content || updated.Category != p.Category {
		t.Error("fields absent from changes must be left unchanged")
	}
	if updated.AuthorID != author.ID {
		t.Error("author must not change on update")
	}

	if _, err := s.Update(uuid.New(), models.PostChanges{Title: strPtr("x")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing post, got %v", err)
	}
}

func TestPostStoreDeleteCascadesComments(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	comments := NewCommentStore(db)
	author := createTestUser(t, db, "test-post-delete@store-test.local", "Deleter", models.RoleAuthor)
	p := createTestPost(t, posts, author, "Doomed", "General")

	if _, err := comments.Create(p.ID, author.ID, "first"); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := posts.Delete(p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if found, _ := posts.FindByID(p.ID); found != nil {
		t.Fatal("post still present after delete")
	}

	var n int
	db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = $1`, p.ID).Scan(&n)
	if n != 0 {
		t.Errorf("expected comments to be removed with the post, found %d", n)
	}

	if err := posts.Delete(p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPostStoreListFilters(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	admin := createTestUser(t, db, "test-list-admin@store-test.local", "Zed Admin", models.RoleAdmin)
	author := createTestUser(t, db, "test-list-author@store-test.local", "Zed Author", models.RoleAuthor)

	createTestPost(t, s, admin, "Admin Post", "Technology")
	createTestPost(t, s, author, "Author Post", "Technology")
	createTestPost(t, s, author, "Another Post", "Lifestyle")

	list := func(raw string) ([]models.Post, int) {
		t.Helper()
		v, _ := url.ParseQuery(raw)
		q, err := query.Parse(v)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		posts, total, err := s.List(q)
		if err != nil {
			t.Fatalf("List(%q): %v", raw, err)
		}
		return posts, total
	}

	posts, total := list("search=Zed+Admin&category=Technology")
	if total != 1 || len(posts) != 1 || posts[0].Title != "Admin Post" {
		t.Fatalf("search+category: got %d posts (total %d): %+v", len(posts), total, posts)
	}

	authorQuery := url.Values{"author_id": {author.ID.String()}, "sort": {"title"}}
	q, err := query.Parse(authorQuery)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	posts, total, err = s.List(q)
	if err != nil {
		t.Fatalf("List by author: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("author filter: got %d posts (total %d)", len(posts), total)
	}
	if posts[0].Title != "Another Post" || posts[1].Title != "Author Post" {
		t.Errorf("title sort: got %q, %q", posts[0].Title, posts[1].Title)
	}

	q, _ = query.Parse(url.Values{"author_id": {author.ID.String()}, "per_page": {"1"}, "page": {"2"}})
	posts, total, err = s.List(q)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if total != 2 || len(posts) != 1 {
		t.Fatalf("pagination: got %d posts (total %d)", len(posts), total)
	}
}
