// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog post. AuthorID is set once at creation and never changes.
// Author is always populated by the stores when a post is read.
type Post struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Category  string      `json:"category"`
	AuthorID  uuid.UUID   `json:"author_id"`
	Author    UserSummary `json:"author"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// IsOwnedBy returns true if the given user id is the post's author.
func (p *Post) IsOwnedBy(userID uuid.UUID) bool {
	return p.AuthorID == userID
}

// PostChanges carries the optional fields of a post update. Nil fields are
// left untouched.
type PostChanges struct {
	Title    *string
	Content  *string
	Category *string
}

// Apply copies the non-nil fields onto p.
func (c PostChanges) Apply(p *Post) {
	if c.Title != nil {
		p.Title = *c.Title
	}
	if c.Content != nil {
		p.Content = *c.Content
	}
	if c.Category != nil {
		p.Category = *c.Category
	}
}
