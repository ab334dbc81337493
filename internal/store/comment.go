// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
)

// CommentStore handles comment persistence. Comments are append-only.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `c.id, c.post_id, c.user_id, u.name, c.body, c.created_at`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{}
	if err := scanner.Scan(&c.ID, &c.PostID, &c.UserID, &c.User.Name, &c.Body, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.User.ID = c.UserID
	return c, nil
}

// ListByPost returns the comments on a post, oldest first, each with its
// commenting user.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// Create appends a comment by userID to postID. If the post was deleted in
// the meantime the foreign key fails and apperr.ErrNotFound is returned.
func (s *CommentStore) Create(postID, userID uuid.UUID, body string) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRow(`
		WITH inserted AS (
			INSERT INTO comments (post_id, user_id, body)
			VALUES ($1, $2, $3)
			RETURNING *
		)
		SELECT `+commentColumns+` FROM inserted c JOIN users u ON u.id = c.user_id
	`, postID, userID, body))
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return nil, fmt.Errorf("create comment on post %s: %w", postID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}
