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
	"blogapi/internal/query"
)

// PostStore handles all post-related database operations. Every read joins
// the author so returned posts always carry Author.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.title, p.content, p.category, p.author_id, u.name, p.created_at, p.updated_at`

const postFrom = ` FROM posts p JOIN users u ON u.id = p.author_id `

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Content, &p.Category,
		&p.AuthorID, &p.Author.Name, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	return p, nil
}

// List returns the page of posts selected by q together with the total
// number of posts matching q's filters.
func (s *PostStore) List(q query.PostQuery) ([]models.Post, int, error) {
	args := &query.Args{}
	where := q.Where(args)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*)`+postFrom+where, args.Values()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	stmt := `SELECT ` + postColumns + postFrom + where +
		` ORDER BY ` + q.OrderBy() +
		` LIMIT ` + args.Add(q.Limit()) + ` OFFSET ` + args.Add(q.Offset())

	rows, err := s.db.Query(stmt, args.Values()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

// FindByID retrieves a post with its author. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+postFrom+`WHERE p.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// Create inserts a new post owned by p.AuthorID and returns it with its
// generated id, timestamps, and author.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	created, err := scanPost(s.db.QueryRow(`
		WITH inserted AS (
			INSERT INTO posts (title, content, category, author_id)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT `+postColumns+` FROM inserted p JOIN users u ON u.id = p.author_id`,
		p.Title, p.Content, p.Category, p.AuthorID,
	))
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return nil, fmt.Errorf("create post: author %s: %w", p.AuthorID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update applies the non-nil fields of changes to the post. author_id is
// never written. A post that no longer exists yields apperr.ErrNotFound.
func (s *PostStore) Update(id uuid.UUID, changes models.PostChanges) (*models.Post, error) {
	updated, err := scanPost(s.db.QueryRow(`
		WITH updated AS (
			UPDATE posts SET
				title = COALESCE($1, title),
				content = COALESCE($2, content),
				category = COALESCE($3, category),
				updated_at = NOW()
			WHERE id = $4
			RETURNING *
		)
		SELECT `+postColumns+` FROM updated p JOIN users u ON u.id = p.author_id`,
		changes.Title, changes.Content, changes.Category, id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("update post %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

// Delete removes a post and, by cascade, its comments. A post that no
// longer exists yields apperr.ErrNotFound.
func (s *PostStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete post %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
