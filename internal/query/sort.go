// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package query

import (
	"bytes"
	"fmt"
	"strings"

	"blogapi/internal/models"
)

// sortField maps a client-visible field name to its SQL column and an
// in-memory comparison with the same ordering.
type sortField struct {
	column  string
	compare func(a, b *models.Post) int
}

var sortFields = map[string]sortField{
	"id": {"p.id", compareID},
	"title": {"p.title", func(a, b *models.Post) int {
		return strings.Compare(a.Title, b.Title)
	}},
	"category": {"p.category", func(a, b *models.Post) int {
		return strings.Compare(a.Category, b.Category)
	}},
	"author_id": {"p.author_id", func(a, b *models.Post) int {
		return bytes.Compare(a.AuthorID[:], b.AuthorID[:])
	}},
	"created_at": {"p.created_at", func(a, b *models.Post) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	}},
	"updated_at": {"p.updated_at", func(a, b *models.Post) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}},
}

// compareID orders UUIDs bytewise, which is how PostgreSQL orders them.
func compareID(a, b *models.Post) int {
	return bytes.Compare(a.ID[:], b.ID[:])
}

// Sort is the requested ordering. The zero value is the default ordering,
// created_at descending.
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSort lists the most recent posts first.
var DefaultSort = Sort{Field: "created_at", Desc: true}

// ParseSort reads a sort parameter: a field name with an optional leading
// "-" for descending order. An empty string yields DefaultSort.
func ParseSort(raw string) (Sort, error) {
	if raw == "" {
		return DefaultSort, nil
	}
	s := Sort{Field: raw}
	if strings.HasPrefix(raw, "-") {
		s = Sort{Field: raw[1:], Desc: true}
	}
	if _, ok := sortFields[s.Field]; !ok {
		return DefaultSort, fmt.Errorf("unsupported sort field %q", s.Field)
	}
	return s, nil
}

func (s Sort) normalized() Sort {
	if s.Field == "" {
		return DefaultSort
	}
	return s
}

// IsDefault reports whether s is the default ordering.
func (s Sort) IsDefault() bool {
	return s.normalized() == DefaultSort
}

// String renders s in its query-parameter form.
func (s Sort) String() string {
	s = s.normalized()
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

// OrderBy renders the ORDER BY list. Ties on the sort field are always
// broken by ascending id so pagination is stable.
func (q PostQuery) OrderBy() string {
	s := q.Sort.normalized()
	f := sortFields[s.Field]

	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	order := f.column + " " + dir
	if s.Field != "id" {
		order += ", p.id ASC"
	}
	return order
}

// Less reports whether a sorts before b under q's ordering, including the
// id tie-break.
func (q PostQuery) Less(a, b *models.Post) bool {
	s := q.Sort.normalized()
	c := sortFields[s.Field].compare(a, b)
	if s.Desc {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	return compareID(a, b) < 0
}
