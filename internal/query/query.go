// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query turns the optional filter, sort, and pagination parameters
// of the post listing into a deterministic query. Every active filter is an
// independent clause; clauses are ANDed, and the search clause is itself an
// OR group. The same clause list renders SQL for the PostgreSQL store and
// evaluates posts for the in-memory store.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogapi/internal/apperr"
)

const (
	// DefaultPerPage is the page size when per_page is absent or unusable.
	DefaultPerPage = 10

	// MaxPerPage caps the page size a client may request.
	MaxPerPage = 100

	// MaxPage bounds the page number so the row offset cannot overflow.
	MaxPage = math.MaxInt / MaxPerPage

	// DateLayout is the accepted format of the from/to parameters.
	DateLayout = "2006-01-02"
)

// PostQuery is the parsed, validated listing request. The zero value lists
// every post, newest first, ten per page.
type PostQuery struct {
	Search   string
	Category string
	AuthorID *uuid.UUID
	From     *time.Time // UTC midnight, inclusive
	To       *time.Time // UTC midnight, inclusive
	Sort     Sort
	Page     int
	PerPage  int
}

// Parse reads a PostQuery from URL query parameters. Malformed author_id,
// from, to, or sort values produce an *apperr.ValidationError; unusable
// page and per_page values fall back to their defaults.
func Parse(v url.Values) (PostQuery, error) {
	verr := apperr.NewValidationError()
	q := PostQuery{
		Search:   strings.TrimSpace(v.Get("search")),
		Category: strings.TrimSpace(v.Get("category")),
		Page:     positiveInt(v.Get("page"), 1),
		PerPage:  positiveInt(v.Get("per_page"), DefaultPerPage),
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}

	if raw := strings.TrimSpace(v.Get("author_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr.Add("author_id", "The author_id must be a valid identifier.")
		} else {
			q.AuthorID = &id
		}
	}

	q.From = parseDate(verr, "from", v.Get("from"))
	q.To = parseDate(verr, "to", v.Get("to"))
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		verr.Add("to", "The to date must be on or after the from date.")
	}

	sort, err := ParseSort(strings.TrimSpace(v.Get("sort")))
	if err != nil {
		verr.Add("sort", "The selected sort field is not supported.")
	}
	q.Sort = sort

	if err := verr.OrNil(); err != nil {
		return PostQuery{}, err
	}
	return q, nil
}

func parseDate(verr *apperr.ValidationError, field, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		verr.Add(field, "The "+field+" date must be in YYYY-MM-DD format.")
		return nil
	}
	return &d
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Limit returns the page size.
func (q PostQuery) Limit() int {
	if q.PerPage < 1 {
		return DefaultPerPage
	}
	return q.PerPage
}

// Offset returns the number of rows skipped before the current page.
func (q PostQuery) Offset() int {
	return (q.currentPage() - 1) * q.Limit()
}

func (q PostQuery) currentPage() int {
	switch {
	case q.Page < 1:
		return 1
	case q.Page > MaxPage:
		return MaxPage
	}
	return q.Page
}

// WithPage returns a copy of q positioned on page n.
func (q PostQuery) WithPage(n int) PostQuery {
	q.Page = n
	return q
}

// Values returns the canonical query parameters describing q, without the
// page number. Defaults are omitted so equivalent queries encode equally.
func (q PostQuery) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.AuthorID != nil {
		v.Set("author_id", q.AuthorID.String())
	}
	if q.From != nil {
		v.Set("from", q.From.Format(DateLayout))
	}
	if q.To != nil {
		v.Set("to", q.To.Format(DateLayout))
	}
	if !q.Sort.IsDefault() {
		v.Set("sort", q.Sort.String())
	}
	v.Set("per_page", strconv.Itoa(q.Limit()))
	return v
}

// CacheKey identifies the result page of q. Two queries with the same
// filter state and page share a key.
func (q PostQuery) CacheKey() string {
	v := q.Values()
	v.Set("page", strconv.Itoa(q.currentPage()))
	return v.Encode()
}
