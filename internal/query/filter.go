// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package query

import (
	"strconv"
	"strings"
	"time"

	"blogapi/internal/models"
)

// Args accumulates positional SQL arguments and hands out their $n
// placeholders.
type Args struct {
	values []any
}

// Add appends v and returns its placeholder.
func (a *Args) Add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// Values returns a copy of the arguments added so far.
func (a *Args) Values() []any {
	out := make([]any, len(a.values))
	copy(out, a.values)
	return out
}

// clause is one filter. sql renders it against posts aliased p joined to
// their author aliased u; match evaluates it on a post with Author set.
type clause struct {
	sql   func(args *Args) string
	match func(p *models.Post) bool
}

// clauses returns one clause per active filter. Each clause reads only its
// own parameter, so adding or removing a filter never changes another.
func (q PostQuery) clauses() []clause {
	var cs []clause

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		pattern := "%" + escapeLike(q.Search) + "%"
		cs = append(cs, clause{
			sql: func(args *Args) string {
				ph := args.Add(pattern)
				return "(p.title ILIKE " + ph + ` ESCAPE '\'` +
					" OR u.name ILIKE " + ph + ` ESCAPE '\'` +
					" OR p.category ILIKE " + ph + ` ESCAPE '\')`
			},
			match: func(p *models.Post) bool {
				return containsFold(p.Title, needle) ||
					containsFold(p.Author.Name, needle) ||
					containsFold(p.Category, needle)
			},
		})
	}

	if q.Category != "" {
		category := q.Category
		cs = append(cs, clause{
			sql: func(args *Args) string {
				return "p.category = " + args.Add(category)
			},
			match: func(p *models.Post) bool { return p.Category == category },
		})
	}

	if q.AuthorID != nil {
		authorID := *q.AuthorID
		cs = append(cs, clause{
			sql: func(args *Args) string {
				return "p.author_id = " + args.Add(authorID)
			},
			match: func(p *models.Post) bool { return p.AuthorID == authorID },
		})
	}

	if q.From != nil {
		from := *q.From
		cs = append(cs, clause{
			sql: func(args *Args) string {
				return "(p.created_at AT TIME ZONE 'UTC')::date >= " + args.Add(from.Format(DateLayout)) + "::date"
			},
			match: func(p *models.Post) bool { return !createdDate(p).Before(from) },
		})
	}

	if q.To != nil {
		to := *q.To
		cs = append(cs, clause{
			sql: func(args *Args) string {
				return "(p.created_at AT TIME ZONE 'UTC')::date <= " + args.Add(to.Format(DateLayout)) + "::date"
			},
			match: func(p *models.Post) bool { return !createdDate(p).After(to) },
		})
	}

	return cs
}

// Where renders the WHERE clause, registering its arguments in args.
// It returns an empty string when no filter is active.
func (q PostQuery) Where(args *Args) string {
	cs := q.clauses()
	if len(cs) == 0 {
		return ""
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.sql(args)
	}
	return "WHERE " + strings.Join(parts, " AND ")
}

// Match reports whether p satisfies every active filter. p.Author must be
// populated for the search filter to see the author's name.
func (q PostQuery) Match(p *models.Post) bool {
	for _, c := range q.clauses() {
		if !c.match(p) {
			return false
		}
	}
	return true
}

func createdDate(p *models.Post) time.Time {
	y, m, d := p.CreatedAt.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
