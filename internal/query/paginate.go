// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package query

// Meta describes the position of a page within the full result set.
type Meta struct {
	CurrentPage int    `json:"current_page"`
	From        *int   `json:"from"`
	LastPage    int    `json:"last_page"`
	Path        string `json:"path"`
	PerPage     int    `json:"per_page"`
	To          *int   `json:"to"`
	Total       int    `json:"total"`
}

// Links are the URLs of neighbouring pages. Prev and Next are nil at the
// ends of the result set.
type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// Paginate computes metadata and links for the current page of q given the
// total number of matching posts. path is the listing URL path; links keep
// every active filter so following them reproduces the same result set.
func (q PostQuery) Paginate(path string, total int) (Meta, Links) {
	perPage := q.Limit()
	page := q.currentPage()

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	meta := Meta{
		CurrentPage: page,
		LastPage:    lastPage,
		Path:        path,
		PerPage:     perPage,
		Total:       total,
	}
	if first := q.Offset() + 1; first <= total {
		last := min(q.Offset()+perPage, total)
		meta.From = &first
		meta.To = &last
	}

	links := Links{
		First: q.pageURL(path, 1),
		Last:  q.pageURL(path, lastPage),
	}
	if page > 1 {
		prev := q.pageURL(path, min(page-1, lastPage))
		links.Prev = &prev
	}
	if page < lastPage {
		next := q.pageURL(path, page+1)
		links.Next = &next
	}
	return meta, links
}

func (q PostQuery) pageURL(path string, page int) string {
	return path + "?" + q.WithPage(page).CacheKey()
}
