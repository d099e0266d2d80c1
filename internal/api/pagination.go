package api

import (
	"net/http"
	"strconv"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

// PaginationParams holds the parsed page and per_page query values.
type PaginationParams struct {
	Page    int
	PerPage int
}

// ParsePagination reads page and per_page from the query string.
// Missing or invalid values fall back to page=1 and per_page=50;
// per_page is capped at 200 so list endpoints stay bounded.
func ParsePagination(r *http.Request) PaginationParams {
	q := r.URL.Query()
	p := PaginationParams{
		Page:    positiveQueryInt(q.Get("page"), 1),
		PerPage: positiveQueryInt(q.Get("per_page"), defaultPerPage),
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

func positiveQueryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Offset returns the row offset of the current page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// TotalPages returns how many pages are needed for total rows.
func (p PaginationParams) TotalPages(total int64) int {
	if p.PerPage <= 0 {
		return 0
	}
	pages := int(total) / p.PerPage
	if int(total)%p.PerPage != 0 {
		pages++
	}
	return pages
}
