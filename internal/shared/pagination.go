package shared

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListQuery carries the client-side listing controls shared by every list view.
type ListQuery struct {
	Search  string
	Page    int
	PerPage int
}

// QueryFromRequest reads the listing controls every list endpoint accepts.
func QueryFromRequest(r *http.Request) ListQuery {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return ListQuery{
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	}
}

// NewPagination computes pagination metadata. The page is clamped into
// [1, max(totalPages, 1)] so a shrinking filter can never leave an
// out-of-range page selected.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	page = ClampPage(page, totalPages)
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// ClampPage clamps page into [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// MatchesSearch reports whether any field contains term, case-insensitively.
// An empty term matches everything.
func MatchesSearch(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Paginate filters items with match against q.Search, then slices out the
// requested page. It preserves input order; no sorting is applied here.
func Paginate[T any](items []T, q ListQuery, match func(item T, term string) bool) ([]T, Pagination) {
	filtered := items
	if q.Search != "" && match != nil {
		filtered = make([]T, 0, len(items))
		for _, it := range items {
			if match(it, q.Search) {
				filtered = append(filtered, it)
			}
		}
	}

	p := NewPagination(q.Page, q.PerPage, len(filtered))
	lo := (p.Page - 1) * p.PerPage
	if lo > len(filtered) {
		lo = len(filtered)
	}
	hi := lo + p.PerPage
	if hi > len(filtered) {
		hi = len(filtered)
	}
	return filtered[lo:hi], p
}
