package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/vidshare/backend/internal/apperr"
)

const (
	// DefaultLimit is the page size used when a view does not pick its own.
	DefaultLimit = 10
	// MaxLimit bounds the page size a client may request.
	MaxLimit = 100
)

// Page selects a window of a result set. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

// ParsePage reads page and limit query values. Empty values fall back to page 1
// and defaultLimit; anything non-numeric, below one or above MaxLimit is a
// validation error.
func ParsePage(page, limit string, defaultLimit int) (Page, error) {
	p := Page{Number: 1, Limit: defaultLimit}

	if raw := strings.TrimSpace(page); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, apperr.Validation("page must be a positive integer",
				apperr.FieldError{Field: "page", Message: "page must be a positive integer"})
		}
		p.Number = n
	}

	if raw := strings.TrimSpace(limit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, apperr.Validation("limit must be a positive integer",
				apperr.FieldError{Field: "limit", Message: "limit must be a positive integer"})
		}
		if n > MaxLimit {
			return Page{}, apperr.Validation("limit must not exceed "+strconv.Itoa(MaxLimit),
				apperr.FieldError{Field: "limit", Message: "limit must not exceed " + strconv.Itoa(MaxLimit)})
		}
		p.Limit = n
	}

	return p, nil
}

// Paginated is one page of results plus totals over the whole filtered set.
type Paginated[T any] struct {
	Docs        []T  `json:"docs"`
	TotalDocs   int  `json:"totalDocs"`
	Limit       int  `json:"limit"`
	Page        int  `json:"page"`
	TotalPages  int  `json:"totalPages"`
	PagingStart int  `json:"pagingCounter"`
	HasPrevPage bool `json:"hasPrevPage"`
	HasNextPage bool `json:"hasNextPage"`
	PrevPage    *int `json:"prevPage"`
	NextPage    *int `json:"nextPage"`
}

// Paginate windows rows after totals are computed over the full set.
func Paginate[T any](rows []T, page Page) Paginated[T] {
	if page.Limit < 1 {
		page.Limit = DefaultLimit
	}
	if page.Number < 1 {
		page.Number = 1
	}

	total := len(rows)
	totalPages := (total + page.Limit - 1) / page.Limit

	docs := []T{}
	if page.Number <= totalPages {
		start := (page.Number - 1) * page.Limit
		end := min(start+page.Limit, total)
		docs = append(docs, rows[start:end]...)
	}

	out := Paginated[T]{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       page.Limit,
		Page:        page.Number,
		TotalPages:  totalPages,
		PagingStart: pagingStart(page),
		HasPrevPage: page.Number > 1,
		HasNextPage: page.Number < totalPages,
	}
	if out.HasPrevPage {
		prev := page.Number - 1
		out.PrevPage = &prev
	}
	if out.HasNextPage {
		next := page.Number + 1
		out.NextPage = &next
	}
	return out
}

// pagingStart is the 1-based position of the first item of page, saturating
// at math.MaxInt for pages too far out to address.
func pagingStart(page Page) int {
	if page.Number-1 > (math.MaxInt-1)/page.Limit {
		return math.MaxInt
	}
	return (page.Number-1)*page.Limit + 1
}
