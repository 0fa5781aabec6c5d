package discovery

import "pubdocs/internal/model"

// windowSize is the maximum number of page links shown in pager controls.
const windowSize = 5

// Page is one slice of an ordered collection plus the metadata pager
// controls need.
type Page struct {
	Items       []model.Document `json:"items"`
	TotalPages  int              `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
}

// Paginate slices docs into fixed-size pages. TotalPages is at least 1 even
// for an empty collection. An out-of-range page yields empty items rather
// than an error; callers clamp before display. perPage values below 1 are
// treated as 1.
func Paginate(docs []model.Document, page, perPage int) Page {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := (len(docs) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	p := Page{
		Items:       []model.Document{},
		TotalPages:  totalPages,
		CurrentPage: page,
	}

	start := (page - 1) * perPage
	if page < 1 || start >= len(docs) {
		return p
	}
	end := start + perPage
	if end > len(docs) {
		end = len(docs)
	}
	p.Items = docs[start:end]
	return p
}

// PageWindow produces up to five contiguous page numbers centered on current:
// all pages when total fits, the first five near the start, the last five
// near the end, otherwise current with two pages on each side.
func PageWindow(current, total int) []int {
	if total < 1 {
		total = 1
	}

	var first int
	switch {
	case total <= windowSize:
		first = 1
	case current <= 3:
		first = 1
	case current >= total-2:
		first = total - windowSize + 1
	default:
		first = current - 2
	}

	n := windowSize
	if total < windowSize {
		n = total
	}
	window := make([]int, n)
	for i := range window {
		window[i] = first + i
	}
	return window
}
