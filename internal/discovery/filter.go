// Package discovery holds the pure engines behind the document browsing
// views: filtering, sorting and pagination over an already-fetched catalog.
// All functions are side-effect free and safe for concurrent use.
package discovery

import (
	"strings"

	"pubdocs/internal/model"
)

// Criteria selects a subset of the catalog. Zero-value fields select all.
type Criteria struct {
	// Text is matched case-insensitively against name, description, agency
	// and resolved category names. Surrounding whitespace is ignored.
	Text string
	// CategoryID keeps only documents that belong to the category.
	CategoryID string
}

// Filter returns the documents matching the criteria, preserving input order.
// Text and category filters compose conjunctively. Category names are
// resolved against cats so a query like "budget" also matches documents in a
// "Budget Reports" category.
func Filter(docs []model.Document, cats []model.Category, c Criteria) []model.Document {
	text := strings.ToLower(strings.TrimSpace(c.Text))
	if text == "" && c.CategoryID == "" {
		out := make([]model.Document, len(docs))
		copy(out, docs)
		return out
	}

	var names map[string]string
	if text != "" {
		names = model.CategoryNames(cats)
	}

	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if c.CategoryID != "" && !d.HasCategory(c.CategoryID) {
			continue
		}
		if text != "" && !matchesText(&d, names, text) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesText(d *model.Document, categoryNames map[string]string, text string) bool {
	if strings.Contains(strings.ToLower(d.Name), text) {
		return true
	}
	if strings.Contains(strings.ToLower(d.Description), text) {
		return true
	}
	if strings.Contains(strings.ToLower(d.Agency), text) {
		return true
	}
	for _, id := range d.Categories {
		if name, ok := categoryNames[id]; ok && strings.Contains(strings.ToLower(name), text) {
			return true
		}
	}
	return false
}
