package discovery

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pubdocs/internal/model"
)

// SortKey selects the ordering of a document collection.
type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortOldest  SortKey = "oldest"
	SortName    SortKey = "name"
	SortPopular SortKey = "popular"
)

// Sort returns a new slice ordered by the given key. The input is never
// mutated and equal elements keep their relative input order. Unknown or
// empty keys behave as SortNewest.
func Sort(docs []model.Document, key SortKey) []model.Document {
	out := make([]model.Document, len(docs))
	copy(out, docs)

	switch key {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case SortName:
		// Collators are not safe for concurrent use, so build one per call.
		col := collate.New(language.Und, collate.Loose)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortPopular:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Popularity() > out[j].Popularity()
		})
	default: // SortNewest
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}
