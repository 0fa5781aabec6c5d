package model

// Category is a named grouping of documents. DocumentCount is denormalized
// and maintained by the store; consumers never recompute it.
type Category struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	DocumentCount int    `json:"document_count"`
}

// CategoryNames builds an id-to-name lookup for resolving a document's
// category ids against the category collection.
func CategoryNames(cats []Category) map[string]string {
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names
}
