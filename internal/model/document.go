package model

import "time"

// FileKind discriminates the two file reference schemes that coexist in the
// store: older documents carry per-file metadata rows, newer documents carry
// bare storage keys or absolute URLs.
type FileKind string

const (
	// FileKindURL is a direct reference: a storage key or an absolute URL.
	FileKindURL FileKind = "url"
	// FileKindLegacy is a reference with per-file metadata attached.
	FileKindLegacy FileKind = "legacy"
)

// FileRef is a tagged union over the two reference schemes. Kind decides
// which fields are meaningful: URL refs carry only Ref, legacy refs also
// carry Name, Size and ContentType.
type FileRef struct {
	Kind        FileKind `json:"kind"`
	Ref         string   `json:"ref"`
	Name        string   `json:"name,omitempty"`
	Size        int64    `json:"size,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
}

// Document represents a public record in the catalog.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage, client) without coupling to persistence.
type Document struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug,omitempty"`
	Description string     `json:"description,omitempty"`
	Categories  []string   `json:"categories"`
	Agency      string     `json:"agency,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Files       []FileRef  `json:"files"`
	Views       int64      `json:"views"`
	Downloads   int64      `json:"downloads"`
	Featured    bool       `json:"featured"`
	CreatedAt   time.Time  `json:"created_at"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// RouteKey returns the canonical routing key for the document: the slug when
// present, otherwise the opaque ID. Every document resolves through exactly
// one of the two.
func (d *Document) RouteKey() string {
	if d.Slug != "" {
		return d.Slug
	}
	return d.ID
}

// Popularity is the ranking score used by the popular sort: views plus
// downloads, both defaulting to zero.
func (d *Document) Popularity() int64 {
	return d.Views + d.Downloads
}

// HasCategory reports whether the document belongs to the given category.
func (d *Document) HasCategory(categoryID string) bool {
	for _, c := range d.Categories {
		if c == categoryID {
			return true
		}
	}
	return false
}
