package repository

// Package repository contains data access layer abstractions.
// Implementations can live in subpackages (e.g., postgres) inside this directory.

import (
	"context"

	"pubdocs/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a document together with its category links, file
	// references, and tags. Returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindBySlug returns a document by its URL slug, sql.ErrNoRows if absent.
	FindBySlug(ctx context.Context, slug string) (*model.Document, error)

	// List returns the full collection ordered newest first.
	List(ctx context.Context) ([]model.Document, error)

	// ListPopular returns up to limit documents ordered by views+downloads descending.
	ListPopular(ctx context.Context, limit int) ([]model.Document, error)

	// ListRecent returns up to limit documents ordered by creation time descending.
	ListRecent(ctx context.Context, limit int) ([]model.Document, error)

	// IncrementViews / IncrementDownloads bump the denormalized counters.
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
