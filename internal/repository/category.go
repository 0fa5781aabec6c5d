package repository

import (
	"context"

	"pubdocs/internal/model"
)

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	// List returns all categories with their denormalized document counts,
	// ordered by name.
	List(ctx context.Context) ([]model.Category, error)
}
