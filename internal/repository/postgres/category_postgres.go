package postgres

import (
	"context"
	"database/sql"

	"pubdocs/internal/model"
	"pubdocs/internal/repository"
)

// CategoryPostgres is a PostgreSQL implementation of repository.CategoryRepository.
type CategoryPostgres struct {
	db *sql.DB
}

// NewCategoryPostgres creates a new CategoryPostgres repository.
func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

// List returns all categories with their document counts, ordered by name.
// The count is maintained here (in SQL) so consumers never recompute it.
func (r *CategoryPostgres) List(ctx context.Context) ([]model.Category, error) {
	const q = `
		SELECT c.id, c.name, c.description, COUNT(dc.document_id) AS document_count
		FROM categories c
		LEFT JOIN document_categories dc ON dc.category_id = c.id
		GROUP BY c.id, c.name, c.description
		ORDER BY c.name
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.DocumentCount); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
