package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubdocs/internal/model"
)

func TestCategoryPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCategoryPostgres(db)

	t.Run("returns categories with counts", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "description", "document_count"}).
			AddRow("cat-1", "Budget", "Budget documents", 12).
			AddRow("cat-2", "Circulars", "", 0)
		mock.ExpectQuery("SELECT c.id, c.name, c.description, COUNT").WillReturnRows(rows)

		cats, err := repo.List(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []model.Category{
			{ID: "cat-1", Name: "Budget", Description: "Budget documents", DocumentCount: 12},
			{ID: "cat-2", Name: "Circulars", DocumentCount: 0},
		}, cats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates query errors", func(t *testing.T) {
		mock.ExpectQuery("SELECT c.id, c.name, c.description, COUNT").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.List(context.Background())

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
