package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pubdocs/internal/model"
	"pubdocs/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, name, slug, description, agency, thumbnail, featured, views, downloads, created_at, release_date, deadline`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	var slug sql.NullString
	var releaseDate, deadline sql.NullTime
	if err := row.Scan(
		&d.ID,
		&d.Name,
		&slug,
		&d.Description,
		&d.Agency,
		&d.Thumbnail,
		&d.Featured,
		&d.Views,
		&d.Downloads,
		&d.CreatedAt,
		&releaseDate,
		&deadline,
	); err != nil {
		return nil, err
	}
	d.Slug = slug.String
	if releaseDate.Valid {
		t := releaseDate.Time
		d.ReleaseDate = &t
	}
	if deadline.Valid {
		t := deadline.Time
		d.Deadline = &t
	}
	return &d, nil
}

// Create inserts the document row and its category links, file references and
// tags inside a single transaction.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const qDoc = `
		INSERT INTO documents (id, name, slug, description, agency, thumbnail, featured, views, downloads, created_at, release_date, deadline)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + documentColumns
	row := tx.QueryRowContext(ctx, qDoc,
		doc.ID,
		doc.Name,
		doc.Slug,
		doc.Description,
		doc.Agency,
		doc.Thumbnail,
		doc.Featured,
		doc.Views,
		doc.Downloads,
		doc.CreatedAt,
		doc.ReleaseDate,
		doc.Deadline,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	const qCat = `INSERT INTO document_categories (document_id, category_id) VALUES ($1, $2)`
	for _, catID := range doc.Categories {
		if _, err := tx.ExecContext(ctx, qCat, out.ID, catID); err != nil {
			return nil, fmt.Errorf("link category %s: %w", catID, err)
		}
	}

	const qFile = `
		INSERT INTO document_files (document_id, position, kind, ref, name, size, content_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, f := range doc.Files {
		if _, err := tx.ExecContext(ctx, qFile, out.ID, i, string(f.Kind), f.Ref, f.Name, f.Size, f.ContentType); err != nil {
			return nil, fmt.Errorf("insert file ref: %w", err)
		}
	}

	const qTag = `INSERT INTO document_tags (document_id, tag) VALUES ($1, $2)`
	for _, tag := range doc.Tags {
		if _, err := tx.ExecContext(ctx, qTag, out.ID, tag); err != nil {
			return nil, fmt.Errorf("insert tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	out.Categories = doc.Categories
	out.Files = doc.Files
	out.Tags = doc.Tags
	return out, nil
}

// FindByID fetches a single document with its links by ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return r.findOne(ctx, q, id)
}

// FindBySlug fetches a single document with its links by slug.
func (r *DocumentPostgres) FindBySlug(ctx context.Context, slug string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE slug = $1`
	return r.findOne(ctx, q, slug)
}

func (r *DocumentPostgres) findOne(ctx context.Context, query, arg string) (*model.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	if err := r.attachOne(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns the full collection ordered newest first.
func (r *DocumentPostgres) List(ctx context.Context) ([]model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC, id DESC`
	return r.listAndAttach(ctx, q)
}

// ListPopular returns up to limit documents by descending views+downloads.
func (r *DocumentPostgres) ListPopular(ctx context.Context, limit int) ([]model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents ORDER BY (views + downloads) DESC, created_at DESC LIMIT $1`
	return r.listAndAttach(ctx, q, limit)
}

// ListRecent returns up to limit documents by descending creation time.
func (r *DocumentPostgres) ListRecent(ctx context.Context, limit int) ([]model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC, id DESC LIMIT $1`
	return r.listAndAttach(ctx, q, limit)
}

func (r *DocumentPostgres) listAndAttach(ctx context.Context, query string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachAll(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// attachAll loads the link tables in three queries and assigns categories,
// file references and tags to the matching documents in place.
func (r *DocumentPostgres) attachAll(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	byID := make(map[string]*model.Document, len(docs))
	for i := range docs {
		byID[docs[i].ID] = &docs[i]
	}

	const qCats = `SELECT document_id, category_id FROM document_categories ORDER BY document_id, category_id`
	rows, err := r.db.QueryContext(ctx, qCats)
	if err != nil {
		return err
	}
	for rows.Next() {
		var docID, catID string
		if err := rows.Scan(&docID, &catID); err != nil {
			rows.Close()
			return err
		}
		if d, ok := byID[docID]; ok {
			d.Categories = append(d.Categories, catID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const qFiles = `SELECT document_id, kind, ref, name, size, content_type FROM document_files ORDER BY document_id, position`
	rows, err = r.db.QueryContext(ctx, qFiles)
	if err != nil {
		return err
	}
	for rows.Next() {
		var docID, kind string
		var f model.FileRef
		if err := rows.Scan(&docID, &kind, &f.Ref, &f.Name, &f.Size, &f.ContentType); err != nil {
			rows.Close()
			return err
		}
		f.Kind = model.FileKind(kind)
		if d, ok := byID[docID]; ok {
			d.Files = append(d.Files, f)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const qTags = `SELECT document_id, tag FROM document_tags ORDER BY document_id, tag`
	rows, err = r.db.QueryContext(ctx, qTags)
	if err != nil {
		return err
	}
	for rows.Next() {
		var docID, tag string
		if err := rows.Scan(&docID, &tag); err != nil {
			rows.Close()
			return err
		}
		if d, ok := byID[docID]; ok {
			d.Tags = append(d.Tags, tag)
		}
	}
	rows.Close()
	return rows.Err()
}

// attachOne loads the link tables for a single document.
func (r *DocumentPostgres) attachOne(ctx context.Context, d *model.Document) error {
	const qCats = `SELECT category_id FROM document_categories WHERE document_id = $1 ORDER BY category_id`
	rows, err := r.db.QueryContext(ctx, qCats, d.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var catID string
		if err := rows.Scan(&catID); err != nil {
			rows.Close()
			return err
		}
		d.Categories = append(d.Categories, catID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const qFiles = `SELECT kind, ref, name, size, content_type FROM document_files WHERE document_id = $1 ORDER BY position`
	rows, err = r.db.QueryContext(ctx, qFiles, d.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var kind string
		var f model.FileRef
		if err := rows.Scan(&kind, &f.Ref, &f.Name, &f.Size, &f.ContentType); err != nil {
			rows.Close()
			return err
		}
		f.Kind = model.FileKind(kind)
		d.Files = append(d.Files, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const qTags = `SELECT tag FROM document_tags WHERE document_id = $1 ORDER BY tag`
	rows, err = r.db.QueryContext(ctx, qTags, d.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			rows.Close()
			return err
		}
		d.Tags = append(d.Tags, tag)
	}
	rows.Close()
	return rows.Err()
}

// IncrementViews bumps the view counter.
func (r *DocumentPostgres) IncrementViews(ctx context.Context, id string) error {
	return r.increment(ctx, `UPDATE documents SET views = views + 1 WHERE id = $1`, id)
}

// IncrementDownloads bumps the download counter.
func (r *DocumentPostgres) IncrementDownloads(ctx context.Context, id string) error {
	return r.increment(ctx, `UPDATE documents SET downloads = downloads + 1 WHERE id = $1`, id)
}

func (r *DocumentPostgres) increment(ctx context.Context, query, id string) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document by ID. Link rows cascade. It does not return an
// error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
