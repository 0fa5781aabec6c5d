package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"pubdocs/internal/model"
	"pubdocs/internal/repository"
	"pubdocs/internal/storage"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNotFound     = errors.New("document not found")
	ErrReaderNil    = errors.New("reader is nil")
	ErrNameRequired = errors.New("name is required")
)

// defaultStatsLimit bounds the popular/recent rankings when the caller does
// not specify a limit (or specifies a nonsensical one).
const (
	defaultStatsLimit = 10
	maxStatsLimit     = 100
)

// DocumentListResult is the service-level DTO for the full document collection.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// UploadMeta carries the catalog metadata supplied with an admin upload.
type UploadMeta struct {
	Name        string
	Slug        string
	Description string
	Agency      string
	Categories  []string
	Tags        []string
	Featured    bool
	ReleaseDate *time.Time
	Deadline    *time.Time
}

// DocumentService defines the use cases for the document catalog.
type DocumentService interface {
	// Upload stores the content in object storage, saves catalog metadata to
	// the DB, and rolls back storage if the DB save fails. The uploaded file
	// becomes a legacy file reference on the new document.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64, meta UploadMeta) (*model.Document, error)

	// List returns the full document collection, newest first.
	List(ctx context.Context) (*DocumentListResult, error)

	// Get returns a single document addressed by slug or by ID. Slugs are the
	// preferred routing key; opaque UUIDs remain resolvable.
	Get(ctx context.Context, idOrSlug string) (*model.Document, error)

	// Categories returns all categories with their document counts.
	Categories(ctx context.Context) ([]model.Category, error)

	// Popular and Recent return the precomputed rankings.
	Popular(ctx context.Context, limit int) ([]model.Document, error)
	Recent(ctx context.Context, limit int) ([]model.Document, error)

	// TrackView and TrackDownload bump the counters.
	TrackView(ctx context.Context, id string) error
	TrackDownload(ctx context.Context, id string) error

	// Delete removes a document and its stored files.
	Delete(ctx context.Context, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	cats  repository.CategoryRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, cats repository.CategoryRepository) DocumentService {
	return &documentService{store: store, repo: repo, cats: cats}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64, meta UploadMeta) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
	}
	if name == "" {
		return nil, ErrNameRequired
	}
	slug := strings.TrimSpace(meta.Slug)
	if slug == "" {
		slug = Slugify(name)
	}

	// Stored object name is UUID + original extension; the original filename
	// survives as legacy file metadata.
	ext := filepath.Ext(originalFilename)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("documents", genName))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        slug,
		Description: meta.Description,
		Categories:  meta.Categories,
		Agency:      meta.Agency,
		Tags:        meta.Tags,
		Featured:    meta.Featured,
		CreatedAt:   time.Now().UTC(),
		ReleaseDate: meta.ReleaseDate,
		Deadline:    meta.Deadline,
		Files: []model.FileRef{{
			Kind:        model.FileKindLegacy,
			Ref:         objInfo.Key,
			Name:        originalFilename,
			Size:        objInfo.Size,
			ContentType: objInfo.ContentType,
		}},
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns the full collection. Filtering, sorting and pagination are
// consumer-side concerns handled by the discovery engines.
func (s *documentService) List(ctx context.Context) (*DocumentListResult, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: items, Total: len(items)}, nil
}

// Get resolves idOrSlug: valid UUIDs address by ID, anything else by slug.
func (s *documentService) Get(ctx context.Context, idOrSlug string) (*model.Document, error) {
	if idOrSlug == "" {
		return nil, ErrIDRequired
	}
	var (
		doc *model.Document
		err error
	)
	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		doc, err = s.repo.FindByID(ctx, idOrSlug)
	} else {
		doc, err = s.repo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Categories(ctx context.Context) ([]model.Category, error) {
	return s.cats.List(ctx)
}

func (s *documentService) Popular(ctx context.Context, limit int) ([]model.Document, error) {
	return s.repo.ListPopular(ctx, clampLimit(limit))
}

func (s *documentService) Recent(ctx context.Context, limit int) ([]model.Document, error) {
	return s.repo.ListRecent(ctx, clampLimit(limit))
}

func (s *documentService) TrackView(ctx context.Context, id string) error {
	return s.track(ctx, id, s.repo.IncrementViews)
}

func (s *documentService) TrackDownload(ctx context.Context, id string) error {
	return s.track(ctx, id, s.repo.IncrementDownloads)
}

func (s *documentService) track(ctx context.Context, id string, inc func(context.Context, string) error) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := inc(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a document's stored files, then deletes its record. Only
// legacy references point into our own bucket; URL references are external
// and never deleted.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete from storage first; if this fails, keep DB rows to avoid orphaned storage reference loss
	for _, f := range doc.Files {
		if f.Kind != model.FileKindLegacy {
			continue
		}
		if err := s.store.Delete(ctx, f.Ref); err != nil {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	return s.repo.Delete(ctx, id)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultStatsLimit
	}
	if limit > maxStatsLimit {
		return maxStatsLimit
	}
	return limit
}

// Slugify turns a display name into a URL slug: lowercase, alphanumeric runs
// joined by single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
