package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pubdocs/internal/http/middleware"
	"pubdocs/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; everything flows through the service.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, adminKey string) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Static segments before the :idOrSlug wildcard.
	app.Get("/documents/stats/popular", PopularDocuments(docSvc))
	app.Get("/documents/stats/recent", RecentDocuments(docSvc))

	app.Get("/documents", ListDocuments(docSvc))
	app.Get("/documents/:idOrSlug", GetDocument(docSvc))
	app.Post("/documents/:id/view", TrackView(docSvc))
	app.Post("/documents/:id/download", TrackDownload(docSvc))
	app.Get("/categories", ListCategories(docSvc))

	// Admin-gated mutations.
	gate := middleware.APIKey(adminKey)
	app.Post("/documents", gate, UploadDocument(docSvc))
	app.Delete("/documents/:id", gate, DeleteDocument(docSvc))
}

// HealthCheck verifies DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments returns the full document collection. Filtering, sorting and
// pagination happen on the consumer side over this one response.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := docSvc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetDocument returns one document addressed by slug or ID.
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := docSvc.Get(c.UserContext(), c.Params("idOrSlug"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// ListCategories returns all categories with document counts.
func ListCategories(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := docSvc.Categories(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(cats)
	}
}

// PopularDocuments returns the top documents by views+downloads.
func PopularDocuments(docSvc service.DocumentService) fiber.Handler {
	return statsHandler(func(ctx context.Context, docSvc service.DocumentService, limit int) (any, error) {
		return docSvc.Popular(ctx, limit)
	}, docSvc)
}

// RecentDocuments returns the most recently created documents.
func RecentDocuments(docSvc service.DocumentService) fiber.Handler {
	return statsHandler(func(ctx context.Context, docSvc service.DocumentService, limit int) (any, error) {
		return docSvc.Recent(ctx, limit)
	}, docSvc)
}

func statsHandler(fetch func(context.Context, service.DocumentService, int) (any, error), docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		docs, err := fetch(c.UserContext(), docSvc, limit)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(docs)
	}
}

// TrackView increments a document's view counter.
func TrackView(docSvc service.DocumentService) fiber.Handler {
	return trackHandler(service.DocumentService.TrackView, docSvc)
}

// TrackDownload increments a document's download counter.
func TrackDownload(docSvc service.DocumentService) fiber.Handler {
	return trackHandler(service.DocumentService.TrackDownload, docSvc)
}

func trackHandler(track func(service.DocumentService, context.Context, string) error, docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := track(docSvc, c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadDocument accepts a multipart upload (field name: file) plus catalog
// metadata form fields.
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		meta := service.UploadMeta{
			Name:        c.FormValue("name"),
			Slug:        c.FormValue("slug"),
			Description: c.FormValue("description"),
			Agency:      c.FormValue("agency"),
			Categories:  splitList(c.FormValue("categories")),
			Tags:        splitList(c.FormValue("tags")),
			Featured:    c.FormValue("featured") == "true",
		}
		if meta.ReleaseDate, err = parseDate(c.FormValue("release_date")); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "invalid release_date")
		}
		if meta.Deadline, err = parseDate(c.FormValue("deadline")); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "invalid deadline")
		}

		doc, err := docSvc.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size, meta)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// DeleteDocument removes a document by ID.
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		// Bare dates are accepted too.
		t, err = time.Parse("2006-01-02", v)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}
