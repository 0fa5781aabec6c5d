package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"pubdocs/internal/storage"
)

// presignExpiry is how long redirected download URLs stay valid.
const presignExpiry = 15 * time.Minute

// ServeFile serves object storage content under /files/*. This is the
// endpoint bare (legacy) file references resolve against. With presign
// enabled the handler redirects to a time-limited URL instead of proxying
// the bytes.
func ServeFile(store storage.Storage, presign bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		if key == "" {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
		}

		if presign {
			u, err := store.PresignGet(c.UserContext(), key, presignExpiry)
			if err != nil {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return c.Redirect(u, fiber.StatusFound)
		}

		rc, info, err := store.Get(c.UserContext(), key)
		if err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
		}

		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		if info.Size > 0 {
			c.Set(fiber.HeaderContentLength, strconv.FormatInt(info.Size, 10))
			return c.SendStream(rc, int(info.Size))
		}
		return c.SendStream(rc)
	}
}
