package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader carries the admin key for gated endpoints.
const APIKeyHeader = "X-API-Key"

// APIKey gates admin endpoints behind a static key. An empty configured key
// disables the gated endpoints entirely rather than leaving them open.
func APIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "admin endpoints disabled")
		}
		got := c.Get(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid api key")
		}
		return c.Next()
	}
}
