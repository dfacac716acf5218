// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts user identity set by Gateway.
// It is applied only to routes under /s/ — but for safety, we guard.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userEmail := c.Get("X-User-Email")

		path := c.Path()
		isSecured := strings.HasPrefix(path, "/s/")
		if isSecured && userEmail == "" {
			log.Printf("❌ [USER_CTX] X-User-Email required but missing on secured route: %s", path)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-Email — request must come through gateway with auth context",
			})
		}

		// Attach to ctx for handlers
		c.Locals("user_email", strings.ToLower(strings.TrimSpace(userEmail)))

		return c.Next()
	}
}
