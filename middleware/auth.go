// middleware/auth.go
package middleware

import (
	"strings"

	"vampyr-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired validates the Authorization bearer token and attaches the
// authenticated account's user_id to the request context. Player tokens
// (issued to game clients on game login) are rejected here — a nickname-only
// identity must not reach account-scoped routes.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or malformed Authorization header",
			})
		}

		subject, err := utils.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		if utils.IsPlayerSubject(subject) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "player tokens cannot access account routes",
			})
		}

		c.Locals("user_id", subject)
		return c.Next()
	}
}
