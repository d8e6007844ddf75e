package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/verifox/VeriFox/internal/pkg/config"
)

// APIKeyAuth guards the verification endpoints. A request passes with a
// matching x-api-key, or with the internal trust key in the apikey header
// for service-to-service calls. Comparison is constant-time.
func APIKeyAuth(cfg *config.Settings) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if matches(c.Get("x-api-key"), cfg.APIKey) {
			return c.Next()
		}
		if matches(c.Get("apikey"), cfg.InternalTrustKey) {
			return c.Next()
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Unauthorized: Invalid or missing API key",
		})
	}
}

func matches(provided, expected string) bool {
	if provided == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
