package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/service/handshake"
)

// DeviceAuth validates the Bearer session token minted by the handshake
// service and populates c.Locals with the authenticated organization and
// device, the fiber-local analog of the teacher's AuthRequired.
func DeviceAuth(svc *handshake.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization header format"})
		}

		claims, err := svc.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired session token"})
		}

		c.Locals("org", domain.OrganizationID(claims.Org))
		c.Locals("device", domain.DeviceID(claims.Device))

		return c.Next()
	}
}
