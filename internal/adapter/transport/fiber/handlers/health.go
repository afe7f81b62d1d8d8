package handlers

import "github.com/gofiber/fiber/v2"

// Health answers the liveness probe with a fixed "OK"; it does not check
// storage or blockstore reachability.
func Health(c *fiber.Ctx) error {
	return c.SendString("OK")
}
