package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/inkstone-labs/reader-backend/internal/dto"
	"github.com/inkstone-labs/reader-backend/internal/tenant"
)

// Paths that don't require site identification.
var siteSkipPaths = []string{
	"/api/health",
}

// SiteMiddleware resolves the tenant site from the X-Site-ID header or a query
// param, and rejects unknown sites. On routes behind JWTProtected the guard
// runs afterwards and overrides the local with the token's site_id claim, so
// the authenticated claim always wins.
func SiteMiddleware(registry *tenant.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		for _, skip := range siteSkipPaths {
			if strings.HasPrefix(path, skip) {
				return c.Next()
			}
		}

		siteID := c.Get("X-Site-ID")
		if siteID == "" {
			siteID = c.Query("site_id")
		}
		if siteID != "" {
			if !registry.Exists(siteID) {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Error:   true,
					Code:    "UNKNOWN_SITE",
					Message: "Invalid site id: " + siteID,
				})
			}
			c.Locals("site_id", siteID)
			return c.Next()
		}

		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Code:    "MISSING_SITE",
			Message: "X-Site-ID header is required",
		})
	}
}
