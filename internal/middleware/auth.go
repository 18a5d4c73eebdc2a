package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/inkstone-labs/reader-backend/internal/config"
	"github.com/inkstone-labs/reader-backend/internal/dto"
)

// JWTProtected guards routes with the access token, read from the Authorization
// header or the access_token cookie. Refresh tokens are signed with the same
// key, so signature verification alone is not enough: the typ claim must say
// access. The token's site_id claim overrides whatever the site middleware
// resolved from the header.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		TokenLookup: "header:Authorization,cookie:access_token",
		AuthScheme:  "Bearer",
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return guardReject(c)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || claims["typ"] != "access" {
				return guardReject(c)
			}
			if siteID, ok := claims["site_id"].(string); ok && siteID != "" {
				c.Locals("site_id", siteID)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return guardReject(c)
		},
	})
}

func guardReject(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Code:    "UNAUTHORIZED",
		Message: "Unauthorized: invalid or expired token",
	})
}
