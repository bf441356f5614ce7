package middleware

import (
	"strings"

	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(issuer *jwt.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := issuer.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_name", claims.Name)
		c.Locals("role", model.Role(claims.RoleCode))

		return c.Next()
	}
}

// RequireSection checks that the authenticated user's role owns section
func RequireSection(section model.Section) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(model.Role)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}

		if !role.CanAccess(section) {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: role '" + string(role) + "' cannot access '" + string(section) + "'",
			})
		}
		return c.Next()
	}
}
