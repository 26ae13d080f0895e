package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/auth"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
)

const (
	localUserID   = "userID"
	localUsername = "username"
	localUserRole = "userRole"
)

func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// media endpoints load from <img>/<video> tags that cannot set
	// headers, so the token may also arrive as a query parameter
	return c.Query("token")
}

// Required rejects requests without a valid access token.
func Required(jwtService *auth.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("authentication required"))
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("invalid or expired token"))
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localUsername, claims.Username)
		c.Locals(localUserRole, claims.Role)
		return c.Next()
	}
}

// Optional attaches identity when a valid token is present but lets
// anonymous requests through.
func Optional(jwtService *auth.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := extractToken(c); token != "" {
			if claims, err := jwtService.ValidateToken(token); err == nil {
				c.Locals(localUserID, claims.UserID)
				c.Locals(localUsername, claims.Username)
				c.Locals(localUserRole, claims.Role)
			}
		}
		return c.Next()
	}
}

// AdminOnly requires an authenticated admin. Must run after Required.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetUserRole(c).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail("admin access required"))
		}
		return c.Next()
	}
}

// GetUserID returns the authenticated user's ID, zero when anonymous.
func GetUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(localUserID).(uint); ok {
		return id
	}
	return 0
}

func GetUsername(c *fiber.Ctx) string {
	if name, ok := c.Locals(localUsername).(string); ok {
		return name
	}
	return ""
}

func GetUserRole(c *fiber.Ctx) domain.Role {
	if role, ok := c.Locals(localUserRole).(domain.Role); ok {
		return role
	}
	return ""
}
