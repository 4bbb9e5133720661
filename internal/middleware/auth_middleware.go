package middleware

import (
	"strings"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the JWT, checks the strict-session token version
// against the DB and stores the resulting Actor in the request context.
// Downstream code receives the actor explicitly; nothing reads session
// state from anywhere else.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
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

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}

		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		c.Locals("actor", user.ToActor())
		return c.Next()
	}
}

// ActorFromCtx returns the actor set by RequireAuth.
func ActorFromCtx(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals("actor").(model.Actor)
	return actor, ok
}

// RequirePermission checks the authenticated actor for a capability tag.
// Admins pass every check.
func RequirePermission(code string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromCtx(c)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No actor found"})
		}

		if !actor.HasPermission(code) {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + code + "' permission",
			})
		}
		return c.Next()
	}
}

// RequireAdmin restricts a route to admin actors.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromCtx(c)
		if !ok || !actor.IsAdmin() {
			return c.Status(403).JSON(fiber.Map{"error": "Forbidden: admin role required"})
		}
		return c.Next()
	}
}
