package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/service"

	"github.com/gofiber/fiber/v3"
)

const claimsKey = "claims"

type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthRequired verifies the bearer token and stores its claims on the request.
// A revocation lookup that errors is logged and the token is accepted.
func AuthRequired(jwtService *service.JWTService, revocations RevocationChecker) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
			})
		}

		claims, err := jwtService.VerifyToken(strings.TrimSpace(tokenString))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		if revocations != nil {
			revoked, err := revocations.IsTokenRevoked(c.Context(), claims.ID)
			if err != nil {
				log.Printf("Warning: Failed to check revocation for token %s: %v", claims.ID, err)
			} else if revoked {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Token has been revoked",
				})
			}
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

func Claims(c fiber.Ctx) *service.Claims {
	claims, _ := c.Locals(claimsKey).(*service.Claims)
	return claims
}

// UserID returns the authenticated user's id, or "" on public routes.
func UserID(c fiber.Ctx) string {
	if claims := Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func IsAdmin(c fiber.Ctx) bool {
	claims := Claims(c)
	return claims != nil && claims.Role == models.RoleAdmin
}

func AdminRequired() fiber.Handler {
	return func(c fiber.Ctx) error {
		if !IsAdmin(c) {
			log.Println("Admin required, denied", c.Method(), c.OriginalURL(), "from", c.IP())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin permission required",
			})
		}
		return c.Next()
	}
}

// OwnerOrAdminRequired allows the user named by the route parameter, or an admin.
func OwnerOrAdminRequired(param string) fiber.Handler {
	return func(c fiber.Ctx) error {
		owner := c.Params(param)
		if owner == "" || (UserID(c) != owner && !IsAdmin(c)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
