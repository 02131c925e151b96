package middleware

import (
	"errors"
	"fmt"
	"strings"

	"sportshop/internal/models"
	"sportshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// bearerIdentity resolves an "Authorization: Bearer <token>" header to a user
// identity. It reports false when the request carries no Authorization header.
func bearerIdentity(c *fiber.Ctx, authService *services.AuthService) (models.Identity, bool, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return models.Identity{}, false, nil
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return models.Identity{}, true, fmt.Errorf("%w: Authorization header format must be 'Bearer <token>'", models.ErrUnauthorized)
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		return models.Identity{}, true, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	userID, err := services.UserIDFromClaims(claims)
	if err != nil {
		return models.Identity{}, true, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	// The token outlives role changes and deletions, so the account is reloaded.
	user, err := authService.GetUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.Identity{}, true, fmt.Errorf("%w: account no longer exists", models.ErrUnauthorized)
		}
		return models.Identity{}, true, err
	}
	return models.UserIdentity(user.ID, user.IsAdmin), true, nil
}

// AuthRequired rejects guests with 401.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetIdentity(c).IsUser() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		return c.Next()
	}
}

// AdminRequired rejects guests with 401 and non-admin users with 403.
func AdminRequired(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := GetIdentity(c)
		if err := id.RequireAdmin(); err != nil {
			if errors.Is(err, models.ErrForbidden) {
				logger.Warn("admin route refused", zap.Stringer("identity", id), zap.String("path", c.Path()))
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": "Admin access required",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		return c.Next()
	}
}
