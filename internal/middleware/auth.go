package middleware

import (
	"task-manager-go/internal/auth"
	"task-manager-go/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequireToken validates the Authorization header and stores the caller's
// identity in locals for downstream handlers.
func RequireToken(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.ParseBearer(c.Get("Authorization"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Access token required",
			})
		}
		claims, err := svc.Verify(token)
		if err != nil {
			logger.SecurityLogger.Warn("Rejected bearer token",
				zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired token",
			})
		}
		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}
