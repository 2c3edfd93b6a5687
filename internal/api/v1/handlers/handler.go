// Package handlers maps routes onto the stores, shaping every response as the
// uniform {success, data|error, message?, count?} envelope.
package handlers

import (
	"errors"

	"task-manager-go/internal/apperrors"
	"task-manager-go/internal/auth"
	"task-manager-go/internal/store"
	ws "task-manager-go/internal/websocket"
	"task-manager-go/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler bundles the injected dependencies for all route handlers.
// Cache and Hub are optional; nil disables them.
type Handler struct {
	Auth     *auth.Service
	Tasks    store.TaskStore
	Reviews  store.ReviewStore
	Validate *validator.Validate
	Cache    *redis.Client
	Hub      *ws.Hub
}

func New(authSvc *auth.Service, tasks store.TaskStore, reviews store.ReviewStore) *Handler {
	return &Handler{
		Auth:     authSvc,
		Tasks:    tasks,
		Reviews:  reviews,
		Validate: validator.New(),
	}
}

// ErrorHandler converts any error escaping a handler into the error envelope.
// Unexpected errors are logged and replaced with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"error":   fiberErr.Message,
		})
	}

	status := apperrors.StatusCode(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.ErrorLogger.Error("Unexpected error",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Error(err))
		message = "Something went wrong!"
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// userID returns the caller identity stored by the auth middleware.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
