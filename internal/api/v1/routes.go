package v1

import (
	"task-manager-go/internal/api/v1/handlers"
	"task-manager-go/internal/apperrors"
	"task-manager-go/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *handlers.Handler) {
	app.Get("/", h.Index)

	api := app.Group("/api")

	// Auth
	api.Post("/auth/register", h.Register)
	api.Post("/auth/login", h.Login)

	// Task
	taskRoutes := api.Group("/tasks", middleware.RequireToken(h.Auth))
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)
	taskRoutes.Delete("/", h.ClearTasks)

	// Review
	api.Get("/reviews/:taskId", h.ListReviews)
	api.Post("/reviews", middleware.RequireToken(h.Auth), h.CreateReview)

	// System
	api.Get("/health", h.Health)

	// Everything else gets the 404 envelope.
	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NotFound("Endpoint not found")
	})
}
