package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const Version = "1.0.0"

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Task Manager API is running",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
	})
}

// Index lists the available endpoints, mirroring the health surface.
func (h *Handler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Task Manager API with Authentication",
		"version": Version,
		"endpoints": fiber.Map{
			"authentication": fiber.Map{
				"POST /api/auth/register": "Register a new user",
				"POST /api/auth/login":    "Login user",
			},
			"tasks": fiber.Map{
				"GET /api/tasks":        "Get user tasks (protected)",
				"GET /api/tasks/:id":    "Get a specific task (protected)",
				"POST /api/tasks":       "Create a new task (protected)",
				"PUT /api/tasks/:id":    "Update a task (protected)",
				"DELETE /api/tasks/:id": "Delete a task (protected)",
				"DELETE /api/tasks":     "Delete all user tasks (protected)",
			},
			"reviews": fiber.Map{
				"GET /api/reviews/:taskId": "Get reviews for a task",
				"POST /api/reviews":        "Create a review (protected)",
			},
			"system": fiber.Map{
				"GET /api/health": "Health check",
			},
		},
	})
}
