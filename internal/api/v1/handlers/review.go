package handlers

import (
	"task-manager-go/internal/apperrors"
	"task-manager-go/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *Handler) ListReviews(c *fiber.Ctx) error {
	reviews, err := h.Reviews.ListForTask(c.UserContext(), c.Params("taskId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    reviews,
		"count":   len(reviews),
	})
}

func (h *Handler) CreateReview(c *fiber.Ctx) error {
	type ReviewRequest struct {
		TaskID  string `json:"taskId"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Task ID and rating (1-5) are required")
	}

	review, err := h.Reviews.Create(c.UserContext(), userID(c), req.TaskID, req.Rating, req.Comment)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Review created successfully",
		zap.String("reviewID", review.ID), zap.String("taskID", review.TaskID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    review,
		"message": "Review created successfully",
	})
}
