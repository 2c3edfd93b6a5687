package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"task-manager-go/internal/apperrors"
	"task-manager-go/internal/models"
	"task-manager-go/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const taskCacheTTL = time.Hour

func taskCacheKey(id string) string {
	return fmt.Sprintf("task:%s", id)
}

func (h *Handler) cacheGet(ctx context.Context, id string) (*models.Task, bool) {
	if h.Cache == nil {
		return nil, false
	}
	cached, err := h.Cache.Get(ctx, taskCacheKey(id)).Result()
	if err != nil {
		return nil, false
	}
	var task models.Task
	if err := json.Unmarshal([]byte(cached), &task); err != nil {
		return nil, false
	}
	return &task, true
}

// cacheSet and cacheDel are best-effort: a cache failure never fails a request.
func (h *Handler) cacheSet(ctx context.Context, task *models.Task) {
	if h.Cache == nil {
		return
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := h.Cache.SetEX(ctx, taskCacheKey(task.ID), payload, taskCacheTTL).Err(); err != nil {
		logger.ErrorLogger.Error("Error caching task", zap.Error(err))
	}
}

func (h *Handler) cacheDel(ctx context.Context, id string) {
	if h.Cache == nil {
		return
	}
	h.Cache.Del(ctx, taskCacheKey(id))
}

func (h *Handler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.Tasks.List(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	for i := range tasks {
		h.cacheSet(c.UserContext(), &tasks[i])
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    tasks,
		"count":   len(tasks),
	})
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	id := c.Params("id")

	if task, ok := h.cacheGet(c.UserContext(), id); ok {
		// Ownership still applies to cached records.
		if task.UserID != userID(c) {
			return apperrors.NotFound("Task not found")
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    task,
		})
	}

	task, err := h.Tasks.Get(c.UserContext(), userID(c), id)
	if err != nil {
		return err
	}
	h.cacheSet(c.UserContext(), task)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    task,
	})
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	type TaskRequest struct {
		Text string `json:"text"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Task text is required")
	}

	task, err := h.Tasks.Create(c.UserContext(), userID(c), req.Text)
	if err != nil {
		return err
	}
	h.cacheSet(c.UserContext(), task)
	h.Hub.Publish("task.created", task)

	logger.AuditLogger.Info("Task created successfully", zap.String("taskID", task.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    task,
		"message": "Task created successfully",
	})
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	// Pointer fields so absent and empty are distinguishable.
	type UpdateTaskRequest struct {
		Text      *string `json:"text"`
		Completed *bool   `json:"completed"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}

	task, err := h.Tasks.Update(c.UserContext(), userID(c), c.Params("id"), req.Text, req.Completed)
	if err != nil {
		return err
	}
	h.cacheDel(c.UserContext(), task.ID)
	h.cacheSet(c.UserContext(), task)
	h.Hub.Publish("task.updated", task)

	logger.AuditLogger.Info("Task updated", zap.String("taskID", task.ID))
	return c.JSON(fiber.Map{
		"success": true,
		"data":    task,
		"message": "Task updated successfully",
	})
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	task, err := h.Tasks.Delete(c.UserContext(), userID(c), c.Params("id"))
	if err != nil {
		return err
	}
	h.cacheDel(c.UserContext(), task.ID)
	h.Hub.Publish("task.deleted", task)

	logger.AuditLogger.Info("Task deleted", zap.String("taskID", task.ID))
	return c.JSON(fiber.Map{
		"success": true,
		"data":    task,
		"message": "Task deleted successfully",
	})
}

func (h *Handler) ClearTasks(c *fiber.Ctx) error {
	owner := userID(c)

	// Drop cache entries before the records disappear from the store.
	if h.Cache != nil {
		tasks, err := h.Tasks.List(c.UserContext(), owner)
		if err == nil {
			for _, t := range tasks {
				h.cacheDel(c.UserContext(), t.ID)
			}
		}
	}

	count, err := h.Tasks.Clear(c.UserContext(), owner)
	if err != nil {
		return err
	}
	h.Hub.Publish("task.cleared", fiber.Map{"userId": owner, "count": count})

	logger.AuditLogger.Info("Tasks cleared", zap.String("userID", owner), zap.Int("count", count))
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Deleted %d tasks successfully", count),
	})
}
