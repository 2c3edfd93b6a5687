package handlers

import (
	"task-manager-go/internal/apperrors"
	"task-manager-go/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,excludesall=@?"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Username, email, and password are required")
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return apperrors.Validation("Username, email, and password are required")
	}

	user, token, err := h.Auth.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("User registered successfully", zap.String("userID", user.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":  user,
			"token": token,
		},
		"message": "User registered successfully",
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Email and password are required")
	}
	if err := h.Validate.Struct(req); err != nil {
		return apperrors.Validation("Email and password are required")
	}

	user, token, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		logger.SecurityLogger.Warn("Failed login", zap.String("email", req.Email))
		return err
	}

	logger.AuditLogger.Info("Login success", zap.String("userID", user.ID))
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":  user,
			"token": token,
		},
		"message": "Login successful",
	})
}
