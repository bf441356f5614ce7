package handler

import (
	"errors"

	"go-restaurant-sync/internal/replica"
	"go-restaurant-sync/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Pin string `json:"pin"`
}

// Login handles PIN authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Pin == "" {
		return c.Status(400).JSON(fiber.Map{"error": "PIN is required"})
	}

	response, err := h.authService.Login(req.Pin)
	if err != nil {
		if errors.Is(err, replica.ErrNotLoaded) {
			return c.Status(503).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// Me returns the identity stored in the token
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals("user_id")
	if userID == nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.JSON(fiber.Map{
		"id":   userID,
		"name": c.Locals("user_name"),
		"role": c.Locals("role"),
	})
}
