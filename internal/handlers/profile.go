package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/middleware"
)

// ProfileHandler serves the authenticated user's own data.
type ProfileHandler struct{}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// GetMe returns the current user.
func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("log in to access this route")
	}
	return respond(c, fiber.StatusOK, fiber.Map{"user": user})
}
