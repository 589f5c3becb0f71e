package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// AdminHandler provides user administration.
type AdminHandler struct {
	users *services.UserService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(users *services.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

type editUserRequest struct {
	FullName    *string `json:"fullName" validate:"omitnil,min=4,max=30"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitnil,mobile"`
	Role        *string `json:"role" validate:"omitnil,oneof=USER ADMIN"`
}

// ListUsers returns users with role totals.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, false)
	list, err := h.users.AdminList(c.UserContext(), c.Query("search"), pg)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"users": list.Users,
		"skip":  pg.Skip,
		"limit": pg.LimitValue(),
		"metadata": fiber.Map{
			"totalUsers":     list.TotalUsers,
			"numberOfUsers":  list.NumberOfUsers,
			"numberOfAdmins": list.NumberOfAdmins,
		},
	})
}

// EditUser changes a user's name, phone number or role.
func (h *AdminHandler) EditUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req editUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	patch := services.UserPatch{FullName: req.FullName, PhoneNumber: req.PhoneNumber}
	if req.Role != nil {
		role := models.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.users.Edit(c.UserContext(), id, patch)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "user updated successfully",
		"user":    user,
	})
}
