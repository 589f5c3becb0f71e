package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// ReplacementCategoryHeader names the category that inherits the products
// of a deleted one. The newCategoryId query parameter works as well.
const ReplacementCategoryHeader = "newCategoryId"

// CatalogHandler manages product categories.
type CatalogHandler struct {
	categories *services.CategoryService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(categories *services.CategoryService) *CatalogHandler {
	return &CatalogHandler{categories: categories}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=3,max=25"`
}

// ListCategories returns categories with their product counts.
// limit=unlimited returns every category.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, true)
	list, err := h.categories.List(c.UserContext(), c.Query("search"), pg)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"categories": list.Categories,
		"skip":       pg.Skip,
		"limit":      pg.LimitValue(),
		"metadata": fiber.Map{
			"totalCategories": list.TotalCategories,
		},
	})
}

// CreateCategory persists a new category.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	category, err := h.categories.Create(c.UserContext(), req.Name)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, fiber.Map{
		"message":  "category created successfully",
		"category": category,
	})
}

// UpdateCategory renames an existing category.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	category, err := h.categories.Update(c.UserContext(), id, req.Name)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"message":  "category updated successfully",
		"category": category,
	})
}

// DeleteCategory removes a category, moving its products when a
// replacement is given.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	raw := strings.TrimSpace(c.Get(ReplacementCategoryHeader))
	if raw == "" {
		raw = strings.TrimSpace(c.Query(ReplacementCategoryHeader))
	}

	var replacement *uuid.UUID
	if raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return apperr.BadRequest("the new category id is invalid")
		}
		replacement = &parsed
	}

	if err := h.categories.Delete(c.UserContext(), id, replacement); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "category deleted successfully")
}
