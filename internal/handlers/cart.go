package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
)

// CartHandler serves the current user's cart.
type CartHandler struct {
	carts *services.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	cart, err := h.carts.Get(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"cart": cart})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	productID, err := parseID(c, "productId")
	if err != nil {
		return err
	}

	if err := h.carts.Add(c.UserContext(), user.ID, productID); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "product added to the cart")
}

func (h *CartHandler) Decrease(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	productID, err := parseID(c, "productId")
	if err != nil {
		return err
	}

	if err := h.carts.Decrease(c.UserContext(), user.ID, productID); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "product quantity decreased")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "cartItemId")
	if err != nil {
		return err
	}

	if err := h.carts.Remove(c.UserContext(), user.ID, itemID); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "product removed from the cart")
}

func requireUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, apperr.Unauthorized("log in to access this route")
	}
	return user, nil
}
