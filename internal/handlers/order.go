package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// OrderHandler exposes order administration.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELED"`
}

// AdminList returns orders with per-status totals.
func (h *OrderHandler) AdminList(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, false)
	list, err := h.orders.AdminList(c.UserContext(), c.Query("search"), pg)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"orders": list.Orders,
		"skip":   pg.Skip,
		"limit":  pg.LimitValue(),
		"metadata": fiber.Map{
			"totalOrders":           list.TotalOrders,
			"totalPendingOrders":    list.CountsByStatus[models.OrderPending],
			"totalProcessingOrders": list.CountsByStatus[models.OrderProcessing],
			"totalShippedOrders":    list.CountsByStatus[models.OrderShipped],
			"totalDeliveredOrders":  list.CountsByStatus[models.OrderDelivered],
			"totalCanceledOrders":   list.CountsByStatus[models.OrderCanceled],
		},
	})
}

// ChangeStatus moves an order through its lifecycle.
func (h *OrderHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req changeStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.orders.ChangeStatus(c.UserContext(), id, models.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "order status changed successfully",
		"order":   order,
	})
}
