package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// OrderList is one admin page of orders plus counts per status.
type OrderList struct {
	Orders         []models.Order
	TotalOrders    int64
	CountsByStatus map[models.OrderStatus]int64
}

// OrderService exposes order administration.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService constructs OrderService.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// AdminList returns orders whose customer name contains search, newest first,
// expanded with customer, address and line items.
func (s *OrderService) AdminList(ctx context.Context, search string, pg utils.Pagination) (*OrderList, error) {
	db := s.db.WithContext(ctx)
	list := &OrderList{CountsByStatus: make(map[models.OrderStatus]int64, len(models.OrderStatuses))}

	if err := db.Model(&models.Order{}).Count(&list.TotalOrders).Error; err != nil {
		return nil, err
	}

	var statusCounts []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	for _, status := range models.OrderStatuses {
		list.CountsByStatus[status] = 0
	}
	for _, sc := range statusCounts {
		list.CountsByStatus[sc.Status] = sc.Count
	}

	query := db.Model(&models.Order{}).
		Joins("JOIN users ON users.id = orders.user_id").
		Preload("User").
		Preload("Address", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Order("orders.created_at desc")
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where(likeClause("users.full_name"), likePattern(search))
	}

	orders := make([]models.Order, 0)
	if err := paginate(query, pg).Find(&orders).Error; err != nil {
		return nil, err
	}
	list.Orders = orders
	return list, nil
}

// ChangeStatus moves an order to status.
func (s *OrderService) ChangeStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.BadRequest("unknown order status %q", status)
	}

	db := s.db.WithContext(ctx)
	var order models.Order
	if err := db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, err
	}

	if err := db.Model(&order).Update("status", status).Error; err != nil {
		return nil, err
	}
	order.Status = status
	return &order, nil
}
