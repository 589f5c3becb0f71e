package models

import (
	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCanceled   OrderStatus = "CANCELED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCanceled}

// TerminalOrderStatuses are the states after which an order no longer pins its address.
var TerminalOrderStatuses = []OrderStatus{OrderDelivered, OrderCanceled}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Order struct {
	BaseModel
	UserID     uuid.UUID   `gorm:"type:uuid;index;not null" json:"userId"`
	User       *User       `json:"user,omitempty"`
	AddressID  uuid.UUID   `gorm:"type:uuid;index;not null" json:"addressId"`
	Address    *Address    `json:"address,omitempty"`
	Status     OrderStatus `gorm:"type:varchar(16);index;not null;default:PENDING" json:"status"`
	OrderItems []OrderItem `json:"orderItems,omitempty"`
}

// OrderItem snapshots the product, quantity and unit price at checkout time.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unitPrice"`
}
