package models

import "github.com/google/uuid"

// Cart is created together with its user; there is exactly one per user.
type Cart struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	CartItems []CartItem `json:"cartItems,omitempty"`
}

// CartItem is unique per (cart, product). Quantity is always at least 1.
type CartItem struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_items_cart_product;not null" json:"cartId"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_items_cart_product;not null" json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
}
