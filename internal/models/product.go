package models

import "github.com/google/uuid"

type Product struct {
	BaseModel
	Name        string      `gorm:"uniqueIndex;not null" json:"name"`
	Description string      `json:"description"`
	Price       int64       `gorm:"not null" json:"price"`
	Image       string      `json:"image"`
	CategoryID  uuid.UUID   `gorm:"type:uuid;index;not null" json:"categoryId"`
	Category    *Category   `json:"category,omitempty"`
	IsActive    bool        `gorm:"not null;default:true" json:"isActive"`
	OrderItems  []OrderItem `json:"orderItems,omitempty"`
}
