package models

type Category struct {
	BaseModel
	Name     string    `gorm:"uniqueIndex;not null" json:"name"`
	Products []Product `json:"products,omitempty"`
}
