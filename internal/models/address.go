package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxAddressesPerUser caps how many addresses a single user may keep.
const MaxAddressesPerUser = 5

// Address is soft deleted so that finished orders keep pointing at the
// address they were shipped to.
type Address struct {
	BaseModel
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"userId"`
	Province    string         `json:"province"`
	City        string         `json:"city"`
	Address     string         `json:"address"`
	PhoneNumber string         `json:"phoneNumber"`
	HouseNumber int            `json:"houseNumber"`
	Floor       int            `json:"floor"`
	Unit        int            `json:"unit"`
	PostalCode  string         `gorm:"type:varchar(10)" json:"postalCode"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
