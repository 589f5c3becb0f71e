package models

import (
	"time"
)

// Role distinguishes customers from administrators.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// OTP is the one-time password currently issued to a user. Only the bcrypt
// hash of the code is persisted.
type OTP struct {
	CodeHash  string     `json:"-"`
	ExpiresAt *time.Time `json:"-"`
}

// User represents an authenticated customer or administrator.
type User struct {
	BaseModel
	FullName    string    `json:"fullName"`
	PhoneNumber string    `gorm:"uniqueIndex;not null" json:"phoneNumber"`
	Role        Role      `gorm:"type:varchar(16);not null;default:USER" json:"role"`
	OTP         OTP       `gorm:"embedded;embeddedPrefix:otp_" json:"-"`
	Cart        *Cart     `json:"cart,omitempty"`
	Addresses   []Address `json:"addresses,omitempty"`
	Orders      []Order   `json:"orders,omitempty"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
