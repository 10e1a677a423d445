package models

import (
	"time"
)

// Customer represents a buyer account.
type Customer struct {
	BaseModel
	Email       string    `gorm:"size:255;uniqueIndex" json:"email"`
	Password    string    `json:"-"`
	Name        string    `json:"name"`
	PhoneNumber string    `gorm:"size:20;uniqueIndex" json:"phone_number"`
	Addresses   []Address `json:"addresses,omitempty"`
	Orders      []Order   `json:"orders,omitempty"`
}

// SMSVerification keeps track of OTP codes sent to phone numbers.
type SMSVerification struct {
	BaseModel
	Phone     string     `gorm:"size:20;index" json:"phone"`
	Code      string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Attempts  int        `json:"attempts"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}
