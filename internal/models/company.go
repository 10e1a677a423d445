package models

// Company represents a seller account. Products registered by a company stay
// hidden from customers until an admin approves them.
type Company struct {
	BaseModel
	Email          string    `gorm:"size:255;uniqueIndex" json:"email"`
	Password       string    `json:"-"`
	Name           string    `json:"name"`
	PhoneNumber    string    `gorm:"size:20;uniqueIndex" json:"phone_number"`
	BusinessNumber string    `json:"business_number"`
	AccountNumber  string    `json:"account_number"`
	AccountHolder  string    `json:"account_holder"`
	AccountBank    string    `json:"account_bank"`
	Products       []Product `json:"products,omitempty"`
}

// Admin is an operator allowed to approve products.
type Admin struct {
	BaseModel
	Email    string `gorm:"size:255;uniqueIndex" json:"email"`
	Password string `json:"-"`
	Name     string `json:"name"`
}
