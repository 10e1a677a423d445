package models

// Address is a customer's delivery address. Exactly one of Road and Land is set.
type Address struct {
	BaseModel
	CustomerID  uint    `gorm:"index" json:"customer_id"`
	Name        string  `json:"name"`
	Recipient   string  `json:"recipient"`
	PhoneNumber string  `json:"phone_number"`
	Road        *string `json:"road"`
	Land        *string `json:"land"`
	Detail      string  `json:"detail"`
	Zipcode     string  `json:"zipcode"`
	IsDefault   bool    `json:"is_default"`
}
