package models

import "time"

// Board is a customer question on a product, answered by the owning company.
type Board struct {
	BaseModel
	ProductID  uint       `gorm:"index" json:"product_id"`
	CustomerID uint       `gorm:"index" json:"customer_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Answer     string     `json:"answer"`
	AnsweredAt *time.Time `json:"answered_at"`
}
