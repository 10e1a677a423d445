package models

import "time"

type Product struct {
	BaseModel
	CompanyID   uint           `gorm:"index" json:"company_id"`
	Company     *Company       `json:"company,omitempty"`
	Name        string         `json:"name"`
	Price       int            `json:"price"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Size        string         `json:"size"`
	Stock       int            `json:"stock"`
	Thumbnail   string         `json:"thumbnail"`
	ModelURL    string         `json:"model_url"`
	Approved    bool           `gorm:"index" json:"approved"`
	ApprovedAt  *time.Time     `json:"approved_at"`
	Images      []ProductImage `json:"images,omitempty"`
}

type ProductImage struct {
	BaseModel
	ProductID uint   `gorm:"index" json:"product_id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}
