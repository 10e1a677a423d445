package models

const (
	OrderDetailPaid     = "paid"
	OrderDetailShipping = "shipping"
	OrderDetailRefunded = "refunded"
)

type Order struct {
	BaseModel
	CustomerID      uint          `gorm:"index" json:"customer_id"`
	AddressID       *uint         `json:"address_id"`
	Recipient       string        `json:"recipient"`
	DeliveryAddress string        `json:"delivery_address"`
	TotalPrice      int           `json:"total_price"`
	Details         []OrderDetail `json:"details,omitempty"`
}

type OrderDetail struct {
	BaseModel
	OrderID        uint     `gorm:"index" json:"order_id"`
	Order          *Order   `json:"order,omitempty"`
	ProductID      uint     `gorm:"index" json:"product_id"`
	Product        *Product `json:"product,omitempty"`
	Count          int      `json:"count"`
	Price          int      `json:"price"`
	Status         string   `json:"status"`
	DeliveryNumber string   `json:"delivery_number"`
	Reviews        []Review `json:"reviews,omitempty"`
}

type Review struct {
	BaseModel
	OrderID       uint   `gorm:"index" json:"order_id"`
	OrderDetailID uint   `gorm:"index" json:"order_detail_id"`
	ProductID     uint   `gorm:"index" json:"product_id"`
	CustomerID    uint   `gorm:"index" json:"customer_id"`
	Rating        int    `json:"rating"`
	Content       string `json:"content"`
}
