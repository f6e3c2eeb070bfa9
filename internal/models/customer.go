package models

// Customer is a buyer that places orders.
type Customer struct {
	Base
	Name   string  `gorm:"size:200;not null" json:"name"`
	Email  string  `gorm:"size:255;index" json:"email"`
	Phone  string  `gorm:"size:50" json:"phone"`
	Orders []Order `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
}
