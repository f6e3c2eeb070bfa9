package models

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a purchase placed by a customer. Amounts are in cents.
type Order struct {
	Base
	CustomerID string      `gorm:"type:uuid;not null;index" json:"customer_id"`
	Reference  string      `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	Status     OrderStatus `gorm:"size:20;not null;default:pending" json:"status"`
	TotalCents int64       `gorm:"not null" json:"total_cents"`
	Currency   string      `gorm:"size:3;not null;default:USD" json:"currency"`
	Notes      string      `gorm:"type:text" json:"notes,omitempty"`
}

// CanTransitionTo reports whether the order may move to next.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	switch o.Status {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	}
	return false
}
