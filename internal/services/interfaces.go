package services

import (
	"context"
	"time"

	"go.uber.org/zap/zapcore"

	"ginkit/internal/audit"
	"ginkit/internal/models"
	"ginkit/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
}

// CustomerServicer defines the contract for customer-related business logic.
type CustomerServicer interface {
	CreateCustomer(ctx context.Context, name, email, phone string) (*models.Customer, error)
	GetCustomers(ctx context.Context, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Customer], error)
	GetCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, name, email, phone *string) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// OrderFilter holds optional filter parameters for listing orders.
type OrderFilter struct {
	CustomerID *string
	Status     *models.OrderStatus
}

// OrderServicer defines the contract for order-related business logic.
type OrderServicer interface {
	CreateOrder(ctx context.Context, customerID, reference string, totalCents int64, currency, notes string) (*models.Order, error)
	GetOrders(ctx context.Context, page pagination.PageRequest, filter OrderFilter) (*pagination.PageResponse[models.Order], error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, status *models.OrderStatus, notes *string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// AuditFilter holds optional filter parameters for listing audit entries.
type AuditFilter struct {
	TableName *string
	Action    *audit.ActionKind
	UserID    *string
	From      *time.Time
	To        *time.Time
}

// AuditServicer reads the audit trail.
type AuditServicer interface {
	ListEntries(ctx context.Context, page pagination.PageRequest, filter AuditFilter) (*pagination.PageResponse[models.AuditEntry], error)
	GetEntry(ctx context.Context, id string) (*models.AuditEntry, error)
}

// LogServicer reads persisted log records.
type LogServicer interface {
	RecentLogs(ctx context.Context, minLevel zapcore.Level, limit int) ([]models.LogRecord, error)
}
