package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"
	"ginkit/internal/pagination"
)

// orderService handles order-related business logic.
type orderService struct {
	db        *gorm.DB
	customers CustomerServicer
}

// NewOrderService creates a new OrderServicer.
func NewOrderService(db *gorm.DB, customers CustomerServicer) OrderServicer {
	return &orderService{db: db, customers: customers}
}

// CreateOrder places a pending order for an existing customer.
func (s *orderService) CreateOrder(ctx context.Context, customerID, reference string, totalCents int64, currency, notes string) (*models.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "order reference is required")
	}
	if totalCents < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "order total cannot be negative")
	}
	if currency == "" {
		currency = "USD"
	}

	if _, err := s.customers.GetCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Unscoped().Model(&models.Order{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateReference
	}

	order := &models.Order{
		CustomerID: customerID,
		Reference:  reference,
		Status:     models.OrderStatusPending,
		TotalCents: totalCents,
		Currency:   strings.ToUpper(currency),
		Notes:      notes,
	}
	if err := db.Create(order).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return order, nil
}

// GetOrders retrieves a paginated list of orders, newest first.
func (s *orderService) GetOrders(ctx context.Context, page pagination.PageRequest, filter OrderFilter) (*pagination.PageResponse[models.Order], error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	result, err := pagination.Find[models.Order](query, page, "created_at DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &result, nil
}

// GetOrderByID retrieves an order by ID
func (s *orderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

// UpdateOrder moves the order to status (when allowed) and replaces notes.
func (s *orderService) UpdateOrder(ctx context.Context, id string, status *models.OrderStatus, notes *string) (*models.Order, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if status != nil && *status != order.Status {
		if !order.CanTransitionTo(*status) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidOrderStatus,
				"cannot move order from "+string(order.Status)+" to "+string(*status))
		}
		updates["status"] = *status
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(order).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return order, nil
}

// DeleteOrder soft-deletes a pending or cancelled order.
func (s *orderService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == models.OrderStatusPaid || order.Status == models.OrderStatusShipped {
		return apperrors.WithMessage(apperrors.ErrInvalidOrderStatus, "paid or shipped orders cannot be deleted")
	}

	if err := s.db.WithContext(ctx).Delete(order).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
