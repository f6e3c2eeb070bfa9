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

// customerService handles customer-related business logic.
type customerService struct {
	db *gorm.DB
}

// NewCustomerService creates a new CustomerServicer.
func NewCustomerService(db *gorm.DB) CustomerServicer {
	return &customerService{db: db}
}

// CreateCustomer creates a new customer
func (s *customerService) CreateCustomer(ctx context.Context, name, email, phone string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "customer name is required")
	}

	customer := &models.Customer{
		Name:  name,
		Email: strings.ToLower(strings.TrimSpace(email)),
		Phone: strings.TrimSpace(phone),
	}
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return customer, nil
}

// GetCustomers retrieves a paginated list of customers, optionally filtered
// by a case-insensitive name or email search.
func (s *customerService) GetCustomers(ctx context.Context, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Customer], error) {
	query := s.db.WithContext(ctx).Model(&models.Customer{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	result, err := pagination.Find[models.Customer](query, page, "name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &result, nil
}

// GetCustomerByID retrieves a customer by ID
func (s *customerService) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &customer, nil
}

// UpdateCustomer applies the non-nil fields to the customer.
func (s *customerService) UpdateCustomer(ctx context.Context, id string, name, email, phone *string) (*models.Customer, error) {
	customer, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "customer name cannot be empty")
		}
		updates["name"] = trimmed
	}
	if email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*email))
	}
	if phone != nil {
		updates["phone"] = strings.TrimSpace(*phone)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(customer).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return customer, nil
}

// DeleteCustomer soft-deletes a customer that has no orders.
func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	customer, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)

	var orderCount int64
	if err := db.Model(&models.Order{}).Where("customer_id = ?", id).Count(&orderCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if orderCount > 0 {
		return apperrors.ErrCustomerHasOrders
	}

	if err := db.Delete(customer).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
