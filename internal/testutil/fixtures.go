package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"ginkit/internal/audit"
	"ginkit/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// ActorContext returns a context carrying userID as the acting user.
func ActorContext(userID string) context.Context {
	return audit.WithUserID(context.Background(), userID)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email, models.RoleUser)
}

// CreateTestUserWithEmail creates a user with the given email and roles.
// The password is always "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email, roles string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
		Roles:    roles,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCustomer creates a customer with a unique name.
func CreateTestCustomer(t *testing.T, db *gorm.DB) *models.Customer {
	t.Helper()

	n := nextID()
	customer := &models.Customer{
		Name:  fmt.Sprintf("Test Customer %d", n),
		Email: fmt.Sprintf("customer%d@test.com", n),
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("failed to create test customer: %v", err)
	}
	return customer
}

// CreateTestOrder creates a pending order for the customer.
func CreateTestOrder(t *testing.T, db *gorm.DB, customerID string, totalCents int64) *models.Order {
	t.Helper()

	order := &models.Order{
		CustomerID: customerID,
		Reference:  fmt.Sprintf("ORD-%06d", nextID()),
		Status:     models.OrderStatusPending,
		TotalCents: totalCents,
		Currency:   "USD",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to create test order: %v", err)
	}
	return order
}
