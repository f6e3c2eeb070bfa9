// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"

	"ginkit/internal/audit"
	"ginkit/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("iso4217", validateISO4217)
	_ = v.RegisterValidation("action_kind", validateActionKind)
	_ = v.RegisterValidation("order_status", validateOrderStatus)
}

func validateISO4217(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 3 || code != strings.ToUpper(code) {
		return false
	}
	_, err := currency.ParseISO(code)
	return err == nil
}

func validateActionKind(fl validator.FieldLevel) bool {
	_, err := audit.ParseActionKind(fl.Field().String())
	return err == nil
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	switch models.OrderStatus(fl.Field().String()) {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusCancelled:
		return true
	}
	return false
}
