// Package errors provides custom error types for ginkit.
// Service, middleware and audit errors use AppError so the JSON error
// middleware can render a consistent body without leaking internal details.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so wrapped
// copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrInvalidAPIKey      = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// Token endpoint errors.
var (
	ErrUnsupportedGrant  = &AppError{Code: "UNSUPPORTED_GRANT_TYPE", Message: "The grant type is not supported", StatusCode: http.StatusBadRequest}
	ErrInvalidGrant      = &AppError{Code: "INVALID_GRANT", Message: "The user name or password is incorrect", StatusCode: http.StatusBadRequest}
	ErrInsecureTransport = &AppError{Code: "INSECURE_TRANSPORT", Message: "HTTPS is required", StatusCode: http.StatusBadRequest}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrRateLimited    = &AppError{Code: "RATE_LIMITED", Message: "Too many requests", StatusCode: http.StatusTooManyRequests}
)

// Audit errors.
var (
	ErrInvalidAction = &AppError{Code: "INVALID_ARGUMENT", Message: "Unknown audit action kind", StatusCode: http.StatusBadRequest}
	ErrSerialization = &AppError{Code: "SERIALIZATION_FAILURE", Message: "Entity snapshot could not be serialized", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Customer errors.
var (
	ErrCustomerNotFound  = &AppError{Code: "CUSTOMER_NOT_FOUND", Message: "Customer not found", StatusCode: http.StatusNotFound}
	ErrCustomerHasOrders = &AppError{Code: "CUSTOMER_HAS_ORDERS", Message: "Customer has existing orders", StatusCode: http.StatusConflict}
)

// Order errors.
var (
	ErrOrderNotFound      = &AppError{Code: "ORDER_NOT_FOUND", Message: "Order not found", StatusCode: http.StatusNotFound}
	ErrDuplicateReference = &AppError{Code: "DUPLICATE_REFERENCE", Message: "An order with this reference already exists", StatusCode: http.StatusConflict}
	ErrInvalidOrderStatus = &AppError{Code: "INVALID_ORDER_STATUS", Message: "Unsupported order status transition", StatusCode: http.StatusBadRequest}
)
