package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"
	"ginkit/internal/pagination"
	"ginkit/internal/services"
)

// CustomerHandler handles customer-related requests
type CustomerHandler struct {
	customerService services.CustomerServicer
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService services.CustomerServicer) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"omitempty,email,max=255"`
	Phone string `json:"phone" binding:"max=50"`
}

// UpdateCustomerRequest represents the request body for updating a customer
type UpdateCustomerRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=200"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
	Phone *string `json:"phone" binding:"omitempty,max=50"`
}

// CustomerResponse wraps a customer.
type CustomerResponse struct {
	Customer models.Customer `json:"customer"`
}

// CreateCustomer handles customer creation
// @Summary     Create customer
// @Tags        customers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCustomerRequest true "Customer details"
// @Success     201 {object} CustomerResponse "Created customer"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CustomerResponse{Customer: *customer})
}

// GetCustomers lists customers
// @Summary     List customers
// @Tags        customers
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Param       q         query string false "Name or email search"
// @Success     200 {object} pagination.PageResponse[models.Customer]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /customers [get]
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.customerService.GetCustomers(c.Request.Context(), page, c.Query("q"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCustomerByID returns a single customer
// @Summary     Get customer
// @Tags        customers
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Customer ID"
// @Success     200 {object} CustomerResponse
// @Failure     400 {object} ErrorResponse "Invalid customer ID"
// @Failure     404 {object} ErrorResponse "Customer not found"
// @Router      /customers/{id} [get]
func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, CustomerResponse{Customer: *customer})
}

// UpdateCustomer applies a partial update
// @Summary     Update customer
// @Tags        customers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Customer ID"
// @Param       request body UpdateCustomerRequest true "Fields to change"
// @Success     200 {object} CustomerResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Customer not found"
// @Router      /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, req.Name, req.Email, req.Phone)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, CustomerResponse{Customer: *customer})
}

// DeleteCustomer removes a customer without orders
// @Summary     Delete customer
// @Tags        customers
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Customer ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Customer not found"
// @Failure     409 {object} ErrorResponse "Customer has orders"
// @Router      /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Customer deleted successfully"})
}
