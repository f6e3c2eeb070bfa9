package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"
	"ginkit/internal/pagination"
	"ginkit/internal/services"
	"ginkit/internal/uuid"
)

// OrderHandler handles order-related requests
type OrderHandler struct {
	orderService services.OrderServicer
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService services.OrderServicer) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrderRequest represents the request body for placing an order
type CreateOrderRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	Reference  string `json:"reference" binding:"required,max=64"`
	TotalCents int64  `json:"total_cents" binding:"min=0"`
	Currency   string `json:"currency" binding:"omitempty,iso4217"`
	Notes      string `json:"notes" binding:"max=2000"`
}

// UpdateOrderRequest represents the request body for updating an order
type UpdateOrderRequest struct {
	Status *string `json:"status" binding:"omitempty,order_status"`
	Notes  *string `json:"notes" binding:"omitempty,max=2000"`
}

// OrderResponse wraps an order.
type OrderResponse struct {
	Order models.Order `json:"order"`
}

// CreateOrder handles order creation
// @Summary     Create order
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateOrderRequest true "Order details"
// @Success     201 {object} OrderResponse "Created order"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Customer not found"
// @Failure     409 {object} ErrorResponse "Duplicate reference"
// @Router      /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req.CustomerID, req.Reference, req.TotalCents, req.Currency, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, OrderResponse{Order: *order})
}

// GetOrders lists orders
// @Summary     List orders
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number"
// @Param       page_size   query int    false "Page size"
// @Param       customer_id query string false "Customer ID"
// @Param       status      query string false "Order status"
// @Success     200 {object} pagination.PageResponse[models.Order]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /orders [get]
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.OrderFilter
	if v := optionalQuery(c, "customer_id"); v != nil {
		if !uuid.IsValid(*v) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid customer_id"))
			return
		}
		filter.CustomerID = v
	}
	if v := optionalQuery(c, "status"); v != nil {
		status := models.OrderStatus(*v)
		switch status {
		case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusCancelled:
			filter.Status = &status
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status"))
			return
		}
	}

	result, err := h.orderService.GetOrders(c.Request.Context(), page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrderByID returns a single order
// @Summary     Get order
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} OrderResponse
// @Failure     400 {object} ErrorResponse "Invalid order ID"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/{id} [get]
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, OrderResponse{Order: *order})
}

// UpdateOrder changes status and notes
// @Summary     Update order
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Order ID"
// @Param       request body UpdateOrderRequest true "Fields to change"
// @Success     200 {object} OrderResponse
// @Failure     400 {object} ErrorResponse "Invalid input or status transition"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.OrderStatus
	if req.Status != nil {
		s := models.OrderStatus(*req.Status)
		status = &s
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), id, status, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, OrderResponse{Order: *order})
}

// DeleteOrder removes a pending or cancelled order
// @Summary     Delete order
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Order cannot be deleted"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Order deleted successfully"})
}
