package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ginkit/internal/audit"
	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"
	"ginkit/internal/pagination"
	"ginkit/internal/services"
)

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// AuditQuery holds the audit listing filters.
type AuditQuery struct {
	pagination.PageRequest
	Table  string `form:"table" binding:"omitempty,max=128"`
	Action string `form:"action" binding:"omitempty,action_kind"`
	UserID string `form:"user_id" binding:"omitempty,max=64"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// AuditEntryResponse wraps an audit entry.
type AuditEntryResponse struct {
	Entry models.AuditEntry `json:"entry"`
}

// ListEntries lists audit entries
// @Summary     List audit entries
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Param       table     query string false "Entity type name, e.g. Order"
// @Param       action    query string false "Create, Update or Delete"
// @Param       user_id   query string false "Acting user"
// @Param       from      query string false "Inclusive lower bound (RFC3339 or YYYY-MM-DD)"
// @Param       to        query string false "Exclusive upper bound (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.AuditEntry]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /audit [get]
func (h *AuditHandler) ListEntries(c *gin.Context) {
	var q AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.AuditFilter
	if q.Table != "" {
		filter.TableName = &q.Table
	}
	if q.UserID != "" {
		filter.UserID = &q.UserID
	}
	if q.Action != "" {
		action, err := audit.ParseActionKind(q.Action)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.Action = &action
	}
	if q.From != "" {
		from, err := parseFlexibleTime(q.From)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from, use RFC3339 or YYYY-MM-DD"))
			return
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := parseFlexibleTime(q.To)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to, use RFC3339 or YYYY-MM-DD"))
			return
		}
		filter.To = &to
	}

	result, err := h.auditService.ListEntries(c.Request.Context(), q.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetEntry returns one audit entry
// @Summary     Get audit entry
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Audit entry ID"
// @Success     200 {object} AuditEntryResponse
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /audit/{id} [get]
func (h *AuditHandler) GetEntry(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.auditService.GetEntry(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuditEntryResponse{Entry: *entry})
}
