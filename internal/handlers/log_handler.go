package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zapcore"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"
	"ginkit/internal/services"
)

// LogHandler exposes log records persisted to the database.
type LogHandler struct {
	logService services.LogServicer
}

// NewLogHandler creates a new LogHandler
func NewLogHandler(logService services.LogServicer) *LogHandler {
	return &LogHandler{logService: logService}
}

// LogQuery holds the log listing filters.
type LogQuery struct {
	Level string `form:"level"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// LogsResponse wraps log records.
type LogsResponse struct {
	Logs []models.LogRecord `json:"logs"`
}

// RecentLogs lists the newest log records
// @Summary     Recent log records
// @Description Admin only. Lists records at or above level, newest first.
// @Tags        logs
// @Produce     json
// @Security    BearerAuth
// @Param       level query string false "Minimum level (debug, info, warn, error)" default(info)
// @Param       limit query int    false "Maximum records" default(100)
// @Success     200 {object} LogsResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /logs [get]
func (h *LogHandler) RecentLogs(c *gin.Context) {
	var q LogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if q.Limit == 0 {
		q.Limit = 100
	}

	level := zapcore.InfoLevel
	if q.Level != "" {
		parsed, err := zapcore.ParseLevel(q.Level)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid level"))
			return
		}
		level = parsed
	}

	records, err := h.logService.RecentLogs(c.Request.Context(), level, q.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if records == nil {
		records = []models.LogRecord{}
	}

	c.JSON(http.StatusOK, LogsResponse{Logs: records})
}
