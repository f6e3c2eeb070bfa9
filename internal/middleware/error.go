package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/logger"
)

// ErrorOptions controls how ErrorHandler renders unexpected errors.
type ErrorOptions struct {
	// IncludeDetail exposes the underlying error text of non-AppErrors in
	// the response body. Enable only in development.
	IncludeDetail bool
}

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent JSON error responses. AppErrors are returned with
// their code and message; unexpected errors are logged and return a generic
// internal error.
func ErrorHandler(opts ErrorOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// The last error is the most relevant one in a middleware chain.
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
					"request_id", RequestID(c),
				)
			}
			c.JSON(appErr.StatusCode, errorBody(c, appErr, "", false))
			return
		}

		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", RequestID(c),
		)
		c.JSON(apperrors.ErrInternalServer.StatusCode,
			errorBody(c, apperrors.ErrInternalServer, err.Error(), opts.IncludeDetail))
	}
}

func errorBody(c *gin.Context, appErr *apperrors.AppError, detail string, includeDetail bool) gin.H {
	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if includeDetail && detail != "" {
		body["detail"] = detail
	}
	if id := RequestID(c); id != "" {
		body["request_id"] = id
	}
	return gin.H{"error": body}
}
