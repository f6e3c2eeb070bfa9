package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/logger"
)

// Recovery recovers from panics in later handlers, logs the stack and
// responds with the standard JSON error body.
func Recovery(opts ErrorOptions) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Get().Errorw("panic recovered",
			"panic", fmt.Sprint(recovered),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", RequestID(c),
			"stack", string(debug.Stack()),
		)
		c.AbortWithStatusJSON(apperrors.ErrInternalServer.StatusCode,
			errorBody(c, apperrors.ErrInternalServer, fmt.Sprint(recovered), opts.IncludeDetail))
	})
}
