package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "ginkit/internal/errors"
)

// APIKey validates the X-API-Key header against key. An empty key
// disables the check.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			_ = c.Error(apperrors.ErrInvalidAPIKey)
			c.Abort()
			return
		}
		c.Next()
	}
}
