package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"ginkit/internal/audit"
	apperrors "ginkit/internal/errors"
)

// Gin context keys set by Bearer.
const (
	ContextUserID = "userID"
	ContextRoles  = "roles"
	ContextClaims = "claims"
)

// Bearer verifies the Authorization header and stores the caller on the
// gin context. The request context also carries the user id so that gorm
// operations run with c.Request.Context() are attributed to the caller.
func Bearer(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			fail(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := issuer.Validate(strings.TrimSpace(token))
		if err != nil {
			fail(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRoles, claims.Roles)
		c.Set(ContextClaims, claims)
		c.Request = c.Request.WithContext(audit.WithUserID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// RequireRole aborts with ErrForbidden unless the caller holds role.
// It must run after Bearer.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			fail(c, apperrors.ErrUnauthorized)
			return
		}
		if !claims.HasRole(role) {
			fail(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or ErrUnauthorized.
func UserID(c *gin.Context) (string, error) {
	id := c.GetString(ContextUserID)
	if id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}

// ClaimsFrom returns the claims stored by Bearer.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
