package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/logger"
)

var reservedFormFields = map[string]struct{}{
	"grant_type": {},
	"username":   {},
	"password":   {},
}

// TokenHandler serves the token endpoint. It accepts a form-encoded
// password grant and responds with a signed bearer token.
//
// @Summary     Issue an access token
// @Description Resource owner password grant. Extra form fields are passed to the identity resolver.
// @Tags        auth
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       grant_type formData string true "Grant type (password)"
// @Param       username   formData string true "User name"
// @Param       password   formData string true "Password"
// @Success     200 {object} Token
// @Failure     400 {object} handlers.ErrorResponse
// @Router      /token [post]
func TokenHandler(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !issuer.opts.AllowInsecureHTTP && !isSecure(c.Request) {
			fail(c, apperrors.ErrInsecureTransport)
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			fail(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "malformed form body"))
			return
		}

		form := c.Request.PostForm
		grantType := form.Get("grant_type")
		if grantType != GrantTypePassword {
			fail(c, apperrors.ErrUnsupportedGrant)
			return
		}

		username := strings.TrimSpace(form.Get("username"))
		password := form.Get("password")
		if username == "" || password == "" {
			fail(c, apperrors.ErrInvalidGrant)
			return
		}

		extra := make(url.Values, len(form))
		for k, v := range form {
			if _, reserved := reservedFormFields[k]; !reserved {
				extra[k] = v
			}
		}

		ctx := c.Request.Context()
		identity, err := issuer.Authenticate(ctx, grantType, username, password, extra)
		if err != nil {
			fail(c, err)
			return
		}

		token, err := issuer.Issue(ctx, identity)
		if err != nil {
			fail(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}

		logger.Get().Infow("token issued", "subject", identity.Subject)
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, token)
	}
}

// isSecure reports whether r arrived over TLS, directly or through a
// proxy that sets X-Forwarded-Proto.
func isSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
