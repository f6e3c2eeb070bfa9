// Package auth issues and validates bearer tokens for the HTTP pipeline.
package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiration is the lifetime of issued access tokens when
// Options.Expiration is zero.
const DefaultExpiration = 20 * time.Minute

// GrantTypePassword is the only grant accepted by the token endpoint.
const GrantTypePassword = "password"

// Identity is the authenticated principal a token is issued for.
type Identity struct {
	Subject string
	Name    string
	Roles   []string
	Extra   map[string]string
}

// IdentityResolver authenticates a token request. It returns a nil identity
// (and nil error) when the credentials are not valid.
type IdentityResolver func(ctx context.Context, grantType, username, password string, extra url.Values) (*Identity, error)

// ClaimsAugmenter may add claims after the identity is resolved and before
// the token is signed.
type ClaimsAugmenter func(ctx context.Context, identity *Identity, claims *Claims) error

// Options configures token issuance and validation.
type Options struct {
	Issuer        string
	Audience      string
	SigningKey    []byte
	SigningMethod string // HS256, HS384 or HS512; default HS256
	Expiration    time.Duration

	// AllowInsecureHTTP lets the token endpoint accept plain HTTP requests.
	AllowInsecureHTTP bool

	ResolveIdentity IdentityResolver
	AugmentClaims   ClaimsAugmenter
}

var signingMethods = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Validate fills defaults and checks required fields.
func (o *Options) Validate() error {
	if len(o.SigningKey) == 0 {
		return fmt.Errorf("auth: signing key is required")
	}
	if o.ResolveIdentity == nil {
		return fmt.Errorf("auth: identity resolver is required")
	}
	if o.SigningMethod == "" {
		o.SigningMethod = "HS256"
	}
	if _, ok := signingMethods[o.SigningMethod]; !ok {
		return fmt.Errorf("auth: unsupported signing method %q", o.SigningMethod)
	}
	if o.Expiration <= 0 {
		o.Expiration = DefaultExpiration
	}
	return nil
}
