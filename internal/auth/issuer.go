package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "ginkit/internal/errors"
)

// Claims represents the claims carried by an access token.
type Claims struct {
	Name  string            `json:"name,omitempty"`
	Roles []string          `json:"roles,omitempty"`
	Extra map[string]string `json:"extra,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims include role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Token is the token endpoint response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Issuer signs and validates access tokens.
type Issuer struct {
	opts   Options
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

// NewIssuer validates opts and creates an Issuer.
func NewIssuer(opts Options) (*Issuer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Issuer{
		opts:   opts,
		method: signingMethods[opts.SigningMethod],
		now:    time.Now,
	}, nil
}

// Options returns the effective options.
func (i *Issuer) Options() Options { return i.opts }

// Authenticate resolves the identity for a token request.
func (i *Issuer) Authenticate(ctx context.Context, grantType, username, password string, extra url.Values) (*Identity, error) {
	identity, err := i.opts.ResolveIdentity(ctx, grantType, username, password, extra)
	if err != nil {
		return nil, err
	}
	if identity == nil || identity.Subject == "" {
		return nil, apperrors.ErrInvalidGrant
	}
	return identity, nil
}

// Issue signs an access token for identity.
func (i *Issuer) Issue(ctx context.Context, identity *Identity) (*Token, error) {
	now := i.now()
	claims := &Claims{
		Name:  identity.Name,
		Roles: identity.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.opts.Issuer,
			Subject:   identity.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.opts.Expiration)),
		},
	}
	if len(identity.Extra) > 0 {
		claims.Extra = make(map[string]string, len(identity.Extra))
		for k, v := range identity.Extra {
			claims.Extra[k] = v
		}
	}
	if i.opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{i.opts.Audience}
	}

	if i.opts.AugmentClaims != nil {
		if err := i.opts.AugmentClaims(ctx, identity, claims); err != nil {
			return nil, fmt.Errorf("augment claims: %w", err)
		}
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.opts.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(i.opts.Expiration / time.Second),
	}, nil
}

// Validate parses tokenString and checks signature, method, issuer,
// audience and expiry.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(i.opts.Issuer))
	}
	if i.opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(i.opts.Audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return i.opts.SigningKey, nil
	}, parserOpts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}
	return claims, nil
}
