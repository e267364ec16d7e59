// Package token implements the JWT issuance and verification core shared by
// the ERP backend services. The auth service issues RS256-signed access and
// refresh tokens; the API gateway and the master-data service verify them.
//
// The package is split along the token lifecycle:
//
//   - [KeyProvider] loads and caches the RSA key pair
//   - [Codec] encodes and decodes signed token strings
//   - [Issuer] builds access and refresh claims for a principal
//   - [Verifier] validates presented tokens, including the token-type
//     confusion guard
//
// All failures are typed *[erperr.Error] values: expired tokens carry
// [erperr.CodeTokenExpired], every other verification failure carries
// [erperr.CodeTokenInvalid] without revealing which check failed, and
// broken key or algorithm configuration carries
// [erperr.CodeInternalConfiguration].
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Type distinguishes the two token kinds the auth service issues.
type Type string

const (
	// TypeAccess is the short-lived credential authorizing API calls.
	TypeAccess Type = "access"

	// TypeRefresh is the longer-lived credential used only to obtain a
	// new access token.
	TypeRefresh Type = "refresh"
)

// String returns the string representation of the token type.
func (t Type) String() string {
	return string(t)
}

// Valid reports whether the type is one of the recognized values.
func (t Type) Valid() bool {
	return t == TypeAccess || t == TypeRefresh
}

// Claims is the immutable payload of a signed token. It is produced once by
// the [Issuer] and consumed by the [Verifier]; nothing mutates a Claims
// value after creation.
type Claims struct {
	// Subject is the stable principal identifier (the user record ID).
	Subject string

	// Username is the display identifier. Optional.
	Username string

	// Groups holds the group/role identifiers the principal belongs to.
	// Order is preserved from issuance but carries no meaning.
	Groups []string

	// TokenType is either [TypeAccess] or [TypeRefresh].
	TokenType Type

	// IssuedAt is the time the token was created.
	IssuedAt time.Time

	// ExpiresAt is the time after which the token is rejected. Always
	// strictly later than IssuedAt for issued tokens.
	ExpiresAt time.Time

	// Issuer is the issuing service's configured issuer string.
	Issuer string
}

// wireClaims is the JSON shape of the claims on the wire. It embeds the
// registered claim set so the jwt library validates exp/iat/iss natively.
type wireClaims struct {
	Username  string   `json:"username,omitempty"`
	Groups    []string `json:"groups,omitempty"`
	TokenType string   `json:"type"`
	jwt.RegisteredClaims
}

// toWire converts Claims to their wire representation.
func (c Claims) toWire() *wireClaims {
	return &wireClaims{
		Username:  c.Username,
		Groups:    c.Groups,
		TokenType: string(c.TokenType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			Issuer:    c.Issuer,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
}

// fromWire converts decoded wire claims back into a Claims value.
func fromWire(w *wireClaims) Claims {
	c := Claims{
		Subject:   w.Subject,
		Username:  w.Username,
		Groups:    w.Groups,
		TokenType: Type(w.TokenType),
		Issuer:    w.Issuer,
	}
	if w.IssuedAt != nil {
		c.IssuedAt = w.IssuedAt.Time
	}
	if w.ExpiresAt != nil {
		c.ExpiresAt = w.ExpiresAt.Time
	}
	return c
}
