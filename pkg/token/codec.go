package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// maxTokenSize is the maximum accepted size for a token string (8 KB).
// Larger tokens are rejected before parsing to prevent resource exhaustion.
const maxTokenSize = 8192

// Codec encodes a claims set into a signed compact JWS string and decodes a
// token string back into verified claims. It holds no mutable state beyond
// the lazily-loaded key material in its [KeyProvider] and is safe for
// concurrent use.
type Codec struct {
	config Config
	keys   *KeyProvider
	method jwt.SigningMethod

	// now is the clock used for exp/iat evaluation. Defaults to time.Now;
	// no clock skew compensation is applied.
	now func() time.Time
}

// NewCodec creates a Codec for the given configuration and key provider.
// The configuration is validated before any token is processed: an HMAC or
// "none" algorithm is rejected here, at construction time, as a fatal
// configuration error.
func NewCodec(cfg Config, keys *KeyProvider) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodRSA); !ok {
		return nil, erperr.Newf(erperr.CodeInternalConfiguration,
			"token: algorithm %q does not resolve to an RSA signing method", cfg.Algorithm)
	}

	return &Codec{
		config: cfg,
		keys:   keys,
		method: method,
		now:    time.Now,
	}, nil
}

// Encode signs the claims and returns the compact token string. Fails with
// a configuration error if the private key is absent or malformed.
func (c *Codec) Encode(claims Claims) (string, error) {
	key, err := c.keys.SigningKey()
	if err != nil {
		return "", err
	}

	signed, err := jwt.NewWithClaims(c.method, claims.toWire()).SignedString(key)
	if err != nil {
		return "", erperr.Wrap(err, erperr.CodeInternalConfiguration,
			"token: failed to sign token")
	}
	return signed, nil
}

// Decode verifies the token's signature, algorithm, issuer, and required
// claims (exp, iat, iss, sub, and a recognized type) and returns the
// decoded claims set.
//
// Failure modes:
//   - [erperr.CodeTokenExpired] when exp has passed
//   - [erperr.CodeTokenInvalid] for a bad signature, malformed structure,
//     missing required claims, or issuer mismatch
//   - [erperr.CodeInternalConfiguration] when the public key cannot be
//     loaded; this propagates typed so the boundary can respond without
//     leaking internal detail
func (c *Codec) Decode(tokenStr string) (Claims, error) {
	if tokenStr == "" {
		return Claims{}, erperr.New(erperr.CodeTokenInvalid, "token: token must not be empty")
	}
	if len(tokenStr) > maxTokenSize {
		return Claims{}, erperr.New(erperr.CodeTokenInvalid, "token: token exceeds maximum size")
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &wireClaims{},
		func(t *jwt.Token) (any, error) {
			return c.keys.VerificationKey()
		},
		jwt.WithValidMethods([]string{c.config.Algorithm}),
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, classifyDecodeError(err)
	}

	wire, ok := parsed.Claims.(*wireClaims)
	if !ok || !parsed.Valid {
		return Claims{}, erperr.New(erperr.CodeTokenInvalid, "token: invalid token")
	}

	// The jwt library only validates iat when present; the wire contract
	// requires it, and exp must be strictly later than iat.
	if wire.IssuedAt == nil {
		return Claims{}, erperr.New(erperr.CodeTokenInvalid, "token: invalid token")
	}
	if !wire.ExpiresAt.Time.After(wire.IssuedAt.Time) {
		return Claims{}, erperr.New(erperr.CodeTokenInvalid, "token: invalid token")
	}
	if wire.Subject == "" {
		return Claims{}, erperr.New(erperr.CodeTokenInvalid, "token: invalid token")
	}
	if !Type(wire.TokenType).Valid() {
		return Claims{}, erperr.New(erperr.CodeTokenInvalid, "token: invalid token")
	}

	return fromWire(wire), nil
}

// classifyDecodeError converts a jwt library error into the package's typed
// error taxonomy. Expired is the only failure distinguished for clients;
// every other cause collapses into a generic invalid-token error so the
// response reveals nothing about which check failed. Configuration errors
// (an unloadable public key) pass through typed.
func classifyDecodeError(err error) *erperr.Error {
	var erpErr *erperr.Error
	if errors.As(err, &erpErr) && erperr.IsConfiguration(erpErr) {
		return erpErr
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return erperr.Wrap(err, erperr.CodeTokenExpired, "token: token has expired")
	}

	return erperr.Wrap(err, erperr.CodeTokenInvalid, "token: invalid token")
}
