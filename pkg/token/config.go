package token

import (
	"strings"
	"time"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// Config holds the JWT settings shared by the auth service (signing) and the
// gateway and master-data services (verification). It is constructed once at
// startup and passed explicitly into [NewCodec], [NewIssuer], and
// [NewVerifier]; core logic never reads ambient globals.
//
// The env surface is the contract shared across the three services:
//
//	JWT_ALGORITHM              (default RS256)
//	JWT_ISSUER                 (default auth_service)
//	JWT_ACCESS_TOKEN_LIFETIME  seconds (default 3600)
//	JWT_REFRESH_TOKEN_LIFETIME seconds (default 604800)
//	JWT_PRIVATE_KEY_PATH
//	JWT_PUBLIC_KEY_PATH
type Config struct {
	// Algorithm is the JWS algorithm used for both signing and
	// verification. Only asymmetric RS*-family algorithms are accepted;
	// configuring an HMAC algorithm is a fatal configuration error, not a
	// per-request failure. This closes the classic algorithm-confusion
	// attack where a token signed with the public key (misused as an HMAC
	// secret) would otherwise validate.
	Algorithm string `json:"algorithm" env:"JWT_ALGORITHM" envDefault:"RS256" yaml:"algorithm"`

	// Issuer is the expected "iss" claim. Tokens with any other issuer
	// are rejected.
	Issuer string `json:"issuer" env:"JWT_ISSUER" envDefault:"auth_service" yaml:"issuer"`

	// AccessTokenLifetime is how long issued access tokens remain valid.
	// The env value is plain seconds; Go duration syntax is also accepted.
	AccessTokenLifetime time.Duration `json:"access_token_lifetime" env:"JWT_ACCESS_TOKEN_LIFETIME" envDefault:"3600" yaml:"access_token_lifetime"`

	// RefreshTokenLifetime is how long issued refresh tokens remain valid.
	RefreshTokenLifetime time.Duration `json:"refresh_token_lifetime" env:"JWT_REFRESH_TOKEN_LIFETIME" envDefault:"604800" yaml:"refresh_token_lifetime"`

	// PrivateKeyPath is the filesystem path to the PEM-encoded RSA private
	// key. Only the auth service needs it; verification-only deployments
	// (gateway, master-data) leave it empty.
	PrivateKeyPath string `json:"private_key_path,omitempty" env:"JWT_PRIVATE_KEY_PATH" yaml:"private_key_path"`

	// PublicKeyPath is the filesystem path to the PEM-encoded RSA public
	// key used for verification.
	PublicKeyPath string `json:"public_key_path,omitempty" env:"JWT_PUBLIC_KEY_PATH" yaml:"public_key_path"`
}

// DefaultConfig returns a Config with the shared defaults. Key paths must
// still be supplied by the deployment.
func DefaultConfig() Config {
	return Config{
		Algorithm:            "RS256",
		Issuer:               "auth_service",
		AccessTokenLifetime:  time.Hour,
		RefreshTokenLifetime: 7 * 24 * time.Hour,
	}
}

// Validate checks the configuration for logical correctness. It returns a
// *[erperr.Error] with code [erperr.CodeInternalConfiguration] if the
// algorithm is symmetric or unset, since that must abort startup rather
// than surface per request, and [erperr.CodeValidation] for other invalid
// fields.
func (c *Config) Validate() error {
	alg := strings.ToUpper(c.Algorithm)
	if alg == "" || alg == "NONE" || strings.HasPrefix(alg, "HS") {
		return erperr.Newf(erperr.CodeInternalConfiguration,
			"token: algorithm %q is not permitted; an asymmetric RS* algorithm is required", c.Algorithm)
	}
	if !strings.HasPrefix(alg, "RS") {
		return erperr.Newf(erperr.CodeInternalConfiguration,
			"token: unsupported algorithm %q; expected RS256, RS384, or RS512", c.Algorithm)
	}

	if c.Issuer == "" {
		return erperr.New(erperr.CodeValidation, "token: issuer must not be empty")
	}

	if c.AccessTokenLifetime <= 0 {
		return erperr.New(erperr.CodeValidation, "token: access token lifetime must be positive")
	}

	if c.RefreshTokenLifetime <= 0 {
		return erperr.New(erperr.CodeValidation, "token: refresh token lifetime must be positive")
	}

	return nil
}
