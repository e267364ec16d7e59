package token

import (
	"crypto/rsa"
	"os"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// KeyProvider owns the RSA key material for the process: the private signing
// key and the public verification key. Each key is read from its configured
// path exactly once, on first use, and cached for the process lifetime. The
// loaded keys are immutable, so concurrent reads after the guarded first
// load need no further synchronization.
//
// A missing or unparseable key file surfaces as a typed configuration error
// rather than a panic, so an endpoint that never touches tokens keeps
// working even when key material is broken.
type KeyProvider struct {
	privateKeyPath string
	publicKeyPath  string

	privateOnce sync.Once
	privateKey  *rsa.PrivateKey
	privateErr  error

	publicOnce sync.Once
	publicKey  *rsa.PublicKey
	publicErr  error
}

// NewKeyProvider creates a KeyProvider for the configured key paths. Either
// path may be empty when the deployment does not need that half of the pair
// (the gateway and master-data services only verify, so they configure no
// private key). No file is touched until the corresponding key is first
// requested.
func NewKeyProvider(cfg Config) *KeyProvider {
	return &KeyProvider{
		privateKeyPath: cfg.PrivateKeyPath,
		publicKeyPath:  cfg.PublicKeyPath,
	}
}

// SigningKey returns the RSA private key, loading and caching it on first
// call. Returns a configuration error if no private key path is configured
// or the file is missing or not valid PEM.
func (p *KeyProvider) SigningKey() (*rsa.PrivateKey, error) {
	p.privateOnce.Do(func() {
		p.privateKey, p.privateErr = loadPrivateKey(p.privateKeyPath)
	})
	return p.privateKey, p.privateErr
}

// VerificationKey returns the RSA public key, loading and caching it on
// first call. Returns a configuration error if no public key path is
// configured or the file is missing or not valid PEM.
func (p *KeyProvider) VerificationKey() (*rsa.PublicKey, error) {
	p.publicOnce.Do(func() {
		p.publicKey, p.publicErr = loadPublicKey(p.publicKeyPath)
	})
	return p.publicKey, p.publicErr
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	if path == "" {
		return nil, erperr.New(erperr.CodeInternalConfiguration,
			"token: no private key path configured")
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, erperr.Wrapf(err, erperr.CodeInternalConfiguration,
			"token: failed to read private key at %q", path)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, erperr.Wrapf(err, erperr.CodeInternalConfiguration,
			"token: failed to parse private key at %q", path)
	}
	return key, nil
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	if path == "" {
		return nil, erperr.New(erperr.CodeInternalConfiguration,
			"token: no public key path configured")
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, erperr.Wrapf(err, erperr.CodeInternalConfiguration,
			"token: failed to read public key at %q", path)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
	if err != nil {
		return nil, erperr.Wrapf(err, erperr.CodeInternalConfiguration,
			"token: failed to parse public key at %q", path)
	}
	return key, nil
}
