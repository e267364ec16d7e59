package authsvc

import (
	"golang.org/x/crypto/bcrypt"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// HashPassword produces a bcrypt hash at the default cost, used by account
// provisioning and test fixtures.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", erperr.Wrap(err, erperr.CodeInternal, "authsvc: failed to hash password")
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
// Any mismatch or malformed hash is a plain false; the caller maps it to
// the credential failure contract without distinguishing causes.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
