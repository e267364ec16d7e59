package authsvc

import (
	"context"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// PrincipalLookup adapts the user store to the trust resolver, so the
// protected endpoints resolve forwarded ids into full local principals.
type PrincipalLookup struct {
	users UserReader
}

// NewPrincipalLookup creates a PrincipalLookup over the given store.
func NewPrincipalLookup(users UserReader) *PrincipalLookup {
	return &PrincipalLookup{users: users}
}

var _ auth.UserLookup = (*PrincipalLookup)(nil)

// LookupUser implements [auth.UserLookup]. Non-numeric ids cannot match a
// local account and report not found, which the resolver treats as a
// remote identity.
func (l *PrincipalLookup) LookupUser(ctx context.Context, id string) (auth.Principal, error) {
	numericID, err := ParseUserID(id)
	if err != nil {
		return nil, erperr.New(erperr.CodeNotFoundUser, "user not found")
	}
	u, err := l.users.GetByID(ctx, numericID)
	if err != nil {
		return nil, err
	}
	return auth.NewUser(id, u.Username, u.GroupNames()), nil
}
