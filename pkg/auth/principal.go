// Package auth provides the identity primitives shared by the ERP services.
//
// Trust model:
//
// The API gateway is the single verification point for bearer tokens. After a
// token verifies, the gateway asserts the caller's identity to downstream
// services through a fixed set of forwarded headers (X-User-Id, X-Username,
// X-Groups). Those three headers are the entire trust contract: a downstream
// service must treat them as authoritative when they arrive through the
// gateway, and must never derive identity from any other header.
//
// Services not sitting behind the gateway (or called directly during
// development) fall back to verifying a bearer token themselves via
// [Resolver].
//
// The principal model has two variants sharing one read-only interface:
//   - User: an identity matched to a persisted user record
//   - RemotePrincipal: an identity asserted by the gateway or a token for
//     which no local record exists
//
// Both variants are fully authenticated. The distinction only matters to
// callers that need the backing record (preferences, relations, audit
// joins), not to authorization decisions.
package auth

import "context"

// Principal is a read-only view of an authenticated caller.
//
// Implementations must be immutable and safe for concurrent use.
type Principal interface {
	// ID returns the stable principal identifier, the string form of the
	// token's subject claim.
	ID() string

	// Username returns the display identifier. May be empty.
	Username() string

	// Groups returns the group identifiers the principal belongs to, in
	// assertion order. Implementations return a copy; callers may modify
	// the result freely.
	Groups() []string

	// IsAuthenticated reports whether the principal was produced by a
	// trusted assertion path. Both variants in this package return true;
	// the method exists so handlers can guard on it without caring which
	// variant they hold.
	IsAuthenticated() bool
}

// User is a principal matched to a persisted user record. It is produced by
// a [UserLookup] when the asserted identifier resolves locally.
//
// User is immutable after creation.
type User struct {
	id       string
	username string
	groups   []string
}

// NewUser creates a resolved User principal. The groups slice is copied to
// keep the principal immutable.
func NewUser(id, username string, groups []string) *User {
	return &User{
		id:       id,
		username: username,
		groups:   copyGroups(groups),
	}
}

// ID returns the stable user identifier.
func (u *User) ID() string { return u.id }

// Username returns the user's login name.
func (u *User) Username() string { return u.username }

// Groups returns a copy of the user's group identifiers.
func (u *User) Groups() []string { return copyGroups(u.groups) }

// IsAuthenticated always returns true for a resolved User.
func (u *User) IsAuthenticated() bool { return true }

// RemotePrincipal is a principal carrying identity asserted by the gateway
// or derived from a verified token, without a matching local user record.
// Services that only need id, username, and groups treat it exactly like a
// resolved [User].
//
// RemotePrincipal is immutable after creation.
type RemotePrincipal struct {
	id       string
	username string
	groups   []string
}

// NewRemotePrincipal creates a RemotePrincipal from asserted identity fields.
// The groups slice is copied to keep the principal immutable.
func NewRemotePrincipal(id, username string, groups []string) *RemotePrincipal {
	return &RemotePrincipal{
		id:       id,
		username: username,
		groups:   copyGroups(groups),
	}
}

// ID returns the asserted principal identifier.
func (p *RemotePrincipal) ID() string { return p.id }

// Username returns the asserted display identifier. May be empty.
func (p *RemotePrincipal) Username() string { return p.username }

// Groups returns a copy of the asserted group identifiers.
func (p *RemotePrincipal) Groups() []string { return copyGroups(p.groups) }

// IsAuthenticated always returns true. A RemotePrincipal only exists after
// the gateway or a local verification step has vouched for the identity.
func (p *RemotePrincipal) IsAuthenticated() bool { return true }

// UserLookup resolves a persisted user by its stable identifier. The
// [Resolver] uses it to upgrade an asserted identity to a resolved [User]
// when a matching record exists.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type UserLookup interface {
	// LookupUser returns the user with the given identifier, or an error
	// when no such user exists or the store is unreachable. A lookup
	// failure is not fatal to the caller; the Resolver degrades to a
	// RemotePrincipal carrying the asserted fields.
	LookupUser(ctx context.Context, id string) (Principal, error)
}

func copyGroups(groups []string) []string {
	if len(groups) == 0 {
		return nil
	}
	copied := make([]string, len(groups))
	copy(copied, groups)
	return copied
}
