package token

import "time"

// Subject is the authenticated principal a token is issued for. The issuer
// does not care whether the principal is backed by a local user record; it
// only needs the identity fields that go into the claims set.
type Subject struct {
	// ID is the stable user identifier, carried as the "sub" claim.
	ID string

	// Username is the display identifier. May be empty.
	Username string

	// Groups holds the group/role identifiers the user belongs to.
	Groups []string
}

// Issuer builds access and refresh token claims for an authenticated
// principal and delegates signing to the [Codec]. Issuance is a pure
// construction step: it never touches persistent storage.
type Issuer struct {
	codec  *Codec
	config Config
}

// NewIssuer creates an Issuer using the codec's configuration for
// lifetimes and issuer string.
func NewIssuer(codec *Codec) *Issuer {
	return &Issuer{
		codec:  codec,
		config: codec.config,
	}
}

// IssueAccessToken signs an access token for the subject, valid from now
// until now plus the configured access lifetime.
func (i *Issuer) IssueAccessToken(sub Subject, now time.Time) (string, error) {
	return i.issue(sub, TypeAccess, now, i.config.AccessTokenLifetime)
}

// IssueRefreshToken signs a refresh token for the subject, valid from now
// until now plus the configured refresh lifetime.
func (i *Issuer) IssueRefreshToken(sub Subject, now time.Time) (string, error) {
	return i.issue(sub, TypeRefresh, now, i.config.RefreshTokenLifetime)
}

// AccessTokenLifetime reports the configured access token lifetime. Login
// and refresh handlers use it to populate the expires_in response field.
func (i *Issuer) AccessTokenLifetime() time.Duration {
	return i.config.AccessTokenLifetime
}

// Now returns the codec's clock reading, so callers issue tokens on the
// same clock the verifier validates against.
func (i *Issuer) Now() time.Time {
	return i.codec.now()
}

func (i *Issuer) issue(sub Subject, typ Type, now time.Time, lifetime time.Duration) (string, error) {
	claims := Claims{
		Subject:   sub.ID,
		Username:  sub.Username,
		Groups:    sub.Groups,
		TokenType: typ,
		IssuedAt:  now,
		ExpiresAt: now.Add(lifetime),
		Issuer:    i.config.Issuer,
	}
	return i.codec.Encode(claims)
}
