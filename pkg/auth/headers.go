package auth

import "strings"

// Header constants for the gateway identity contract. The gateway sets the
// three X-* headers after verifying a bearer token; downstream services read
// them back through the [Resolver]. Header names are case-insensitive on the
// wire; the canonical forms below are what the gateway writes.
const (
	// HeaderAuthorization is the standard authorization header carrying
	// the bearer token presented by the original caller.
	HeaderAuthorization = "Authorization"

	// HeaderUserID carries the string form of the verified token's subject
	// claim. Its presence is what switches the Resolver onto the
	// forwarded-header trust path.
	HeaderUserID = "X-User-Id"

	// HeaderUsername carries the display identifier from the token. May be
	// empty when the token carried no username claim.
	HeaderUsername = "X-Username"

	// HeaderGroups carries the principal's group identifiers as a
	// comma-separated list with no spaces. Empty when the principal has no
	// groups.
	HeaderGroups = "X-Groups"
)

// bearerPrefix is the standard "Bearer " prefix for authorization tokens.
const bearerPrefix = "Bearer "

// BearerToken returns the token from an authorization header value carrying
// the Bearer scheme, matched case-insensitively. Reports false for any other
// scheme (Basic, Digest, ...) or an empty value, so strict callers like the
// gateway can treat those as no credential at all.
func BearerToken(authHeader string) (string, bool) {
	if len(authHeader) > len(bearerPrefix) && strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(authHeader[len(bearerPrefix):]), true
	}
	return "", false
}

// ExtractBearerToken extracts the token from an authorization header value.
// The "Bearer " prefix is stripped case-insensitively when present; a value
// without the prefix is returned as-is, since internal callers sometimes
// send the raw token. Returns an empty string for an empty header.
func ExtractBearerToken(authHeader string) string {
	if tok, ok := BearerToken(authHeader); ok {
		return tok
	}
	return strings.TrimSpace(authHeader)
}

// JoinGroups serializes group identifiers for the X-Groups header: comma
// separated, no spaces, order preserved. Empty segments are dropped so the
// joined form always round-trips through [SplitGroups].
func JoinGroups(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	kept := make([]string, 0, len(groups))
	for _, g := range groups {
		if g != "" {
			kept = append(kept, g)
		}
	}
	return strings.Join(kept, ",")
}

// SplitGroups parses an X-Groups header value into group identifiers.
// Splits on comma, discards empty segments, preserves order, and performs
// no deduplication. Returns nil for an empty value.
func SplitGroups(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	groups := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			groups = append(groups, p)
		}
	}
	if len(groups) == 0 {
		return nil
	}
	return groups
}
