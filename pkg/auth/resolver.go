package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/token"
)

// TokenVerifier is the subset of the token verifier the resolver needs.
// It is satisfied by [token.Verifier] and by test fakes.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string, expectedType token.Type) (token.Claims, error)
}

// Resolver produces an authenticated [Principal] for requests arriving at a
// backend service. Two trust paths are tried in priority order:
//
//  1. Forwarded-header path: when X-User-Id is present the identity was
//     asserted by the gateway, which already verified the token. The
//     resolver looks up a persisted user by that id; on a miss it degrades
//     to a [RemotePrincipal] carrying the asserted fields. Both outcomes
//     are fully authenticated.
//  2. Direct-bearer fallback: with no forwarded header, a bearer token on
//     the Authorization header is verified locally with an expected type of
//     access. Verification failure rejects the request with 401 rather
//     than silently continuing unauthenticated.
//
// When neither path yields an identifier the request proceeds without a
// principal. That is not a failure; routes with their own access policy
// decide what an absent principal means. Preflight (OPTIONS) requests never
// attempt either path.
type Resolver struct {
	verifier TokenVerifier
	lookup   UserLookup
	logger   *slog.Logger
}

// NewResolver creates a Resolver. The verifier is required for the
// direct-bearer fallback. The lookup may be nil, in which case every
// asserted identity resolves to a [RemotePrincipal].
func NewResolver(verifier TokenVerifier, lookup UserLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		verifier: verifier,
		lookup:   lookup,
		logger:   logger,
	}
}

// Middleware returns an HTTP middleware that resolves the caller's
// principal and attaches it to the request context. Handlers retrieve it
// with [PrincipalFromContext].
func (rv *Resolver) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			// Forwarded-header path. Reachable only through the gateway,
			// which verified the token before asserting these headers.
			if id := r.Header.Get(HeaderUserID); id != "" {
				p := rv.resolve(ctx, id, r.Header.Get(HeaderUsername), SplitGroups(r.Header.Get(HeaderGroups)))
				next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(ctx, p)))
				return
			}

			// Direct-bearer fallback for callers not behind the gateway.
			if authHeader := r.Header.Get(HeaderAuthorization); authHeader != "" {
				claims, err := rv.verifier.Verify(ctx, ExtractBearerToken(authHeader), token.TypeAccess)
				if err != nil {
					writeAuthFailure(w, err)
					return
				}
				p := rv.resolve(ctx, claims.Subject, claims.Username, claims.Groups)
				next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(ctx, p)))
				return
			}

			// No assertion. The request proceeds without a principal.
			next.ServeHTTP(w, r)
		})
	}
}

// resolve upgrades an asserted identity to a persisted [User] when the
// lookup succeeds, and otherwise returns a [RemotePrincipal] with the
// asserted fields.
func (rv *Resolver) resolve(ctx context.Context, id, username string, groups []string) Principal {
	if rv.lookup != nil {
		p, err := rv.lookup.LookupUser(ctx, id)
		if err == nil && p != nil {
			return p
		}
		if err != nil && !erperr.IsNotFound(err) {
			rv.logger.WarnContext(ctx, "user lookup failed, continuing with remote principal",
				"user_id", id,
				"error", err,
			)
		}
	}
	return NewRemotePrincipal(id, username, groups)
}

// writeAuthFailure renders a 401 response for a failed bearer verification.
// The body shape matches the gateway's rejection responses so clients see
// one contract regardless of which hop rejected them.
func writeAuthFailure(w http.ResponseWriter, err error) {
	detail := "Invalid token"
	if erperr.HasCode(err, erperr.CodeTokenExpired) {
		detail = "Token expired"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
