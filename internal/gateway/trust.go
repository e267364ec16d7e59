// Package gateway implements the API gateway: the single point where
// bearer tokens are verified. Requests that pass verification are
// forwarded to the backend services carrying the caller's identity in the
// X-User-Id, X-Username, and X-Groups headers; those headers are the
// entire trust contract between the gateway and the services behind it.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZigmaSoftware/erp-final-backend/internal/httpx"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/token"
)

// tracerName is the OpenTelemetry instrumentation scope name for this package.
const tracerName = "github.com/ZigmaSoftware/erp-final-backend/internal/gateway"

// Rejection bodies. Exact strings are part of the client-facing contract.
const (
	detailHeaderMissing = "Authorization header missing"
	detailTokenExpired  = "Token expired"
	detailTokenInvalid  = "Invalid token"
)

// TokenVerifier is the subset of the token verifier the middleware needs.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string, expectedType token.Type) (token.Claims, error)
}

// TrustMiddleware verifies the bearer token on every non-excluded request
// and asserts the caller's identity to the backend via forwarded headers.
//
// Each request moves through exactly one of four outcomes:
//   - Excluded: the path is on the allow-list; passes through unmodified.
//   - Unauthenticated: no Authorization header, or one without the Bearer
//     scheme; 401 with a fixed body.
//   - Rejected: the token failed verification; 401 expired or invalid.
//   - Authenticated: identity headers attached, request forwarded.
type TrustMiddleware struct {
	verifier TokenVerifier
	exact    map[string]struct{}
	prefixes []string
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewTrustMiddleware creates the middleware from the gateway configuration.
func NewTrustMiddleware(verifier TokenVerifier, cfg *Config, logger *slog.Logger) *TrustMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	exact := make(map[string]struct{}, len(cfg.ExcludedExactPaths))
	for _, p := range cfg.ExcludedExactPaths {
		exact[p] = struct{}{}
	}
	return &TrustMiddleware{
		verifier: verifier,
		exact:    exact,
		prefixes: append([]string(nil), cfg.ExcludedPrefixPaths...),
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// Handler wraps next with token verification.
func (m *TrustMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.excluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := m.tracer.Start(r.Context(), "gateway.verify_token")
		defer span.End()

		// Only the Bearer scheme counts as a credential here. A Basic or
		// otherwise non-Bearer header is the same as no header at all.
		bearer, ok := auth.BearerToken(r.Header.Get(auth.HeaderAuthorization))
		if !ok {
			span.SetAttributes(attribute.String("gateway.outcome", "unauthenticated"))
			httpx.WriteDetail(w, http.StatusUnauthorized, detailHeaderMissing)
			return
		}

		claims, err := m.verifier.Verify(ctx, bearer, token.TypeAccess)
		if err != nil {
			span.SetAttributes(attribute.String("gateway.outcome", "rejected"))
			m.logger.InfoContext(ctx, "rejected request",
				"path", r.URL.Path,
				"reason", erperr.GetCode(err),
			)
			detail := detailTokenInvalid
			if erperr.HasCode(err, erperr.CodeTokenExpired) {
				detail = detailTokenExpired
			}
			httpx.WriteDetail(w, http.StatusUnauthorized, detail)
			return
		}

		span.SetAttributes(
			attribute.String("gateway.outcome", "authenticated"),
			attribute.String("user.id", claims.Subject),
		)

		// Assert the verified identity. Inbound values for these headers
		// are overwritten so a client can never smuggle an identity past
		// the gateway.
		r = r.WithContext(ctx)
		r.Header.Set(auth.HeaderUserID, claims.Subject)
		r.Header.Set(auth.HeaderUsername, claims.Username)
		r.Header.Set(auth.HeaderGroups, auth.JoinGroups(claims.Groups))

		next.ServeHTTP(w, r)
	})
}

func (m *TrustMiddleware) excluded(path string) bool {
	if _, ok := m.exact[path]; ok {
		return true
	}
	for _, prefix := range m.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
