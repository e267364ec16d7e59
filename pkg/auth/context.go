package auth

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// contextKey is an unexported type used for context keys in this package.
// Using a distinct type prevents collisions with keys from other packages.
type contextKey int

const (
	// principalKey stores the authenticated Principal in the context.
	principalKey contextKey = iota
)

// ContextWithPrincipal returns a new context with the given Principal
// attached. The principal can later be retrieved with
// [PrincipalFromContext].
//
// This is called by the [Resolver] middleware after it has produced a
// principal from forwarded headers or a verified bearer token.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the Principal from the context.
// Returns the principal and true if present, or nil and false when the
// request carried no identity assertion. The absence of a principal is not
// an error; it means no trust path produced one and any access decision is
// left to the handler's own policy.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// MustPrincipalFromContext retrieves the Principal from the context,
// panicking if none is present. Use only on routes guarded by middleware
// that rejects unauthenticated requests.
func MustPrincipalFromContext(ctx context.Context) Principal {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		panic("auth: no principal in context; ensure the resolver middleware is configured")
	}
	return p
}

// TraceIDFromContext extracts the OpenTelemetry trace ID from the context.
// Returns the trace ID as a hex string and true if a valid trace is active,
// or an empty string and false otherwise.
//
// Audit records use this to correlate authentication events with the
// distributed trace of the request that produced them.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.HasTraceID() {
		return "", false
	}
	return spanCtx.TraceID().String(), true
}
