package token

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// tracerName is the OpenTelemetry instrumentation scope name for this package.
const tracerName = "github.com/ZigmaSoftware/erp-final-backend/pkg/token"

// Verifier validates presented tokens. Verification is a pure function of
// the token string, the current time, and the configuration: a single
// attempt per call, no retries, no shared per-request state. Verifier is
// safe for concurrent use.
type Verifier struct {
	codec  *Codec
	tracer trace.Tracer
}

// NewVerifier creates a Verifier on top of the given codec.
func NewVerifier(codec *Codec) *Verifier {
	return &Verifier{
		codec:  codec,
		tracer: otel.Tracer(tracerName),
	}
}

// Verify decodes and validates the token. When expectedType is non-empty,
// the claims' token type must match it exactly; a refresh token presented
// where an access token is expected (or vice versa) is rejected as invalid
// even though its signature and expiry are fine. The type check runs only
// after signature, issuer, and expiry checks succeed, so an expired token
// of the wrong type still reports expired.
//
// Failure modes mirror [Codec.Decode], with the type mismatch folded into
// [erperr.CodeTokenInvalid].
func (v *Verifier) Verify(ctx context.Context, tokenStr string, expectedType Type) (Claims, error) {
	_, span := v.tracer.Start(ctx, "token.Verify")
	defer span.End()

	claims, err := v.codec.Decode(tokenStr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Claims{}, err
	}

	if expectedType != "" && claims.TokenType != expectedType {
		err := erperr.New(erperr.CodeTokenInvalid, "token: invalid token")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Claims{}, err
	}

	span.SetAttributes(
		attribute.String("token.type", string(claims.TokenType)),
		attribute.String("token.sub", claims.Subject),
	)

	return claims, nil
}
