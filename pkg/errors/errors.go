// Package errors provides structured error types shared by the ERP backend
// services (API gateway, auth service, master-data service). It defines error
// categories, machine-readable codes, and helpers for creating, wrapping, and
// inspecting errors at service boundaries.
//
// # Error Categories
//
// Categories map to the failure scenarios the services surface over HTTP:
//
//   - Validation errors: invalid input, missing required fields
//   - Authentication errors: missing, expired, or invalid tokens
//   - Authorization errors: insufficient permissions
//   - NotFound errors: resource or user record does not exist
//   - Conflict errors: uniqueness violations on master records
//   - Internal errors: unexpected failures, broken configuration
//   - Unavailable errors: a backend service cannot be reached
//
// # Error Codes
//
// Each error carries a machine-readable code (e.g. "AUTH_002") following the
// pattern CATEGORY_XXX. Codes are stable and suitable for client-side handling
// and alerting. The category prefix determines the HTTP status via
// [Error.HTTPStatus].
//
// # Usage
//
// Create a new error:
//
//	err := errors.New(errors.CodeTokenExpired, "token has expired")
//
// Wrap an underlying cause:
//
//	err := errors.Wrap(err, errors.CodeInternalDatabase, "failed to load user")
//
// Inspect at the boundary:
//
//	if errors.IsAuthentication(err) {
//	    // respond 401
//	}
package errors
