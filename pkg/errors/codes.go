package errors

// Code is a machine-readable error code categorizing an error. Codes follow
// the pattern CATEGORY_XXX where CATEGORY is a short identifier (e.g. AUTH,
// VAL, INT) and XXX is a three-digit numeric code.
//
// Codes are stable once assigned; clients and dashboards may depend on them.
type Code string

// Error code categories and their HTTP mappings:
//
//	VAL_xxx     - Validation errors (400 Bad Request)
//	AUTH_xxx    - Authentication errors (401 Unauthorized)
//	AUTHZ_xxx   - Authorization errors (403 Forbidden)
//	NF_xxx      - Not found errors (404 Not Found)
//	CONF_xxx    - Conflict errors (409 Conflict)
//	INT_xxx     - Internal errors (500 Internal Server Error)
//	UNAVAIL_xxx - Service unavailable (503 Service Unavailable)
const (
	// Validation errors (VAL_xxx) - HTTP 400

	// CodeValidation indicates a general validation failure.
	CodeValidation Code = "VAL_001"

	// CodeValidationRequired indicates a required field is missing.
	CodeValidationRequired Code = "VAL_002"

	// CodeValidationFormat indicates a field has an invalid format.
	CodeValidationFormat Code = "VAL_003"

	// Authentication errors (AUTH_xxx) - HTTP 401

	// CodeAuthentication indicates a general authentication failure
	// (missing credentials, invalid username/password).
	CodeAuthentication Code = "AUTH_001"

	// CodeTokenExpired indicates the presented token has expired.
	// Clients recover by refreshing or re-authenticating.
	CodeTokenExpired Code = "AUTH_002"

	// CodeTokenInvalid indicates the presented token failed verification:
	// bad signature, malformed structure, issuer mismatch, or wrong token
	// type. The code intentionally does not reveal which check failed.
	CodeTokenInvalid Code = "AUTH_003"

	// Authorization errors (AUTHZ_xxx) - HTTP 403

	// CodeAuthorization indicates the authenticated principal lacks
	// permission for the requested operation.
	CodeAuthorization Code = "AUTHZ_001"

	// Not found errors (NF_xxx) - HTTP 404

	// CodeNotFound indicates a general not found error.
	CodeNotFound Code = "NF_001"

	// CodeNotFoundUser indicates the referenced user record does not exist.
	CodeNotFoundUser Code = "NF_002"

	// Conflict errors (CONF_xxx) - HTTP 409

	// CodeConflict indicates a general conflict error.
	CodeConflict Code = "CONF_001"

	// CodeConflictDuplicate indicates a uniqueness violation, e.g. a master
	// record with the same name already exists under the same parent.
	CodeConflictDuplicate Code = "CONF_002"

	// Internal errors (INT_xxx) - HTTP 500

	// CodeInternal indicates a general internal error.
	CodeInternal Code = "INT_001"

	// CodeInternalDatabase indicates a database operation failed.
	CodeInternalDatabase Code = "INT_002"

	// CodeInternalConfiguration indicates broken configuration, such as a
	// missing signing key file or a disallowed JWT algorithm.
	CodeInternalConfiguration Code = "INT_003"

	// Unavailable errors (UNAVAIL_xxx) - HTTP 503

	// CodeUnavailable indicates a general service unavailable error.
	CodeUnavailable Code = "UNAVAIL_001"

	// CodeUnavailableBackend indicates a proxied backend service could not
	// be reached by the gateway.
	CodeUnavailableBackend Code = "UNAVAIL_002"
)

// String returns the string representation of the error code.
func (c Code) String() string {
	return string(c)
}

// Category returns the category prefix of the error code (e.g. "VAL", "AUTH").
func (c Code) Category() string {
	s := string(c)
	for i, r := range s {
		if r == '_' {
			return s[:i]
		}
	}
	return s
}
