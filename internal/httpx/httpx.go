// Package httpx provides small JSON helpers shared by the ERP service
// handlers. Response shapes follow two fixed wire contracts: general
// failures use {"detail": "..."} and credential failures on the auth
// endpoints use {"error": "CODE"}.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// Detail is the generic error body.
type Detail struct {
	Detail string `json:"detail"`
}

// CodedError is the error body used by the auth endpoints, carrying a
// machine-readable code such as INVALID_CREDENTIALS.
type CodedError struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDetail writes a {"detail": msg} body with the given status code.
func WriteDetail(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, Detail{Detail: msg})
}

// WriteCodedError writes an {"error": code} body with the given status.
func WriteCodedError(w http.ResponseWriter, status int, errCode string) {
	WriteJSON(w, status, CodedError{Error: errCode})
}

// WriteError maps a structured error to its HTTP status and writes a
// {"detail": message} body. Unclassified errors become a 500 with a
// generic message so internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	var e *erperr.Error
	if errors.As(err, &e) {
		WriteDetail(w, e.HTTPStatus(), e.Message)
		return
	}
	WriteDetail(w, http.StatusInternalServerError, "Internal server error")
}

// DecodeJSON reads the request body into v, rejecting bodies over 1 MiB
// and returning a validation error on malformed JSON.
func DecodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return erperr.Wrap(err, erperr.CodeValidation, "failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return erperr.Wrap(err, erperr.CodeValidationFormat, "invalid JSON body")
	}
	return nil
}
