// internal/app/system/httperr/httperr.go

// Package httperr writes the API's JSON error responses.
//
// Every failure a handler reports falls into one of six categories:
// unauthorized, forbidden, not found, conflict, validation, internal.
// All of them produce the same body shape, {"message": ...}, with the
// matching status code, so clients only ever parse one error format.
package httperr

import (
	"encoding/json"
	"net/http"
)

// errorBody is the single error shape the API emits.
type errorBody struct {
	Message string `json:"message"`
}

// JSON writes an arbitrary payload with the given status code.
// Handlers use it for success responses too, so success and error
// paths share one encoder.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Unauthorized reports a missing, invalid, or expired credential, or an
// unapproved account attempting to log in.
func Unauthorized(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "not authorized"
	}
	JSON(w, http.StatusUnauthorized, errorBody{Message: msg})
}

// Forbidden reports a role or ownership mismatch.
func Forbidden(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "access denied"
	}
	JSON(w, http.StatusForbidden, errorBody{Message: msg})
}

// NotFound reports a document that does not resolve by id.
func NotFound(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "not found"
	}
	JSON(w, http.StatusNotFound, errorBody{Message: msg})
}

// Conflict reports a uniqueness violation (duplicate username).
func Conflict(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusConflict, errorBody{Message: msg})
}

// BadRequest reports a malformed or invalid request body.
func BadRequest(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "invalid request"
	}
	JSON(w, http.StatusBadRequest, errorBody{Message: msg})
}

// Internal reports an unexpected store-layer failure. The underlying
// message is passed through as-is; handlers log the error separately.
func Internal(w http.ResponseWriter, err error) {
	msg := "internal server error"
	if err != nil {
		msg = err.Error()
	}
	JSON(w, http.StatusInternalServerError, errorBody{Message: msg})
}
