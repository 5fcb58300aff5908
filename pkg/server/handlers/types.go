package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"atlashq/meridian/pkg/policy/store"
)

// errorBody is the JSON error envelope returned by every endpoint.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	// Code is a stable machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Field names the offending request field for validation errors.
	Field string `json:"field,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message, field string) {
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    code,
		Message: message,
		Field:   field,
	}})
}

// writeStoreError maps store errors onto HTTP responses: validation
// failures become 422, missing versions 404, everything else 500.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case store.IsValidation(err):
		field := ""
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			field = verr.Field
		}
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error(), field)
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), "")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred.", "")
	}
}

// decodeBody decodes a JSON request body, rejecting unknown fields so
// client typos fail loudly instead of being silently dropped.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON: "+err.Error(), "")
		return false
	}
	return true
}
