package common

import (
	"encoding/json"
	"net/http"
)

// apiError is the error payload shape shared by every handler:
// {"error":{"code":...,"message":...,"details":...}}.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes the canonical error envelope. Details is optional and
// carries validation specifics when present.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": apiError{Code: code, Message: message, Details: details},
	})
}
