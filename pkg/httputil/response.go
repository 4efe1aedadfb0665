// Package httputil holds the JSON and SSE response helpers shared by all
// handlers.
package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// errorBody is the error shape of every non-streaming endpoint.
type errorBody struct {
	Error string `json:"error"`
}

// RespondJSON writes payload as JSON with the given status code. Encoding
// failures are logged; the status line is already committed at that point.
func RespondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encoding JSON response: %v", err)
	}
}

// RespondError writes a JSON error body with the given status code.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, errorBody{Error: message})
}
