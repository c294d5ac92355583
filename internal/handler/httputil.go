// Package handler serves the dashboard over HTTP and WebSocket.
package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/matthewbaird/sughar/internal/auth"
	"github.com/matthewbaird/sughar/internal/docstore"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON encode error: %v", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// storeErrorToHTTP maps store errors to HTTP responses. Anything other than
// a missing document is reported as a bare 500; the cause is only logged.
func storeErrorToHTTP(w http.ResponseWriter, err error) {
	if docstore.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "not found")
		return
	}
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// requireOwner extracts the authenticated owner id or writes a 401.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.OwnerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return "", false
	}
	return id, true
}
