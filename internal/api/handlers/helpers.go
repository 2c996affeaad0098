package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	defaultListLimit = 25
	maxListLimit     = 100
)

// parseLimit extracts and clamps the limit query parameter.
func parseLimit(r *http.Request) int {
	limit := defaultListLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}
	return limit
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
