package http

import (
	"encoding/json"
	"net/http"

	"github.com/telecare-labs/offsync/internal/logger"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, r, statusFromError(err), map[string]string{"error": err.Error()})
}
