package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/models"
)

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}
	req.DeviceID = chi.URLParam(r, "deviceID")

	resp, err := h.services.State.Verify(r.Context(), req)
	if err != nil {
		log.Err(err).Str("device_id", req.DeviceID).Msg("error verifying batch digest")
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}
