package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/models"
)

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	snapshot, err := h.services.State.GetState(r.Context(), deviceID)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("device_id", deviceID).Msg("error getting device state")
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, snapshot)
}

func (h *Handler) putState(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var snapshot models.StateSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}
	snapshot.DeviceID = chi.URLParam(r, "deviceID")

	if err := h.services.State.PutState(r.Context(), snapshot); err != nil {
		log.Err(err).Str("device_id", snapshot.DeviceID).Msg("error saving device state")
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
