package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/store"
	"github.com/telecare-labs/offsync/models"
)

// conflictResponse is the 409 body. CurrentVersion tells the client where
// the server actually is so a replay session can adopt it directly.
type conflictResponse struct {
	CurrentVersion int64  `json:"current_version"`
	Error          string `json:"error,omitempty"`
}

func (h *Handler) applyTransition(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	deviceID := chi.URLParam(r, "deviceID")

	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	next, err := h.services.State.ApplyTransition(r.Context(), deviceID, req)
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, store.ErrOperationReplayed) {
			log.Warn().
				Str("device_id", deviceID).
				Str("operation_id", req.OperationID).
				Int64("expected_version", req.ExpectedVersion).
				Int64("current_version", next.Version).
				Msg("transition rejected with version conflict")
			writeJSON(w, r, http.StatusConflict, conflictResponse{
				CurrentVersion: next.Version,
				Error:          err.Error(),
			})
			return
		}

		log.Err(err).Str("device_id", deviceID).Str("operation_id", req.OperationID).Msg("error applying transition")
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, models.TransitionResult{NewVersion: next.Version})
}
