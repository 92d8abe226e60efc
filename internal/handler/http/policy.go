package http

import (
	"encoding/json"
	"net/http"

	"github.com/telecare-labs/offsync/internal/logger"
)

// policyBody toggles and reports the server-wide transition block.
type policyBody struct {
	Blocked bool `json:"blocked"`
}

func (h *Handler) getPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, policyBody{Blocked: h.services.State.Blocked()})
}

func (h *Handler) setPolicy(w http.ResponseWriter, r *http.Request) {
	var body policyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.FromRequest(r).Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	h.services.State.SetBlocked(body.Blocked)
	writeJSON(w, r, http.StatusOK, policyBody{Blocked: h.services.State.Blocked()})
}
