package handler

import (
	"errors"
	"net/http"

	"solar-relay/internal/domain/ports"
	"solar-relay/internal/usecase"
)

// RelayHandler triggers a relay cycle over HTTP.
type RelayHandler struct {
	runner usecase.CycleRunner
	logger ports.Logger
}

// NewRelayHandler constructs a RelayHandler.
func NewRelayHandler(runner usecase.CycleRunner, logger ports.Logger) *RelayHandler {
	return &RelayHandler{runner: runner, logger: logger}
}

// SendData handles GET /send-data. The acknowledgement does not depend on
// whether the push succeeded; only a rejected trigger changes the response.
func (h *RelayHandler) SendData(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.Run(r.Context())
	switch {
	case errors.Is(err, usecase.ErrCycleInProgress):
		respondJSON(w, http.StatusConflict, ack{Status: "busy", Message: err.Error()})
		return
	case errors.Is(err, usecase.ErrCycleThrottled):
		respondJSON(w, http.StatusTooManyRequests, ack{Status: "throttled", Message: err.Error()})
		return
	case err != nil:
		h.logger.Error(r.Context(), "relay cycle failed", "error", err)
	}

	if !result.Delivery.OK() {
		h.logger.Warn(r.Context(), "acknowledging trigger despite failed delivery", "status", result.Delivery.StatusCode)
	}
	respondJSON(w, http.StatusOK, ack{Status: "success", Message: "Data sent to LINE"})
}
