package handler

import (
	"context"
	"net/http"

	"solar-relay/internal/adapter/line"
	"solar-relay/internal/domain/model"
	"solar-relay/internal/domain/ports"
)

// CommandHandler executes one inbound chat command.
type CommandHandler interface {
	Handle(ctx context.Context, in model.InboundText) model.Command
}

// WebhookHandler receives LINE webhook events.
type WebhookHandler struct {
	commands CommandHandler
	logger   ports.Logger
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(commands CommandHandler, logger ports.Logger) *WebhookHandler {
	return &WebhookHandler{commands: commands, logger: logger}
}

// Receive handles POST /webhook. Every text message event is dispatched in order.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := line.DecodeWebhook(r.Body)
	if err != nil {
		h.logger.Warn(r.Context(), "rejecting webhook body", "error", err)
		respondText(w, http.StatusBadRequest, "invalid body")
		return
	}

	for _, text := range body.TextMessages() {
		h.commands.Handle(r.Context(), text)
	}
	respondText(w, http.StatusOK, "OK")
}
