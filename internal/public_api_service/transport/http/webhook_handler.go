package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	inbound "github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
)

// InboundProcessor handles one webhook batch.
type InboundProcessor interface {
	Process(ctx context.Context, batch []inbound.RawInboundMessage) []inbound.Outcome
}

type WebhookResponse struct {
	Status    string            `json:"status"`
	Processed []inbound.Outcome `json:"processed"`
}

type WebhookHandler struct {
	processor InboundProcessor
	logger    *slog.Logger
	validate  *validator.Validate
}

func NewWebhookHandler(processor InboundProcessor, logger *slog.Logger, validate *validator.Validate) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger.With("handler", "webhook"),
		validate:  validate,
	}
}

// HandleInbound receives a batch of professionals' replies from the messaging provider.
// Per-message failures are reported as outcomes; the request itself only fails on a malformed batch.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req WebhookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Failed to decode webhook body", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if len(req.Messages) == 0 {
		logger.WarnContext(ctx, "Webhook called without messages")
		respondWithError(w, http.StatusBadRequest, "No messages found in the request.")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		logger.WarnContext(ctx, "Webhook batch failed validation", "error", err)
		respondWithError(w, http.StatusBadRequest, validationError(err).Error())
		return
	}

	batch := make([]inbound.RawInboundMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		batch = append(batch, inbound.RawInboundMessage{From: m.From, FromName: m.FromName, Body: m.Text.Body})
	}
	logger.InfoContext(ctx, "Received inbound batch", "count", len(batch))

	outcomes := h.processor.Process(ctx, batch)
	respondWithJSON(w, http.StatusOK, WebhookResponse{Status: "success", Processed: outcomes})
}
