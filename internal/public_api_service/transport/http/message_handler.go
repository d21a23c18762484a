package http

import (
	"context"
	"log/slog"
	"net/http"

	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	inboundapp "github.com/fieldops/dispatch_services/internal/inbound_processor_service/app"
)

// MessageLogReader exposes the inbound message log.
type MessageLogReader interface {
	Recent(ctx context.Context) ([]inboundapp.LoggedMessage, error)
}

type MessageHandler struct {
	log      MessageLogReader
	notifier Notifier
	logger   *slog.Logger
	validate *validator.Validate
}

func NewMessageHandler(log MessageLogReader, notifier Notifier, logger *slog.Logger, validate *validator.Validate) *MessageHandler {
	return &MessageHandler{
		log:      log,
		notifier: notifier,
		logger:   logger.With("handler", "messages"),
		validate: validate,
	}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.log.Recent(r.Context())
	if err != nil {
		respondWithDomainError(w, r, h.logger.With("request_id", chi_middleware.GetReqID(r.Context())), err, "")
		return
	}
	if entries == nil {
		entries = []inboundapp.LoggedMessage{}
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// Send delivers one operator-composed message. A gateway failure is reported as success=false.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	ok := h.notifier.SendDirect(r.Context(), req.To, req.Body)
	respondWithJSON(w, http.StatusOK, SendMessageResponse{Success: ok})
}
