package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	messaging "github.com/fieldops/dispatch_services/internal/messaging_service/app"
	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

// ServiceCallService is the operator-facing side of the Service Call Store.
type ServiceCallService interface {
	Create(ctx context.Context, in servicecall.ServiceCallCreate) (*servicecall.ServiceCall, error)
	Get(ctx context.Context, id int64) (*servicecall.ServiceCall, error)
	List(ctx context.Context, filter servicecall.ServiceCallFilter) ([]*servicecall.ServiceCall, error)
	Update(ctx context.Context, id int64, upd servicecall.ServiceCallUpdate) (*servicecall.ServiceCall, error)
	Delete(ctx context.Context, id int64) error
	ListAssignments(ctx context.Context, filter servicecall.AssignmentFilter) ([]*servicecall.Assignment, error)
}

// Notifier announces service calls to professionals.
type Notifier interface {
	NotifyServiceCall(ctx context.Context, serviceCallID int64) (*messaging.NotifyResult, error)
	SendDirect(ctx context.Context, to, body string) bool
}

type ServiceCallHandler struct {
	calls    ServiceCallService
	notifier Notifier
	logger   *slog.Logger
	validate *validator.Validate
}

func NewServiceCallHandler(calls ServiceCallService, notifier Notifier, logger *slog.Logger, validate *validator.Validate) *ServiceCallHandler {
	return &ServiceCallHandler{
		calls:    calls,
		notifier: notifier,
		logger:   logger.With("handler", "service_calls"),
		validate: validate,
	}
}

func (h *ServiceCallHandler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", chi_middleware.GetReqID(r.Context()))
}

func (h *ServiceCallHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ServiceCallCreateRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := h.calls.Create(r.Context(), req.toDomain())
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "")
		return
	}
	h.requestLogger(r).InfoContext(r.Context(), "Service call created", "service_call_id", sc.ID, "profession", sc.Profession)
	respondWithJSON(w, http.StatusOK, toServiceCallResponse(sc))
}

// List accepts an optional status query parameter.
func (h *ServiceCallHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("status"))
}

func (h *ServiceCallHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "status"))
}

func (h *ServiceCallHandler) list(w http.ResponseWriter, r *http.Request, rawStatus string) {
	var filter servicecall.ServiceCallFilter
	if rawStatus != "" {
		st, err := servicecall.ParseStatus(rawStatus)
		if err != nil {
			respondWithDomainError(w, r, h.requestLogger(r), err, "")
			return
		}
		filter.Status = st
	}
	calls, err := h.calls.List(r.Context(), filter)
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "")
		return
	}
	respondWithJSON(w, http.StatusOK, toServiceCallResponses(calls))
}

func (h *ServiceCallHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := h.calls.Get(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "Service call not found")
		return
	}
	respondWithJSON(w, http.StatusOK, toServiceCallResponse(sc))
}

func (h *ServiceCallHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ServiceCallUpdateRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := h.calls.Update(r.Context(), id, req.toDomain())
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "Service call not found")
		return
	}
	respondWithJSON(w, http.StatusOK, toServiceCallResponse(sc))
}

func (h *ServiceCallHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.calls.Delete(r.Context(), id); err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "Service call not found")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Notify sends the call's description to the matching available professionals.
func (h *ServiceCallHandler) Notify(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.notifier.NotifyServiceCall(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "Service call not found")
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// ListAssignments accepts optional professional_id and status query parameters.
func (h *ServiceCallHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter servicecall.AssignmentFilter
	if raw := q.Get("professional_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid professional_id")
			return
		}
		filter.ProfessionalID = id
	}
	if raw := q.Get("status"); raw != "" {
		st, err := servicecall.ParseAssignmentStatus(raw)
		if err != nil {
			respondWithDomainError(w, r, h.requestLogger(r), err, "")
			return
		}
		filter.Status = st
	}

	assignments, err := h.calls.ListAssignments(r.Context(), filter)
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "")
		return
	}
	out := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, toAssignmentResponse(a))
	}
	respondWithJSON(w, http.StatusOK, out)
}
