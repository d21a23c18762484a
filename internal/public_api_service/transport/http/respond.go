package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	directory "github.com/fieldops/dispatch_services/internal/directory_service/domain"
	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Detail string `json:"detail"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

func respondWithError(w http.ResponseWriter, code int, detail string) {
	respondWithJSON(w, code, errorResponse{Detail: detail})
}

// statusFromError maps domain sentinels to HTTP status codes. Unknown errors are 500s.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, directory.ErrNotFound), errors.Is(err, servicecall.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, directory.ErrProfessionNotFound):
		return http.StatusBadRequest, "Profession not found"
	case errors.Is(err, directory.ErrDuplicateEntry):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, servicecall.ErrConflict):
		return http.StatusConflict, "Service call was modified concurrently, reload and retry"
	case errors.Is(err, servicecall.ErrStatusRegression):
		return http.StatusConflict, err.Error()
	case errors.Is(err, servicecall.ErrInvalidStatus),
		errors.Is(err, servicecall.ErrInvalidUrgency),
		errors.Is(err, servicecall.ErrInvalidInput),
		errors.Is(err, directory.ErrInvalidInput):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}

// respondWithDomainError logs 5xx errors and writes the mapped status.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFound string) {
	code, detail := statusFromError(err)
	if code >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
	}
	if code == http.StatusNotFound && notFound != "" {
		detail = notFound
	}
	respondWithError(w, code, detail)
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(fields, "; "))
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
