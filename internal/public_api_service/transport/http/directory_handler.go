package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	directoryapp "github.com/fieldops/dispatch_services/internal/directory_service/app"
	directory "github.com/fieldops/dispatch_services/internal/directory_service/domain"
)

const maxCSVUpload = 10 << 20

// DirectoryService is the operator-facing side of the Directory Store.
type DirectoryService interface {
	CreateProfession(ctx context.Context, name string) (*directory.Profession, error)
	GetProfession(ctx context.Context, id int64) (*directory.Profession, error)
	ListProfessions(ctx context.Context) ([]*directory.Profession, error)
	CreateProfessional(ctx context.Context, in directory.ProfessionalCreate) (*directory.Professional, error)
	GetProfessional(ctx context.Context, id int64) (*directory.Professional, error)
	ListProfessionals(ctx context.Context, filter directory.ProfessionalFilter) ([]*directory.Professional, error)
	UpdateProfessional(ctx context.Context, id int64, upd directory.ProfessionalUpdate) (*directory.Professional, error)
	DeleteProfessional(ctx context.Context, id int64) error
	FindAvailable(ctx context.Context, profession string, locations []string) ([]*directory.Professional, error)
	ImportCSV(ctx context.Context, r io.Reader) (*directoryapp.ImportResult, error)
}

type ImportResponse struct {
	Status string `json:"status"`
	*directoryapp.ImportResult
}

type DirectoryHandler struct {
	directory DirectoryService
	logger    *slog.Logger
	validate  *validator.Validate
}

func NewDirectoryHandler(dir DirectoryService, logger *slog.Logger, validate *validator.Validate) *DirectoryHandler {
	return &DirectoryHandler{
		directory: dir,
		logger:    logger.With("handler", "directory"),
		validate:  validate,
	}
}

func (h *DirectoryHandler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", chi_middleware.GetReqID(r.Context()))
}

// --- Professions ---

func (h *DirectoryHandler) CreateProfession(w http.ResponseWriter, r *http.Request) {
	var req ProfessionCreateRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.directory.CreateProfession(r.Context(), req.Name)
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "")
		return
	}
	h.requestLogger(r).InfoContext(r.Context(), "Profession created", "profession_id", p.ID)
	respondWithJSON(w, http.StatusOK, toProfessionResponse(p))
}

func (h *DirectoryHandler) ListProfessions(w http.ResponseWriter, r *http.Request) {
	ps, err := h.directory.ListProfessions(r.Context())
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "")
		return
	}
	out := make([]ProfessionResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProfessionResponse(p))
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *DirectoryHandler) GetProfession(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.directory.GetProfession(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "Profession not found")
		return
	}
	respondWithJSON(w, http.StatusOK, toProfessionResponse(p))
}

// --- Professionals ---

func (h *DirectoryHandler) CreateProfessional(w http.ResponseWriter, r *http.Request) {
	var req ProfessionalCreateRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.directory.CreateProfessional(r.Context(), req.toDomain())
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "")
		return
	}
	h.requestLogger(r).InfoContext(r.Context(), "Professional created", "professional_id", p.ID)
	respondWithJSON(w, http.StatusOK, toProfessionalResponse(p))
}

// ListProfessionals accepts optional profession and available query parameters.
func (h *DirectoryHandler) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := directory.ProfessionalFilter{Profession: strings.TrimSpace(q.Get("profession"))}
	if raw := q.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "available must be true or false")
			return
		}
		filter.Available = &available
	}
	if locs := q["location"]; len(locs) > 0 {
		filter.Locations = locs
	}

	ps, err := h.directory.ListProfessionals(r.Context(), filter)
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "")
		return
	}
	respondWithJSON(w, http.StatusOK, toProfessionalResponses(ps))
}

func (h *DirectoryHandler) GetProfessional(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.directory.GetProfessional(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "Professional not found")
		return
	}
	respondWithJSON(w, http.StatusOK, toProfessionalResponse(p))
}

func (h *DirectoryHandler) UpdateProfessional(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ProfessionalUpdateRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.directory.UpdateProfessional(r.Context(), id, req.toDomain())
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "Professional not found")
		return
	}
	respondWithJSON(w, http.StatusOK, toProfessionalResponse(p))
}

func (h *DirectoryHandler) DeleteProfessional(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.directory.DeleteProfessional(r.Context(), id); err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "Professional not found")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ByProfession lists every professional registered under the path profession, available or not.
func (h *DirectoryHandler) ByProfession(w http.ResponseWriter, r *http.Request) {
	profession := strings.TrimSpace(chi.URLParam(r, "profession"))
	ps, err := h.directory.ListProfessionals(r.Context(), directory.ProfessionalFilter{Profession: profession})
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "")
		return
	}
	respondWithJSON(w, http.StatusOK, toProfessionalResponses(ps))
}

// ByProfessionAndCities lists available professionals, restricted to cities when any are given.
func (h *DirectoryHandler) ByProfessionAndCities(w http.ResponseWriter, r *http.Request) {
	var req ByProfessionAndCitiesRequest
	if err := decodeAndValidate(w, r, h.validate, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	ps, err := h.directory.FindAvailable(r.Context(), req.Profession, req.Cities)
	if err != nil {
		respondWithDomainError(w, r, h.requestLogger(r), err, "")
		return
	}
	respondWithJSON(w, http.StatusOK, toProfessionalResponses(ps))
}

// UploadCSV imports professionals from the multipart "file" field.
func (h *DirectoryHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxCSVUpload)
	if err := r.ParseMultipartForm(maxCSVUpload); err != nil {
		logger.WarnContext(ctx, "Failed to parse CSV upload", "error", err)
		respondWithError(w, http.StatusBadRequest, "Expected multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	res, err := h.directory.ImportCSV(ctx, file)
	if err != nil {
		respondWithDomainError(w, r, logger, err, "")
		return
	}
	logger.InfoContext(ctx, "CSV imported", "filename", header.Filename, "added", res.Added, "skipped", res.Skipped)
	respondWithJSON(w, http.StatusOK, ImportResponse{Status: "success", ImportResult: res})
}
