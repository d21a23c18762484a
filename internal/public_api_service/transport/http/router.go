package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fieldops/dispatch_services/internal/public_api_service/middleware"
)

// RouterConfig carries the handlers and settings the console API is mounted with.
type RouterConfig struct {
	Webhook        *WebhookHandler
	Directory      *DirectoryHandler
	ServiceCalls   *ServiceCallHandler
	Messages       *MessageHandler
	OperatorSecret string // empty disables operator auth
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter mounts the public webhook and the operator console routes.
func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chi_middleware.RequestID)
	r.Use(chi_middleware.RealIP)
	r.Use(chi_middleware.Recoverer)
	r.Use(PrometheusMetricsMiddleware)
	r.Use(chi_middleware.Timeout(timeout))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Bot is running"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/messages", cfg.Webhook.HandleInbound)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.OperatorSecret, cfg.Logger))

		r.Get("/messages/", cfg.Messages.List)
		r.Post("/messages/send", cfg.Messages.Send)

		r.Route("/professions", func(r chi.Router) {
			r.Post("/", cfg.Directory.CreateProfession)
			r.Get("/", cfg.Directory.ListProfessions)
			r.Get("/{id}", cfg.Directory.GetProfession)
		})

		r.Route("/professionals", func(r chi.Router) {
			r.Post("/", cfg.Directory.CreateProfessional)
			r.Get("/", cfg.Directory.ListProfessionals)
			r.Get("/by-profession/{profession}", cfg.Directory.ByProfession)
			r.Post("/by-profession-and-cities/", cfg.Directory.ByProfessionAndCities)
			r.Post("/upload-csv/", cfg.Directory.UploadCSV)
			r.Get("/{id}", cfg.Directory.GetProfessional)
			r.Put("/{id}", cfg.Directory.UpdateProfessional)
			r.Delete("/{id}", cfg.Directory.DeleteProfessional)
		})

		r.Route("/service-calls", func(r chi.Router) {
			r.Post("/", cfg.ServiceCalls.Create)
			r.Get("/", cfg.ServiceCalls.List)
			r.Get("/by-status/{status}", cfg.ServiceCalls.ByStatus)
			r.Get("/{id}", cfg.ServiceCalls.Get)
			r.Put("/{id}", cfg.ServiceCalls.Update)
			r.Delete("/{id}", cfg.ServiceCalls.Delete)
			r.Post("/{id}/notify", cfg.ServiceCalls.Notify)
		})

		r.Get("/assignments/", cfg.ServiceCalls.ListAssignments)
	})

	return r
}
