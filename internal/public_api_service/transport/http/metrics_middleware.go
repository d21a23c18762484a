package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests chi could not route.
const unmatchedRoute = "unmatched"

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatch_api",
			Name:      "requests_total",
			Help:      "Console and webhook requests by route and response code.",
		},
		[]string{"method", "route", "code"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dispatch_api",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving a request, by route.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30, 60},
		},
		[]string{"method", "route"},
	)

	apiRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dispatch_api",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served. Webhook batches hold a slot for the whole batch.",
		},
	)
)

// PrometheusMetricsMiddleware records in-flight requests, counts and durations labelled by chi route pattern.
func PrometheusMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiRequestsInFlight.Inc()
		defer apiRequestsInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		route := routeLabel(r)
		apiRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		apiRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(code)).Inc()
	})
}

// routeLabel is the matched chi pattern with sub-router wildcards collapsed, e.g. "/service-calls/{id}".
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	pattern := rctx.RoutePattern()
	if pattern == "" {
		return unmatchedRoute
	}
	return pattern
}
