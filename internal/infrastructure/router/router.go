package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handler "flightalert-service/internal/interface/http"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/metrics"
	"flightalert-service/pkg/response"
)

// Tokens guards the privileged routes
type Tokens struct {
	// Admin is required on /api/admin; an empty value disables those routes
	Admin string
	// Cron is checked on the worker and sync triggers when set
	Cron string
}

// SetupRoutes configures the HTTP routes of the alert service
func SetupRoutes(
	r chi.Router,
	h *handler.AlertHandler,
	tokens Tokens,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	log logger.Logger,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			handler.ActorHeader,
		},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(handler.Instrument(m, log))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/flights", h.ListFlights)
		r.Put("/flights/{id}", h.UpdateFlight)
		r.Get("/alerts/history", h.AlertHistory)
		r.Get("/passengers/{id}/inbox", h.PassengerInbox)

		r.Route("/admin", func(r chi.Router) {
			r.Use(handler.RequireToken(tokens.Admin))
			r.Post("/override", h.Override)
		})

		// Triggers for external schedulers
		r.Group(func(r chi.Router) {
			r.Use(handler.OptionalToken(tokens.Cron))
			r.Post("/cron/process-jobs", h.ProcessJobs)
			r.Get("/cron/process-jobs", h.ProcessJobs)
			r.Post("/sync-flights", h.SyncFlights)
			r.Get("/sync-flights", h.SyncFlights)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "not found")
	})

	return r
}
