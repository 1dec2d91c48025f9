package handler

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/avelar-dev/eventhub/internal/metrics"
)

// NewRouter builds the full HTTP surface: middleware stack, health and
// metrics endpoints, and the event API under /api/events.
func NewRouter(h *EventHandler, logger zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(logger))          // structured access log
	r.Use(Metrics)                 // Prometheus instrumentation
	r.Use(CORS)                    // permissive CORS

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/{id}", h.GetEvent)
		r.Put("/{id}", h.UpdateEvent)
		r.Delete("/{id}", h.DeleteEvent)
		r.Put("/{id}/register", h.RegisterUser)
	})

	return r
}
