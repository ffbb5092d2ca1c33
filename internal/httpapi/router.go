package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the wire contract: the quote endpoint, the
// price-monitor endpoint and a health probe.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(recoverPanic)
	r.Use(limitBody)
	r.Use(withGzip)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/quote", h.Quote)
		r.Get("/price-monitor", h.PriceMonitor)
		r.Post("/price-monitor", h.UpdateMonitorConfig)
	})

	return r
}
