package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Get("/api/ping", h.ping)

	router.Route("/api/devices/{deviceID}", func(r chi.Router) {
		r.Get("/state", h.getState)
		r.Put("/state", h.putState)
		r.Post("/transitions", h.applyTransition)
		r.Post("/verify", h.verify)
	})

	router.Get("/api/policy", h.getPolicy)
	router.Put("/api/policy", h.setPolicy)

	return router
}
