// Package server exposes the session service over the legacy REST
// surface. It only translates requests and outcome codes; every rule
// lives behind the service interface.
package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ga-dutra/batepapo-uol-api/services"
)

// NewRouter wires the REST routes onto a chi router. The acting
// identity always travels in the User header, never in the body.
func NewRouter(log *slog.Logger, service services.ISessionService) *chi.Mux {
	h := &Handler{log: log, service: service}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/participants", h.Join)
	r.Get("/participants", h.ListParticipants)
	r.Post("/messages", h.Send)
	r.Get("/messages", h.ListMessages)
	r.Post("/status", h.Heartbeat)
	r.Put("/messages/{idMessage}", h.EditMessage)
	r.Delete("/messages/{idMessage}", h.DeleteMessage)

	return r
}
