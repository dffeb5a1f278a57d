/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend collaborator

ROUTE GROUPS:
  /api/periodic/*  Four-quarter-cycle records (CRUD, import, export)
  /api/single/*    Single-cycle records (CRUD, import, export)
  /api/digest      Digest preview

SECURITY NOTE:
  No authentication middleware. Access control is handled by the
  surrounding deployment, not by this engine.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Periodic (four-quarter cycle) records
		r.Route("/periodic", func(r chi.Router) {
			r.Get("/", h.ListPeriodic)
			r.Post("/", h.CreatePeriodic)
			r.Post("/import", h.ImportPeriodic)
			r.Get("/export", h.ExportPeriodic)
			r.Get("/{key}", h.GetPeriodic)
			r.Put("/{key}", h.UpdatePeriodic)
			r.Delete("/{key}", h.DeletePeriodic)
		})

		// Single-cycle records
		r.Route("/single", func(r chi.Router) {
			r.Get("/", h.ListSingle)
			r.Post("/", h.CreateSingle)
			r.Post("/import", h.ImportSingle)
			r.Get("/export", h.ExportSingle)
			r.Get("/{key}", h.GetSingle)
			r.Put("/{key}", h.UpdateSingle)
			r.Delete("/{key}", h.DeleteSingle)
		})

		// Reminder digest preview
		r.Get("/digest", h.GetDigest)
	})

	return r
}
