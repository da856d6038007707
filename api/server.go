/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/units/*        Unit lifecycle, moves, pause, forecast, timeline
  /api/calendar/*     Week projection
  /api/schedule/*     Auto-scheduling
  /api/capacity/*     Staffing and vendor lanes
  /api/wip-limits     Per-stage WIP caps
  /api/settings/*     Lock date
  /api/catalog        Work-content reference data

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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
		// Unit routes
		r.Route("/units", func(r chi.Router) {
			r.Get("/", h.ListUnits)
			r.Post("/", h.CreateUnit)
			r.Get("/{id}", h.GetUnit)
			r.Put("/{id}", h.UpdateUnit)
			r.Post("/{id}/move", h.MoveStage)
			r.Post("/{id}/pause", h.PauseUnit)
			r.Post("/{id}/resume", h.ResumeUnit)
			r.Put("/{id}/forecast", h.SetForecast)
			r.Delete("/{id}/forecast", h.ClearForecast)
			r.Get("/{id}/timeline", h.GetTimeline)
		})

		// Calendar routes
		r.Route("/calendar", func(r chi.Router) {
			r.Get("/week", h.GetCalendarWeek)
		})

		// Scheduling routes
		r.Route("/schedule", func(r chi.Router) {
			r.Post("/auto", h.RunAutoSchedule)
		})

		// Capacity routes
		r.Route("/capacity", func(r chi.Router) {
			r.Get("/", h.GetCapacity)
			r.Put("/vendors", h.SetVendors)
			r.Put("/{department}", h.UpdateStaffing)
		})

		// WIP limit routes
		r.Route("/wip-limits", func(r chi.Router) {
			r.Get("/", h.GetWIPLimits)
			r.Put("/", h.SetWIPLimits)
		})

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/lock-date", h.GetLockDate)
			r.Put("/lock-date", h.SetLockDate)
		})

		// Catalog routes
		r.Get("/catalog", h.GetCatalog)
	})

	return r
}
