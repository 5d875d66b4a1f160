/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the calendar front-end

ROUTE GROUPS:
  /api/calendar         Positioned week view
  /api/library, atoms, templates, pool   Library and composer
  /api/encounters/*     Scheduled encounter operations
  /api/drag, drop, resize, merge         Interaction hooks
  /api/scenarios/*      Demo scenarios
  /healthz, /metrics    Operations

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/bentobox/cmd_serve.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
// allowedOrigins defaults to every origin when empty.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/calendar", h.GetCalendar)

		// Library & composer
		r.Get("/library", h.GetLibrary)
		r.Post("/atoms/{kind}", h.AddAtom)
		r.Route("/templates", func(r chi.Router) {
			r.Post("/", h.CreateTemplate)
			r.Get("/{id}", h.GetTemplate)
			r.Put("/{id}", h.UpdateTemplate)
			r.Patch("/{id}", h.PatchTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
		})

		// Pool
		r.Route("/pool", func(r chi.Router) {
			r.Get("/", h.ListPool)
			r.Post("/templates/{id}", h.AddTemplateToPool)
			r.Post("/client-groups/{id}", h.AddClientGroupToPool)
			r.Delete("/{id}", h.RemoveFromPool)
		})

		// Encounters
		r.Route("/encounters/{id}", func(r chi.Router) {
			r.Get("/", h.GetEncounter)
			r.Delete("/", h.DeleteEncounter)
			r.Post("/cancel", h.CancelEncounter)
			r.Post("/reinstate", h.ReinstateEncounter)
			r.Post("/duplicate", h.DuplicateEncounter)
			r.Post("/repeat", h.RepeatEncounter)
			r.Put("/overrides", h.SetOverrides)
			r.Put("/time", h.RetimeEncounter)
		})

		// Interaction hooks
		r.Route("/drag", func(r chi.Router) {
			r.Post("/start", h.DragStart)
			r.Post("/over", h.DragOver)
			r.Post("/leave", h.DragLeave)
			r.Post("/cancel", h.DragCancel)
		})
		r.Post("/drop", h.Drop)
		r.Route("/resize", func(r chi.Router) {
			r.Post("/start", h.ResizeStart)
			r.Post("/move", h.ResizeMove)
			r.Post("/end", h.ResizeEnd)
		})
		r.Get("/merge", h.GetPendingMerge)
		r.Post("/merge/choice", h.ChooseMerge)
		r.Get("/interaction", h.GetInteraction)

		// Preferences
		r.Get("/filters/staff", h.GetStaffFilter)
		r.Put("/filters/staff", h.SetStaffFilter)
		r.Put("/preferences/time-format", h.SetTimeFormat)

		r.Get("/snapshot", h.GetSnapshot)
		r.Get("/status", h.GetStatus)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
