package handler

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/almanac/internal/calendar"
)

// SchedulerHandler adapts HTTP requests to scheduling engine calls.
// The engine is single-writer; a mutex serializes all access.
type SchedulerHandler struct {
	mu      sync.Mutex
	manager *calendar.Manager
}

// NewSchedulerHandler creates a new HTTP API handler around the manager.
func NewSchedulerHandler(manager *calendar.Manager) *SchedulerHandler {
	return &SchedulerHandler{manager: manager}
}

// NewRouter creates an HTTP handler with all API routes mounted.
// Both production code and tests should use this function.
func NewRouter(manager *calendar.Manager) http.Handler {
	h := NewSchedulerHandler(manager)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Route("/calendars", func(r chi.Router) {
			r.Post("/", h.CreateCalendar)
			r.Get("/", h.ListCalendars)
			r.Patch("/{name}", h.EditCalendar)
			r.Post("/{name}/use", h.UseCalendar)

			r.Route("/{name}/events", func(r chi.Router) {
				r.Post("/", h.CreateEvent)
				r.Get("/", h.ListEvents)
				r.Patch("/", h.EditEvents)
			})

			r.Get("/{name}/export", h.ExportCalendar)
		})

		r.Route("/copies", func(r chi.Router) {
			r.Post("/event", h.CopyEvent)
			r.Post("/day", h.CopyDay)
			r.Post("/range", h.CopyRange)
		})
	})

	return r
}
