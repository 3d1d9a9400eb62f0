package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/almanac/internal/http/response"
)

// CreateCalendarRequest is the body of POST /v1/calendars.
type CreateCalendarRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// EditCalendarRequest is the body of PATCH /v1/calendars/{name}.
type EditCalendarRequest struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// CreateCalendar handles POST /v1/calendars.
func (h *SchedulerHandler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var req CreateCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	cal, err := h.manager.CreateCalendar(req.Name, req.Timezone)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create calendar via HTTP",
			"name", req.Name,
			"timezone", req.Timezone,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "calendar created via HTTP",
		"name", cal.Name(),
		"timezone", cal.Location().String())

	response.Created(w, h.mapCalendarToDTO(cal.Name()))
}

// ListCalendars handles GET /v1/calendars.
func (h *SchedulerHandler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := h.manager.CalendarNames()
	dtos := make([]CalendarDTO, 0, len(names))
	for _, name := range names {
		dtos = append(dtos, h.mapCalendarToDTO(name))
	}

	response.OK(w, map[string]any{"calendars": dtos})
}

// EditCalendar handles PATCH /v1/calendars/{name}.
func (h *SchedulerHandler) EditCalendar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req EditCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.manager.EditCalendar(name, req.Property, req.Value); err != nil {
		slog.ErrorContext(r.Context(), "failed to edit calendar via HTTP",
			"name", name,
			"property", req.Property,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	// A rename moves the calendar to its new key.
	updated := name
	if req.Property == "name" {
		updated = req.Value
	}

	slog.InfoContext(r.Context(), "calendar updated via HTTP",
		"name", updated,
		"property", req.Property)

	response.OK(w, h.mapCalendarToDTO(updated))
}

// UseCalendar handles POST /v1/calendars/{name}/use.
func (h *SchedulerHandler) UseCalendar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.manager.UseCalendar(name); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "calendar selected via HTTP", "name", name)

	response.OK(w, h.mapCalendarToDTO(name))
}

// mapCalendarToDTO builds the wire representation of a named calendar.
// Callers hold the handler lock and have verified the calendar exists.
func (h *SchedulerHandler) mapCalendarToDTO(name string) CalendarDTO {
	dto := CalendarDTO{Name: name}

	cal, err := h.manager.Calendar(name)
	if err != nil {
		return dto
	}
	dto.Timezone = cal.Location().String()
	dto.EventCount = cal.EventCount()

	if current, err := h.manager.Current(); err == nil && current.Name() == cal.Name() {
		dto.Current = true
	}
	return dto
}
