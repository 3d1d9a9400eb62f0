package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/almanac/internal/calendar"
	"github.com/rezkam/almanac/internal/domain"
	"github.com/rezkam/almanac/internal/http/response"
)

// CreateEventRequest is the body of POST /v1/calendars/{name}/events.
// Start and End are local wall-clock strings in the calendar's timezone;
// all-day events use date-only strings and omit End.
type CreateEventRequest struct {
	Subject     string         `json:"subject"`
	Start       string         `json:"start"`
	End         string         `json:"end,omitempty"`
	AllDay      bool           `json:"all_day,omitempty"`
	Recurrence  *RecurrenceDTO `json:"recurrence,omitempty"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Public      *bool          `json:"public,omitempty"`
	AutoDecline bool           `json:"auto_decline,omitempty"`
}

// EditEventsRequest is the body of PATCH /v1/calendars/{name}/events.
// Scope selects how many events the edit touches: "single" (the default)
// edits one event matched by subject and start, "all" edits every event with
// the subject, and "from" edits events whose date falls on or after From,
// splitting recurring series at that date.
type EditEventsRequest struct {
	Scope    string `json:"scope,omitempty"`
	Property string `json:"property"`
	Value    string `json:"value"`
	Subject  string `json:"subject"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	From     string `json:"from,omitempty"`
}

// CreateEvent handles POST /v1/calendars/{name}/events.
func (h *SchedulerHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	cal, err := h.manager.Calendar(chi.URLParam(r, "name"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	opts := calendar.EventOptions{
		Description: req.Description,
		Location:    req.Location,
		Public:      req.Public,
		AutoDecline: req.AutoDecline,
	}

	ev, err := h.createEvent(cal, req, opts)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create event via HTTP",
			"calendar", cal.Name(),
			"subject", req.Subject,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "event created via HTTP",
		"calendar", cal.Name(),
		"subject", ev.Subject,
		"all_day", ev.AllDay(),
		"recurring", ev.Recurring())

	response.Created(w, MapEventToDTO(ev))
}

// createEvent dispatches to the engine constructor matching the request
// shape.
func (h *SchedulerHandler) createEvent(cal *calendar.Calendar, req CreateEventRequest, opts calendar.EventOptions) (*domain.Event, error) {
	loc := cal.Location()

	if req.AllDay {
		date, err := calendar.ParseDate(req.Start, loc)
		if err != nil {
			return nil, err
		}
		if req.Recurrence != nil {
			until, err := parseOptionalDate(req.Recurrence.Until, loc)
			if err != nil {
				return nil, err
			}
			return cal.CreateRecurringAllDayEvent(req.Subject, date, req.Recurrence.Weekdays, req.Recurrence.Count, until, opts)
		}
		return cal.CreateAllDayEvent(req.Subject, date, opts)
	}

	start, err := calendar.ParseDateTime(req.Start, loc)
	if err != nil {
		return nil, err
	}
	end, err := calendar.ParseDateTime(req.End, loc)
	if err != nil {
		return nil, err
	}

	if req.Recurrence != nil {
		until, err := parseOptionalDate(req.Recurrence.Until, loc)
		if err != nil {
			return nil, err
		}
		return cal.CreateRecurringEvent(req.Subject, start, end, req.Recurrence.Weekdays, req.Recurrence.Count, until, opts)
	}
	return cal.CreateEvent(req.Subject, start, end, opts)
}

// ListEvents handles GET /v1/calendars/{name}/events.
// Accepts either ?on=DATE for a single day or ?from=DATE&to=DATE for an
// inclusive range.
func (h *SchedulerHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cal, err := h.manager.Calendar(chi.URLParam(r, "name"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	q := r.URL.Query()
	var events []*domain.Event

	switch {
	case q.Get("on") != "":
		date, err := calendar.ParseDate(q.Get("on"), cal.Location())
		if err != nil {
			response.BadRequest(w, "invalid 'on' date")
			return
		}
		events = cal.GetEventsOn(date)
	case q.Get("from") != "" && q.Get("to") != "":
		from, err := calendar.ParseDate(q.Get("from"), cal.Location())
		if err != nil {
			response.BadRequest(w, "invalid 'from' date")
			return
		}
		to, err := calendar.ParseDate(q.Get("to"), cal.Location())
		if err != nil {
			response.BadRequest(w, "invalid 'to' date")
			return
		}
		events = cal.GetEventsFrom(from, to)
	default:
		response.BadRequest(w, "either 'on' or both 'from' and 'to' query parameters are required")
		return
	}

	response.OK(w, map[string]any{"events": mapEventsToDTOs(events)})
}

// EditEvents handles PATCH /v1/calendars/{name}/events.
func (h *SchedulerHandler) EditEvents(w http.ResponseWriter, r *http.Request) {
	var req EditEventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	switch req.Scope {
	case "", "single", "all", "from":
	default:
		response.BadRequest(w, "scope must be one of: single, all, from")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	cal, err := h.manager.Calendar(chi.URLParam(r, "name"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	edited, err := h.editEvents(cal, req)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to edit events via HTTP",
			"calendar", cal.Name(),
			"scope", req.Scope,
			"subject", req.Subject,
			"property", req.Property,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "events edited via HTTP",
		"calendar", cal.Name(),
		"scope", req.Scope,
		"subject", req.Subject,
		"property", req.Property,
		"edited", len(edited))

	response.OK(w, map[string]any{"events": mapEventsToDTOs(edited)})
}

func (h *SchedulerHandler) editEvents(cal *calendar.Calendar, req EditEventsRequest) ([]*domain.Event, error) {
	loc := cal.Location()

	switch req.Scope {
	case "", "single":
		start, err := parseDateOrDateTime(req.Start, loc)
		if err != nil {
			return nil, err
		}
		var end *time.Time
		if req.End != "" {
			t, err := calendar.ParseDateTime(req.End, loc)
			if err != nil {
				return nil, err
			}
			end = &t
		}
		ev, err := cal.EditEvent(req.Property, req.Subject, start, end, req.Value)
		if err != nil {
			return nil, err
		}
		return []*domain.Event{ev}, nil

	case "all":
		return cal.EditAllEvents(req.Property, req.Subject, req.Value)

	case "from":
		cutover, err := calendar.ParseDate(req.From, loc)
		if err != nil {
			return nil, err
		}
		return cal.EditEventsFrom(req.Property, req.Subject, cutover, req.Value)
	}
	return nil, domain.ErrInvalidPropertyValue
}

func parseOptionalDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return calendar.ParseDate(value, loc)
}

// parseDateOrDateTime accepts a full local date-time or a bare date, which
// resolves to midnight. All-day events are addressed by date.
func parseDateOrDateTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := calendar.ParseDateTime(value, loc); err == nil {
		return t, nil
	}
	return calendar.ParseDate(value, loc)
}
