package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/almanac/internal/calendar"
	"github.com/rezkam/almanac/internal/export"
	"github.com/rezkam/almanac/internal/http/response"
)

// ExportCalendar handles GET /v1/calendars/{name}/export.
// Query parameters: format (csv or ics), from and to (inclusive dates).
// Recurring events are flattened to their occurrences within the range.
func (h *SchedulerHandler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cal, err := h.manager.Calendar(chi.URLParam(r, "name"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format != "csv" && format != "ics" {
		response.BadRequest(w, "format must be csv or ics")
		return
	}

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

	occurrences := cal.ResolveOccurrences(from, to)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cal.Name()+".csv"))
		err = export.WriteCSV(w, occurrences)
	case "ics":
		w.Header().Set("Content-Type", "text/calendar")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cal.Name()+".ics"))
		err = export.WriteICS(w, cal.Name(), occurrences)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to write export",
			"calendar", cal.Name(),
			"format", format,
			"error", err)
		return
	}

	slog.InfoContext(r.Context(), "calendar exported via HTTP",
		"calendar", cal.Name(),
		"format", format,
		"occurrences", len(occurrences))
}
