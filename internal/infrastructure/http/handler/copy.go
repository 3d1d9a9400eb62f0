package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rezkam/almanac/internal/calendar"
	"github.com/rezkam/almanac/internal/http/response"
)

// CopyEventRequest is the body of POST /v1/copies/event. The event is looked
// up in the currently selected calendar; Start is a local wall-clock string
// in the source calendar's timezone and TargetStart in the target's.
type CopyEventRequest struct {
	Subject     string `json:"subject"`
	Start       string `json:"start"`
	Target      string `json:"target"`
	TargetStart string `json:"target_start"`
}

// CopyDayRequest is the body of POST /v1/copies/day.
type CopyDayRequest struct {
	Date       string `json:"date"`
	Target     string `json:"target"`
	TargetDate string `json:"target_date"`
}

// CopyRangeRequest is the body of POST /v1/copies/range. From and To bound
// the source days inclusively; TargetStart receives the events of From, with
// later days keeping their offset.
type CopyRangeRequest struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Target      string `json:"target"`
	TargetStart string `json:"target_start"`
}

// CopyEvent handles POST /v1/copies/event.
func (h *SchedulerHandler) CopyEvent(w http.ResponseWriter, r *http.Request) {
	var req CopyEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	source, target, err := h.copyEndpoints(req.Target)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	start, err := parseDateOrDateTime(req.Start, source.Location())
	if err != nil {
		response.BadRequest(w, "invalid 'start' value")
		return
	}
	targetStart, err := parseDateOrDateTime(req.TargetStart, target.Location())
	if err != nil {
		response.BadRequest(w, "invalid 'target_start' value")
		return
	}

	ev, err := h.manager.CopyEvent(req.Subject, start, req.Target, targetStart)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to copy event via HTTP",
			"subject", req.Subject,
			"target", req.Target,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "event copied via HTTP",
		"subject", ev.Subject,
		"target", req.Target)

	response.Created(w, MapEventToDTO(ev))
}

// CopyDay handles POST /v1/copies/day.
func (h *SchedulerHandler) CopyDay(w http.ResponseWriter, r *http.Request) {
	var req CopyDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	source, target, err := h.copyEndpoints(req.Target)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	date, err := calendar.ParseDate(req.Date, source.Location())
	if err != nil {
		response.BadRequest(w, "invalid 'date' value")
		return
	}
	targetDate, err := calendar.ParseDate(req.TargetDate, target.Location())
	if err != nil {
		response.BadRequest(w, "invalid 'target_date' value")
		return
	}

	copied, err := h.manager.CopyEventsOnDay(date, req.Target, targetDate)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to copy day via HTTP",
			"date", req.Date,
			"target", req.Target,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "day copied via HTTP",
		"date", req.Date,
		"target", req.Target,
		"copied", len(copied))

	response.Created(w, map[string]any{"events": mapEventsToDTOs(copied)})
}

// CopyRange handles POST /v1/copies/range.
func (h *SchedulerHandler) CopyRange(w http.ResponseWriter, r *http.Request) {
	var req CopyRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	source, target, err := h.copyEndpoints(req.Target)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	from, err := calendar.ParseDate(req.From, source.Location())
	if err != nil {
		response.BadRequest(w, "invalid 'from' value")
		return
	}
	to, err := calendar.ParseDate(req.To, source.Location())
	if err != nil {
		response.BadRequest(w, "invalid 'to' value")
		return
	}
	targetStart, err := calendar.ParseDate(req.TargetStart, target.Location())
	if err != nil {
		response.BadRequest(w, "invalid 'target_start' value")
		return
	}

	copied, err := h.manager.CopyEventsInRange(from, to, req.Target, targetStart)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to copy range via HTTP",
			"from", req.From,
			"to", req.To,
			"target", req.Target,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "range copied via HTTP",
		"from", req.From,
		"to", req.To,
		"target", req.Target,
		"copied", len(copied))

	response.Created(w, map[string]any{"events": mapEventsToDTOs(copied)})
}

// copyEndpoints resolves the currently selected source calendar and the
// named target. Times in copy requests are interpreted in each side's own
// timezone.
func (h *SchedulerHandler) copyEndpoints(targetName string) (source, target *calendar.Calendar, err error) {
	source, err = h.manager.Current()
	if err != nil {
		return nil, nil, err
	}
	target, err = h.manager.Calendar(targetName)
	if err != nil {
		return nil, nil, err
	}
	return source, target, nil
}
