package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/almanac/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, field, issue string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: []ErrorField{
				{Field: field, Issue: issue},
			},
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

// InternalError sends a 500 Internal Server Error.
// Logs the error server-side but returns a generic message to the client.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error", "error", err)
	}

	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrSubjectRequired):
		ValidationError(w, "subject", "required field missing")
	case errors.Is(err, domain.ErrStartRequired):
		ValidationError(w, "start", "required field missing")
	case errors.Is(err, domain.ErrInvalidTimeRange):
		ValidationError(w, "end", "must be after start")
	case errors.Is(err, domain.ErrMultiDayRecurring):
		ValidationError(w, "end", "recurring events must start and end on the same day")
	case errors.Is(err, domain.ErrInvalidWeekday):
		ValidationError(w, "weekdays", "unknown weekday code")
	case errors.Is(err, domain.ErrNoWeekdays):
		ValidationError(w, "weekdays", "at least one weekday required")
	case errors.Is(err, domain.ErrNoTerminator):
		ValidationError(w, "recurrence", "either count or until required")
	case errors.Is(err, domain.ErrAmbiguousTerminator):
		ValidationError(w, "recurrence", "count and until are mutually exclusive")
	case errors.Is(err, domain.ErrUnknownProperty):
		ValidationError(w, "property", "unknown event property")
	case errors.Is(err, domain.ErrInvalidPropertyValue):
		ValidationError(w, "value", "invalid value for property")
	case errors.Is(err, domain.ErrCalendarNameRequired):
		ValidationError(w, "name", "required field missing")
	case errors.Is(err, domain.ErrInvalidTimezone):
		ValidationError(w, "timezone", "unknown IANA timezone")
	case errors.Is(err, domain.ErrAmbiguousEvent):
		BadRequest(w, "criteria match more than one event")
	case errors.Is(err, domain.ErrNoOccurrencesAfter):
		BadRequest(w, "no occurrences on or after the given date")
	case errors.Is(err, domain.ErrNoEventsToCopy):
		BadRequest(w, "no events in the given range")
	case errors.Is(err, domain.ErrNoCurrentCalendar):
		BadRequest(w, "no calendar selected")

	// Not found errors (404)
	case errors.Is(err, domain.ErrEventNotFound):
		NotFound(w, "event")
	case errors.Is(err, domain.ErrCalendarNotFound):
		NotFound(w, "calendar")

	// Conflict errors (409)
	case errors.Is(err, domain.ErrEventConflict):
		Conflict(w, "event conflicts with an existing event")
	case errors.Is(err, domain.ErrCalendarExists):
		Conflict(w, "calendar already exists")

	// Unknown errors (500)
	default:
		InternalError(w, r, err)
	}
}
