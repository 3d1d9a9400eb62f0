package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/almanac/internal/calendar"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(calendar.NewManager(calendar.Config{}))
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(into))
}

func createCalendar(t *testing.T, h http.Handler, name, tz string) {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/v1/calendars", CreateCalendarRequest{Name: name, Timezone: tz})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCreateCalendar(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/v1/calendars", CreateCalendarRequest{Name: "work", Timezone: "Europe/London"})
	require.Equal(t, http.StatusCreated, w.Code)

	var dto CalendarDTO
	decodeBody(t, w, &dto)
	assert.Equal(t, "work", dto.Name)
	assert.Equal(t, "Europe/London", dto.Timezone)
	assert.False(t, dto.Current, "creation does not select the calendar")
	assert.Zero(t, dto.EventCount)
}

func TestCreateCalendarDuplicateConflicts(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars", CreateCalendarRequest{Name: "work", Timezone: "UTC"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateCalendarInvalidTimezone(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/v1/calendars", CreateCalendarRequest{Name: "work", Timezone: "Mars/Olympus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCalendars(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")
	createCalendar(t, h, "home", "Europe/Paris")

	w := doJSON(t, h, http.MethodGet, "/v1/calendars", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Calendars []CalendarDTO `json:"calendars"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Calendars, 2)
	assert.Equal(t, "home", resp.Calendars[0].Name)
	assert.Equal(t, "work", resp.Calendars[1].Name)
}

func TestUseCalendar(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")
	createCalendar(t, h, "home", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/home/use", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dto CalendarDTO
	decodeBody(t, w, &dto)
	assert.True(t, dto.Current)

	w = doJSON(t, h, http.MethodPost, "/v1/calendars/nope/use", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditCalendarRename(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/use", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodPatch, "/v1/calendars/work", EditCalendarRequest{Property: "name", Value: "office"})
	require.Equal(t, http.StatusOK, w.Code)

	var dto CalendarDTO
	decodeBody(t, w, &dto)
	assert.Equal(t, "office", dto.Name)
	assert.True(t, dto.Current, "selection follows the rename")
}

func TestCreateEvent(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject: "Standup",
		Start:   "2025-01-06T09:00",
		End:     "2025-01-06T09:15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var dto EventDTO
	decodeBody(t, w, &dto)
	assert.Equal(t, "Standup", dto.Subject)
	assert.Equal(t, "2025-01-06T09:00", dto.Start)
	assert.Equal(t, "2025-01-06T09:15", dto.End)
	assert.False(t, dto.AllDay)
	assert.True(t, dto.Public)
}

func TestCreateEventAutoDeclineConflict(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject: "Busy",
		Start:   "2025-01-06T09:00",
		End:     "2025-01-06T10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject:     "Clash",
		Start:       "2025-01-06T09:30",
		End:         "2025-01-06T10:30",
		AutoDecline: true,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateEventUnknownCalendar(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/nope/events", CreateEventRequest{
		Subject: "Standup",
		Start:   "2025-01-06T09:00",
		End:     "2025-01-06T09:15",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateEventInvalidJSON(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	req := httptest.NewRequest(http.MethodPost, "/v1/calendars/work/events", strings.NewReader("{nope"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRecurringEvent(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject:    "Standup",
		Start:      "2025-01-06T09:00",
		End:        "2025-01-06T09:15",
		Recurrence: &RecurrenceDTO{Weekdays: "MWF", Count: 6},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var dto EventDTO
	decodeBody(t, w, &dto)
	require.NotNil(t, dto.Recurrence)
	assert.Equal(t, "MWF", dto.Recurrence.Weekdays)
	assert.Equal(t, 6, dto.Recurrence.Count)
}

func TestCreateRecurringEventBothTerminators(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject:    "Standup",
		Start:      "2025-01-06T09:00",
		End:        "2025-01-06T09:15",
		Recurrence: &RecurrenceDTO{Weekdays: "MWF", Count: 6, Until: "2025-03-01"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAllDayEvent(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject: "Conference",
		Start:   "2025-01-06",
		AllDay:  true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var dto EventDTO
	decodeBody(t, w, &dto)
	assert.True(t, dto.AllDay)
	assert.Equal(t, "2025-01-06", dto.Start)
	assert.Empty(t, dto.End)
}

func TestListEventsOnDay(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	for _, req := range []CreateEventRequest{
		{Subject: "Standup", Start: "2025-01-06T09:00", End: "2025-01-06T09:15"},
		{Subject: "Lunch", Start: "2025-01-06T12:00", End: "2025-01-06T13:00"},
		{Subject: "Elsewhere", Start: "2025-01-07T09:00", End: "2025-01-07T09:15"},
	} {
		w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, h, http.MethodGet, "/v1/calendars/work/events?on=2025-01-06", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events []EventDTO `json:"events"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "Standup", resp.Events[0].Subject)
	assert.Equal(t, "Lunch", resp.Events[1].Subject)
}

func TestListEventsRequiresRangeParams(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodGet, "/v1/calendars/work/events", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditEventSingle(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject: "Standup", Start: "2025-01-06T09:00", End: "2025-01-06T09:15",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPatch, "/v1/calendars/work/events", EditEventsRequest{
		Property: "location",
		Value:    "Room 4",
		Subject:  "Standup",
		Start:    "2025-01-06T09:00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Events []EventDTO `json:"events"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Room 4", resp.Events[0].Location)
}

func TestEditEventsAll(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	for _, start := range []string{"2025-01-06T09:00", "2025-01-07T09:00"} {
		w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
			Subject: "Standup", Start: start, End: start[:11] + "09:15",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, h, http.MethodPatch, "/v1/calendars/work/events", EditEventsRequest{
		Scope:    "all",
		Property: "description",
		Value:    "Daily sync",
		Subject:  "Standup",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events []EventDTO `json:"events"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Events, 2)
	for _, ev := range resp.Events {
		assert.Equal(t, "Daily sync", ev.Description)
	}
}

func TestEditEventsFromSplitsSeries(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject:    "Standup",
		Start:      "2025-01-06T09:00",
		End:        "2025-01-06T09:15",
		Recurrence: &RecurrenceDTO{Weekdays: "M", Count: 4},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPatch, "/v1/calendars/work/events", EditEventsRequest{
		Scope:    "from",
		Property: "location",
		Value:    "Room 2",
		Subject:  "Standup",
		From:     "2025-01-20",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Events []EventDTO `json:"events"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Events, 1, "only the edited future half is returned")
	assert.Equal(t, "Room 2", resp.Events[0].Location)
	assert.Equal(t, "2025-01-20T09:00", resp.Events[0].Start)

	// The calendar now holds two series: the untouched past and the edited
	// remainder.
	w = doJSON(t, h, http.MethodGet, "/v1/calendars/work/events?from=2025-01-01&to=2025-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &resp)
	require.Len(t, resp.Events, 2)
}

func TestEditEventsInvalidScope(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPatch, "/v1/calendars/work/events", EditEventsRequest{
		Scope:    "some",
		Property: "location",
		Value:    "x",
		Subject:  "Standup",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCSV(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject: "Standup", Start: "2025-01-06T09:00", End: "2025-01-06T09:15",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodGet, "/v1/calendars/work/export?format=csv&from=2025-01-01&to=2025-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Standup")
	assert.Contains(t, w.Body.String(), "01/06/2025")
}

func TestExportICS(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject: "Standup", Start: "2025-01-06T09:00", End: "2025-01-06T09:15",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodGet, "/v1/calendars/work/export?format=ics&from=2025-01-01&to=2025-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "SUMMARY:Standup")
}

func TestExportUnknownFormat(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")

	w := doJSON(t, h, http.MethodGet, "/v1/calendars/work/export?format=xml&from=2025-01-01&to=2025-01-31", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCopyEvent(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")
	createCalendar(t, h, "home", "Europe/Paris")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/use", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject: "Dentist", Start: "2025-01-06T10:00", End: "2025-01-06T11:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPost, "/v1/copies/event", CopyEventRequest{
		Subject:     "Dentist",
		Start:       "2025-01-06T10:00",
		Target:      "home",
		TargetStart: "2025-02-03T10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var dto EventDTO
	decodeBody(t, w, &dto)
	assert.Equal(t, "Dentist", dto.Subject)
	assert.Equal(t, "2025-02-03T10:00", dto.Start)
	assert.Equal(t, "2025-02-03T11:00", dto.End)
}

func TestCopyDay(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")
	createCalendar(t, h, "home", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/use", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", CreateEventRequest{
		Subject: "Standup", Start: "2025-01-06T09:00", End: "2025-01-06T09:15",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPost, "/v1/copies/day", CopyDayRequest{
		Date:       "2025-01-06",
		Target:     "home",
		TargetDate: "2025-02-03",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Events []EventDTO `json:"events"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "2025-02-03T09:00", resp.Events[0].Start)
}

func TestCopyDayEmptyFails(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")
	createCalendar(t, h, "home", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/use", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodPost, "/v1/copies/day", CopyDayRequest{
		Date:       "2025-01-06",
		Target:     "home",
		TargetDate: "2025-02-03",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCopyRequiresSelectedCalendar(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "home", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/copies/event", CopyEventRequest{
		Subject:     "Dentist",
		Start:       "2025-01-06T10:00",
		Target:      "home",
		TargetStart: "2025-02-03T10:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCopyRange(t *testing.T) {
	h := newTestRouter(t)
	createCalendar(t, h, "work", "UTC")
	createCalendar(t, h, "home", "UTC")

	w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/use", nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, req := range []CreateEventRequest{
		{Subject: "Standup", Start: "2025-01-06T09:00", End: "2025-01-06T09:15"},
		{Subject: "Retro", Start: "2025-01-08T15:00", End: "2025-01-08T16:00"},
	} {
		w := doJSON(t, h, http.MethodPost, "/v1/calendars/work/events", req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/v1/copies/range", CopyRangeRequest{
		From:        "2025-01-06",
		To:          "2025-01-10",
		Target:      "home",
		TargetStart: "2025-02-03",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Events []EventDTO `json:"events"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "2025-02-03T09:00", resp.Events[0].Start)
	assert.Equal(t, "2025-02-05T15:00", resp.Events[1].Start)
}
