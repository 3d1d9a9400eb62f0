package handler

import (
	"github.com/rezkam/almanac/internal/domain"
)

const (
	dateTimeFormat = "2006-01-02T15:04"
	dateFormat     = "2006-01-02"
)

// EventDTO is the wire representation of a stored event. Timed instants are
// rendered as local wall-clock strings in the owning calendar's timezone;
// all-day events carry dates only.
type EventDTO struct {
	Subject     string         `json:"subject"`
	Start       string         `json:"start"`
	End         string         `json:"end,omitempty"`
	AllDay      bool           `json:"all_day"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Public      bool           `json:"public"`
	Recurrence  *RecurrenceDTO `json:"recurrence,omitempty"`
}

// RecurrenceDTO is the wire representation of a recurrence rule.
type RecurrenceDTO struct {
	Weekdays string `json:"weekdays"`
	Count    int    `json:"count,omitempty"`
	Until    string `json:"until,omitempty"`
}

// OccurrenceDTO is the wire representation of a single expanded occurrence.
type OccurrenceDTO struct {
	Subject     string `json:"subject"`
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	AllDay      bool   `json:"all_day"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Public      bool   `json:"public"`
}

// CalendarDTO is the wire representation of a calendar.
type CalendarDTO struct {
	Name       string `json:"name"`
	Timezone   string `json:"timezone"`
	Current    bool   `json:"current"`
	EventCount int    `json:"event_count"`
}

// MapEventToDTO converts a domain event to its wire representation.
func MapEventToDTO(ev *domain.Event) EventDTO {
	dto := EventDTO{
		Subject:     ev.Subject,
		AllDay:      ev.AllDay(),
		Description: ev.Description,
		Location:    ev.Location,
		Public:      ev.Public,
	}

	if ev.AllDay() {
		dto.Start = ev.Start.Format(dateFormat)
	} else {
		dto.Start = ev.Start.Format(dateTimeFormat)
		dto.End = ev.End.Format(dateTimeFormat)
	}

	if ev.Recurring() {
		rec := &RecurrenceDTO{Weekdays: ev.Recurrence.Codes()}
		if ev.Recurrence.CountBased() {
			rec.Count = ev.Recurrence.Count()
		} else {
			rec.Until = ev.Recurrence.Until().Format(dateFormat)
		}
		dto.Recurrence = rec
	}

	return dto
}

// MapOccurrenceToDTO converts an expanded occurrence to its wire
// representation.
func MapOccurrenceToDTO(occ domain.Occurrence) OccurrenceDTO {
	dto := OccurrenceDTO{
		Subject:     occ.Subject,
		AllDay:      occ.AllDay,
		Description: occ.Description,
		Location:    occ.Location,
		Public:      occ.Public,
	}

	if occ.AllDay {
		dto.Start = occ.Start.Format(dateFormat)
	} else {
		dto.Start = occ.Start.Format(dateTimeFormat)
		dto.End = occ.End.Format(dateTimeFormat)
	}

	return dto
}

func mapEventsToDTOs(events []*domain.Event) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, ev := range events {
		dtos[i] = MapEventToDTO(ev)
	}
	return dtos
}
