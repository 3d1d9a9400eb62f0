package export

import (
	"fmt"
	"io"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/rezkam/almanac/internal/domain"
)

const productID = "-//almanac//calendar export//EN"

// WriteICS writes the occurrences as an iCalendar stream. Recurring events
// arrive already expanded, so every occurrence becomes one VEVENT with a
// fresh UID; no RRULE is emitted.
func WriteICS(w io.Writer, calendarName string, occurrences []domain.Occurrence) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendarName)

	for _, occ := range occurrences {
		event := cal.AddEvent(uuid.New().String())
		event.SetSummary(occ.Subject)

		if occ.AllDay {
			event.SetAllDayStartAt(occ.Start)
			event.SetAllDayEndAt(occ.Start.AddDate(0, 0, 1))
		} else {
			event.SetStartAt(occ.Start)
			event.SetEndAt(occ.End)
		}

		if occ.Description != "" {
			event.SetDescription(occ.Description)
		}
		if occ.Location != "" {
			event.SetLocation(occ.Location)
		}
		if !occ.Public {
			event.SetProperty(ics.ComponentPropertyClass, "PRIVATE")
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("failed to serialize calendar: %w", err)
	}
	return nil
}
