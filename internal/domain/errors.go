package domain

import "errors"

// Domain errors returned by the scheduling engine. All expected failure
// modes are reported as ordinary error values; none of them leaves a
// calendar in a partially mutated state.

var (
	// ErrSubjectRequired indicates an event was given an empty subject.
	ErrSubjectRequired = errors.New("event subject is required")

	// ErrStartRequired indicates an event was given no start time.
	ErrStartRequired = errors.New("event start time is required")

	// ErrInvalidTimeRange indicates an event end that is not after its start.
	ErrInvalidTimeRange = errors.New("event end must be after start")

	// ErrMultiDayRecurring indicates a recurring template spanning more than
	// one calendar day.
	ErrMultiDayRecurring = errors.New("recurring event must start and end on the same day")

	// ErrInvalidWeekday indicates an unrecognized weekday code in a
	// recurrence pattern.
	ErrInvalidWeekday = errors.New("invalid weekday code")

	// ErrNoWeekdays indicates a recurrence pattern with an empty weekday set.
	ErrNoWeekdays = errors.New("recurrence pattern requires at least one weekday")

	// ErrNoTerminator indicates a recurrence pattern with neither an
	// occurrence count nor an end date.
	ErrNoTerminator = errors.New("recurrence pattern requires a count or an end date")

	// ErrAmbiguousTerminator indicates a recurrence pattern with both an
	// occurrence count and an end date.
	ErrAmbiguousTerminator = errors.New("recurrence pattern cannot have both a count and an end date")

	// ErrEventConflict indicates the operation would overlap an existing
	// event while conflict checking was requested.
	ErrEventConflict = errors.New("event conflicts with an existing event")

	// ErrEventNotFound indicates no event matched the given subject and time.
	ErrEventNotFound = errors.New("event not found")

	// ErrAmbiguousEvent indicates more than one event matched a lookup that
	// must resolve to exactly one.
	ErrAmbiguousEvent = errors.New("multiple events match")

	// ErrUnknownProperty indicates an edit targeting an unsupported property.
	ErrUnknownProperty = errors.New("unknown event property")

	// ErrInvalidPropertyValue indicates an edit value that cannot be applied
	// to the targeted property.
	ErrInvalidPropertyValue = errors.New("invalid property value")

	// ErrNoOccurrencesAfter indicates a from-date edit whose cutover leaves
	// no occurrences to modify.
	ErrNoOccurrencesAfter = errors.New("no occurrences on or after the cutover date")

	// ErrCalendarNotFound indicates the named calendar does not exist.
	ErrCalendarNotFound = errors.New("calendar not found")

	// ErrCalendarExists indicates a calendar name collision.
	ErrCalendarExists = errors.New("calendar already exists")

	// ErrCalendarNameRequired indicates an empty calendar name.
	ErrCalendarNameRequired = errors.New("calendar name is required")

	// ErrNoCurrentCalendar indicates no calendar is currently selected.
	ErrNoCurrentCalendar = errors.New("no calendar in use")

	// ErrInvalidTimezone indicates an unparseable IANA zone identifier.
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrNoEventsToCopy indicates a bulk copy that matched no events.
	ErrNoEventsToCopy = errors.New("no events found to copy")
)
