package domain

import (
	"strings"
	"time"
)

// EventKind tags the four event shapes. The shape decides which fields are
// meaningful: all-day shapes carry no end instant, recurring shapes carry a
// recurrence pattern.
type EventKind int

const (
	EventSingle EventKind = iota
	EventAllDay
	EventRecurring
	EventRecurringAllDay
)

// Event is a single occurrence or a recurring template owned by one
// calendar. Instants are stored in the owning calendar's time zone.
type Event struct {
	Subject     string
	Start       time.Time
	End         time.Time // zero for all-day shapes
	Kind        EventKind
	Description string
	Location    string
	Public      bool
	Recurrence  *RecurrencePattern // non-nil iff recurring shapes
}

// NewEvent builds a single timed event. The end must be strictly after the
// start.
func NewEvent(subject string, start, end time.Time) (*Event, error) {
	if err := validateSubjectStart(subject, start); err != nil {
		return nil, err
	}
	if end.IsZero() || !end.After(start) {
		return nil, ErrInvalidTimeRange
	}
	return &Event{
		Subject: strings.TrimSpace(subject),
		Start:   start,
		End:     end,
		Kind:    EventSingle,
		Public:  true,
	}, nil
}

// NewAllDayEvent builds an all-day event on the given date. The time of day
// of the date argument is ignored.
func NewAllDayEvent(subject string, date time.Time) (*Event, error) {
	if err := validateSubjectStart(subject, date); err != nil {
		return nil, err
	}
	return &Event{
		Subject: strings.TrimSpace(subject),
		Start:   Midnight(date),
		Kind:    EventAllDay,
		Public:  true,
	}, nil
}

// NewRecurringEvent builds a recurring timed event. The template must fit
// within one calendar day.
func NewRecurringEvent(subject string, start, end time.Time, pattern RecurrencePattern) (*Event, error) {
	ev, err := NewEvent(subject, start, end)
	if err != nil {
		return nil, err
	}
	if !SameDate(start, end) {
		return nil, ErrMultiDayRecurring
	}
	ev.Kind = EventRecurring
	ev.Recurrence = &pattern
	return ev, nil
}

// NewRecurringAllDayEvent builds a recurring all-day event.
func NewRecurringAllDayEvent(subject string, date time.Time, pattern RecurrencePattern) (*Event, error) {
	ev, err := NewAllDayEvent(subject, date)
	if err != nil {
		return nil, err
	}
	ev.Kind = EventRecurringAllDay
	ev.Recurrence = &pattern
	return ev, nil
}

func validateSubjectStart(subject string, start time.Time) error {
	if strings.TrimSpace(subject) == "" {
		return ErrSubjectRequired
	}
	if start.IsZero() {
		return ErrStartRequired
	}
	return nil
}

// AllDay reports whether the event is one of the all-day shapes.
func (e *Event) AllDay() bool {
	return e.Kind == EventAllDay || e.Kind == EventRecurringAllDay
}

// Recurring reports whether the event is one of the recurring shapes.
func (e *Event) Recurring() bool {
	return e.Kind == EventRecurring || e.Kind == EventRecurringAllDay
}

// Duration returns the template's span. All-day shapes have no duration.
func (e *Event) Duration() time.Duration {
	if e.AllDay() {
		return 0
	}
	return e.End.Sub(e.Start)
}

// Validate re-checks the shape invariants after an in-place edit.
func (e *Event) Validate() error {
	if err := validateSubjectStart(e.Subject, e.Start); err != nil {
		return err
	}
	if !e.AllDay() {
		if e.End.IsZero() || !e.End.After(e.Start) {
			return ErrInvalidTimeRange
		}
		if e.Recurring() && !SameDate(e.Start, e.End) {
			return ErrMultiDayRecurring
		}
	}
	return nil
}

// Occurrence is one concrete resolved instance of an event: a single event
// yields exactly one, a recurring event one per expanded pattern instant.
type Occurrence struct {
	Subject     string
	Start       time.Time
	End         time.Time // zero for all-day occurrences
	AllDay      bool
	Description string
	Location    string
	Public      bool
}

// Occurrences expands the event into concrete occurrences, bounded by the
// horizon for recurring shapes. Non-recurring shapes yield exactly one
// occurrence regardless of the horizon.
func (e *Event) Occurrences(horizon time.Time) []Occurrence {
	if !e.Recurring() {
		return []Occurrence{e.occurrenceAt(e.Start)}
	}

	starts := e.Recurrence.Occurrences(e.Start, horizon)
	occs := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		occs = append(occs, e.occurrenceAt(s))
	}
	return occs
}

func (e *Event) occurrenceAt(start time.Time) Occurrence {
	occ := Occurrence{
		Subject:     e.Subject,
		Start:       start,
		AllDay:      e.AllDay(),
		Description: e.Description,
		Location:    e.Location,
		Public:      e.Public,
	}
	if !e.AllDay() {
		occ.End = start.Add(e.Duration())
	}
	return occ
}

// Overlaps reports whether two occurrences conflict. When either side is
// all-day the check is date-granular: they conflict iff they fall on the same
// calendar date (a timed event contributes the date of its start). Two timed
// occurrences conflict on half-open interval overlap, so exactly touching
// boundaries do not conflict.
func (o Occurrence) Overlaps(other Occurrence) bool {
	if o.AllDay || other.AllDay {
		return SameDate(o.Start, other.Start)
	}
	return o.Start.Before(other.End) && other.Start.Before(o.End)
}

// ConflictsWith reports whether any expanded occurrence of e overlaps any
// expanded occurrence of other. Each side's recurring expansion is bounded by
// horizonYears from its own anchor.
func (e *Event) ConflictsWith(other *Event, horizonYears int) bool {
	for _, a := range e.Occurrences(e.Start.AddDate(horizonYears, 0, 0)) {
		for _, b := range other.Occurrences(other.Start.AddDate(horizonYears, 0, 0)) {
			if a.Overlaps(b) {
				return true
			}
		}
	}
	return false
}

// normalizeSubject strips a single leading+trailing double-quote pair so
// subjects stored with surrounding quotes match unquoted queries and vice
// versa.
func normalizeSubject(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// SubjectsMatch compares subjects quote-insensitively.
func SubjectsMatch(a, b string) bool {
	return normalizeSubject(a) == normalizeSubject(b)
}

// Matches reports whether the event is identified by the given subject and
// start instant, and end when supplied. Events have no synthetic identity;
// this triple is how operations locate them.
func (e *Event) Matches(subject string, start time.Time, end *time.Time) bool {
	if !SubjectsMatch(e.Subject, subject) {
		return false
	}
	if !e.Start.Equal(start) {
		return false
	}
	if end != nil && !e.End.Equal(*end) {
		return false
	}
	return true
}

// Clone returns a shallow copy of the event. The recurrence pattern is
// shared; patterns are immutable so sharing is safe.
func (e *Event) Clone() *Event {
	clone := *e
	return &clone
}

// SameDate reports whether two instants fall on the same calendar date as
// seen in a's location.
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Midnight truncates an instant to the start of its calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
