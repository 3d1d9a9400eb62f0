package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/rezkam/almanac/internal/domain"
)

// Time layouts accepted for edit property values.
const (
	dateTimeLayout = "2006-01-02T15:04"
	dateLayout     = "2006-01-02"
)

// Calendar owns an unordered collection of events interpreted in one time
// zone. Queries re-sort by start instant for presentation; storage order is
// irrelevant.
type Calendar struct {
	name         string
	loc          *time.Location
	events       []*domain.Event
	horizonYears int
}

// NewCalendar creates an empty calendar. A horizonYears of zero or below
// falls back to domain.DefaultHorizonYears.
func NewCalendar(name string, loc *time.Location, horizonYears int) *Calendar {
	if horizonYears <= 0 {
		horizonYears = domain.DefaultHorizonYears
	}
	return &Calendar{name: name, loc: loc, horizonYears: horizonYears}
}

// Name returns the calendar's registry name.
func (c *Calendar) Name() string { return c.name }

// Location returns the calendar's time zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// EventCount returns the number of stored events (recurring series count as
// one).
func (c *Calendar) EventCount() int { return len(c.events) }

func (c *Calendar) horizonFor(anchor time.Time) time.Time {
	return anchor.AddDate(c.horizonYears, 0, 0)
}

// EventOptions carries the optional fields shared by the creation
// operations.
type EventOptions struct {
	Description string
	Location    string
	Public      *bool // nil defaults to public
	AutoDecline bool
}

func (c *Calendar) finishCreate(ev *domain.Event, opts EventOptions) (*domain.Event, error) {
	ev.Description = opts.Description
	ev.Location = opts.Location
	if opts.Public != nil {
		ev.Public = *opts.Public
	}

	if opts.AutoDecline {
		for _, existing := range c.events {
			if ev.ConflictsWith(existing, c.horizonYears) {
				return nil, domain.ErrEventConflict
			}
		}
	}

	c.events = append(c.events, ev)
	return ev, nil
}

// CreateEvent creates a single timed event. With AutoDecline set, the event
// is rejected atomically if it overlaps any existing event.
func (c *Calendar) CreateEvent(subject string, start, end time.Time, opts EventOptions) (*domain.Event, error) {
	ev, err := domain.NewEvent(subject, start, end)
	if err != nil {
		return nil, err
	}
	return c.finishCreate(ev, opts)
}

// CreateAllDayEvent creates an all-day event on the given date.
func (c *Calendar) CreateAllDayEvent(subject string, date time.Time, opts EventOptions) (*domain.Event, error) {
	ev, err := domain.NewAllDayEvent(subject, date)
	if err != nil {
		return nil, err
	}
	return c.finishCreate(ev, opts)
}

// CreateRecurringEvent creates a recurring timed event from a weekday-code
// string and a count or inclusive until date.
func (c *Calendar) CreateRecurringEvent(subject string, start, end time.Time, weekdays string, count int, until time.Time, opts EventOptions) (*domain.Event, error) {
	pattern, err := domain.NewRecurrencePattern(weekdays, count, until)
	if err != nil {
		return nil, err
	}
	ev, err := domain.NewRecurringEvent(subject, start, end, pattern)
	if err != nil {
		return nil, err
	}
	return c.finishCreate(ev, opts)
}

// CreateRecurringAllDayEvent creates a recurring all-day event.
func (c *Calendar) CreateRecurringAllDayEvent(subject string, date time.Time, weekdays string, count int, until time.Time, opts EventOptions) (*domain.Event, error) {
	pattern, err := domain.NewRecurrencePattern(weekdays, count, until)
	if err != nil {
		return nil, err
	}
	ev, err := domain.NewRecurringAllDayEvent(subject, date, pattern)
	if err != nil {
		return nil, err
	}
	return c.finishCreate(ev, opts)
}

// attach inserts an already-constructed event without conflict checking.
// Copy operations always insert.
func (c *Calendar) attach(ev *domain.Event) {
	c.events = append(c.events, ev)
}

// rename is called by the registry when the calendar's key changes.
func (c *Calendar) rename(name string) {
	c.name = name
}

// occurrencesIntersecting returns the event's occurrences that touch the
// inclusive date range [from, to]. The comparison is date-granular at both
// ends.
func (c *Calendar) occurrencesIntersecting(ev *domain.Event, from, to time.Time) []domain.Occurrence {
	dayStart := domain.Midnight(from)
	dayEnd := domain.Midnight(to).AddDate(0, 0, 1)

	var out []domain.Occurrence
	for _, occ := range ev.Occurrences(c.horizonFor(ev.Start)) {
		if occ.AllDay {
			if !occ.Start.Before(dayStart) && occ.Start.Before(dayEnd) {
				out = append(out, occ)
			}
			continue
		}
		if occ.Start.Before(dayEnd) && dayStart.Before(occ.End) {
			out = append(out, occ)
		}
	}
	return out
}

// GetEventsOn returns every event whose expansion touches the given date,
// sorted for presentation. A recurring event appears once however many of
// its occurrences fall on the date.
func (c *Calendar) GetEventsOn(date time.Time) []*domain.Event {
	return c.GetEventsFrom(date, date)
}

// GetEventsFrom returns every event whose expansion intersects the inclusive
// date range [from, to], sorted for presentation.
func (c *Calendar) GetEventsFrom(from, to time.Time) []*domain.Event {
	var matched []*domain.Event
	keys := make(map[*domain.Event]domain.Occurrence)
	for _, ev := range c.events {
		occs := c.occurrencesIntersecting(ev, from, to)
		if len(occs) == 0 {
			continue
		}
		matched = append(matched, ev)
		keys[ev] = occs[0]
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return occurrenceLess(keys[matched[i]], keys[matched[j]])
	})
	return matched
}

// AllEvents returns every stored event sorted by start instant, all-day
// events before timed events on the same date.
func (c *Calendar) AllEvents() []*domain.Event {
	out := make([]*domain.Event, len(c.events))
	copy(out, c.events)
	sort.SliceStable(out, func(i, j int) bool {
		return occurrenceLess(firstOccurrence(out[i]), firstOccurrence(out[j]))
	})
	return out
}

func firstOccurrence(ev *domain.Event) domain.Occurrence {
	occs := ev.Occurrences(ev.Start.AddDate(domain.DefaultHorizonYears, 0, 0))
	if len(occs) == 0 {
		return domain.Occurrence{Subject: ev.Subject, Start: ev.Start, AllDay: ev.AllDay()}
	}
	return occs[0]
}

// occurrenceLess orders occurrences by date ascending, all-day before timed
// on the same date, then by start time.
func occurrenceLess(a, b domain.Occurrence) bool {
	if !domain.SameDate(a.Start, b.Start) {
		return domain.Midnight(a.Start).Before(domain.Midnight(b.Start))
	}
	if a.AllDay != b.AllDay {
		return a.AllDay
	}
	return a.Start.Before(b.Start)
}

// ResolveOccurrences expands every event into concrete occurrences within
// the inclusive date range [from, to], sorted for presentation. Zero range
// bounds are unbounded on that side; recurring expansion is always bounded
// by the calendar's horizon. This is the flat list the export collaborator
// consumes.
func (c *Calendar) ResolveOccurrences(from, to time.Time) []domain.Occurrence {
	var out []domain.Occurrence
	for _, ev := range c.events {
		for _, occ := range ev.Occurrences(c.horizonFor(ev.Start)) {
			if !from.IsZero() && occ.Start.Before(domain.Midnight(from)) && (occ.AllDay || !occ.End.After(domain.Midnight(from))) {
				continue
			}
			if !to.IsZero() && !occ.Start.Before(domain.Midnight(to).AddDate(0, 0, 1)) {
				continue
			}
			out = append(out, occ)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return occurrenceLess(out[i], out[j]) })
	return out
}

// findEvent locates exactly one event by quote-insensitive subject plus
// exact start, and end when given.
func (c *Calendar) findEvent(subject string, start time.Time, end *time.Time) (int, error) {
	idx := -1
	for i, ev := range c.events {
		if !ev.Matches(subject, start, end) {
			continue
		}
		if idx >= 0 {
			return -1, domain.ErrAmbiguousEvent
		}
		idx = i
	}
	if idx < 0 {
		return -1, domain.ErrEventNotFound
	}
	return idx, nil
}

// applyProperty returns an edited copy of the event with the named property
// set to the parsed value. The original is untouched.
func (c *Calendar) applyProperty(ev *domain.Event, property, value string) (*domain.Event, error) {
	edited := ev.Clone()

	switch strings.ToLower(property) {
	case "name", "subject":
		edited.Subject = strings.TrimSpace(value)
	case "description":
		edited.Description = value
	case "location":
		edited.Location = value
	case "public":
		switch value {
		case "true":
			edited.Public = true
		case "false":
			edited.Public = false
		default:
			return nil, domain.ErrInvalidPropertyValue
		}
	case "starttime":
		if ev.AllDay() {
			return nil, domain.ErrInvalidPropertyValue
		}
		t, err := c.parseDateTime(value)
		if err != nil {
			return nil, err
		}
		edited.Start = t
	case "endtime":
		if ev.AllDay() {
			return nil, domain.ErrInvalidPropertyValue
		}
		t, err := c.parseDateTime(value)
		if err != nil {
			return nil, err
		}
		edited.End = t
	case "startdate":
		d, err := ParseDate(value, c.loc)
		if err != nil {
			return nil, err
		}
		newStart := time.Date(d.Year(), d.Month(), d.Day(),
			ev.Start.Hour(), ev.Start.Minute(), ev.Start.Second(), 0, c.loc)
		if ev.AllDay() {
			edited.Start = domain.Midnight(newStart)
		} else {
			delta := newStart.Sub(ev.Start)
			edited.Start = newStart
			edited.End = ev.End.Add(delta)
		}
	default:
		return nil, domain.ErrUnknownProperty
	}

	if err := edited.Validate(); err != nil {
		return nil, err
	}
	return edited, nil
}

func (c *Calendar) parseDateTime(value string) (time.Time, error) {
	return ParseDateTime(value, c.loc)
}

// ParseDateTime parses a local date-time string such as "2025-01-06T09:00"
// (seconds optional) in the given location.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dateTimeLayout, value, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateTimeLayout+":05", value, loc)
	if err != nil {
		return time.Time{}, domain.ErrInvalidPropertyValue
	}
	return t, nil
}

// ParseDate parses a calendar date string such as "2025-01-06" in the given
// location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, domain.ErrInvalidPropertyValue
	}
	return t, nil
}

// checkNewConflicts rejects a candidate collection that contains a
// conflicting pair whose source events did not already conflict. Events
// created over an intentional double-booking stay editable as long as the
// edit introduces no additional overlap.
func (c *Calendar) checkNewConflicts(candidate, sources []*domain.Event) error {
	for i := range candidate {
		for j := i + 1; j < len(candidate); j++ {
			if !candidate[i].ConflictsWith(candidate[j], c.horizonYears) {
				continue
			}
			if sources[i] == sources[j] {
				// Both halves of a split series come from one event; they
				// cannot conflict with each other by construction.
				continue
			}
			if !sources[i].ConflictsWith(sources[j], c.horizonYears) {
				return domain.ErrEventConflict
			}
		}
	}
	return nil
}

func (c *Calendar) snapshot() ([]*domain.Event, []*domain.Event) {
	candidate := make([]*domain.Event, len(c.events))
	sources := make([]*domain.Event, len(c.events))
	copy(candidate, c.events)
	copy(sources, c.events)
	return candidate, sources
}

// EditEvent locates exactly one event by subject and start (and end when
// given) and sets the named property. The event is left unchanged when the
// property is unknown, the value invalid, the edit would break an event
// invariant, or it would newly conflict with another event.
func (c *Calendar) EditEvent(property, subject string, start time.Time, end *time.Time, value string) (*domain.Event, error) {
	idx, err := c.findEvent(subject, start, end)
	if err != nil {
		return nil, err
	}

	edited, err := c.applyProperty(c.events[idx], property, value)
	if err != nil {
		return nil, err
	}

	candidate, sources := c.snapshot()
	candidate[idx] = edited
	if err := c.checkNewConflicts(candidate, sources); err != nil {
		return nil, err
	}

	c.events = candidate
	return edited, nil
}

// EditAllEvents sets the named property on every event whose subject
// matches, regardless of date. The edit is atomic: if any single
// application fails, no event is changed.
func (c *Calendar) EditAllEvents(property, subject, value string) ([]*domain.Event, error) {
	candidate, sources := c.snapshot()

	var edited []*domain.Event
	for i, ev := range c.events {
		if !domain.SubjectsMatch(ev.Subject, subject) {
			continue
		}
		e, err := c.applyProperty(ev, property, value)
		if err != nil {
			return nil, err
		}
		candidate[i] = e
		edited = append(edited, e)
	}
	if len(edited) == 0 {
		return nil, domain.ErrEventNotFound
	}

	if err := c.checkNewConflicts(candidate, sources); err != nil {
		return nil, err
	}

	c.events = candidate
	return edited, nil
}

// EditEventsFrom sets the named property on every matching event at or after
// the cutover date. A matching recurring series whose occurrences straddle
// the cutover is split in two: the original series is truncated to end
// before the cutover, and a new series carrying the edit is anchored at the
// first qualifying occurrence. The whole edit is atomic.
func (c *Calendar) EditEventsFrom(property, subject string, cutover time.Time, value string) ([]*domain.Event, error) {
	cutoverDay := domain.Midnight(cutover)
	candidate, sources := c.snapshot()

	var edited []*domain.Event
	for i, ev := range c.events {
		if !domain.SubjectsMatch(ev.Subject, subject) {
			continue
		}

		if !ev.Recurring() {
			if domain.Midnight(ev.Start).Before(cutoverDay) {
				continue
			}
			e, err := c.applyProperty(ev, property, value)
			if err != nil {
				return nil, err
			}
			candidate[i] = e
			edited = append(edited, e)
			continue
		}

		past, future, err := c.splitSeries(ev, cutoverDay, property, value)
		if err != nil {
			return nil, err
		}
		if future == nil {
			// Series ends before the cutover; not part of this edit.
			continue
		}
		if past == nil {
			candidate[i] = future
		} else {
			// Reconstruction, not mutation in place: the original entry is
			// replaced by the truncated series and the edited remainder is
			// appended.
			candidate[i] = past
			candidate = append(candidate, future)
			sources = append(sources, ev)
		}
		edited = append(edited, future)
	}
	if len(edited) == 0 {
		return nil, domain.ErrNoOccurrencesAfter
	}

	if err := c.checkNewConflicts(candidate, sources); err != nil {
		return nil, err
	}

	c.events = candidate
	return edited, nil
}

// splitSeries divides a recurring event at the cutover day. It returns the
// truncated past series (nil when every occurrence is at or after the
// cutover) and the edited future series (nil when no occurrence qualifies).
func (c *Calendar) splitSeries(ev *domain.Event, cutoverDay time.Time, property, value string) (past, future *domain.Event, err error) {
	starts := ev.Recurrence.Occurrences(ev.Start, c.horizonFor(ev.Start))

	var before, after []time.Time
	for _, s := range starts {
		if domain.Midnight(s).Before(cutoverDay) {
			before = append(before, s)
		} else {
			after = append(after, s)
		}
	}
	if len(after) == 0 {
		return nil, nil, nil
	}

	future = ev.Clone()
	future.Start = after[0]
	if !ev.AllDay() {
		future.End = after[0].Add(ev.Duration())
	}
	var remainder domain.RecurrencePattern
	if ev.Recurrence.CountBased() {
		remainder = ev.Recurrence.WithCount(len(after))
	} else {
		remainder = ev.Recurrence.WithUntil(ev.Recurrence.Until())
	}
	future.Recurrence = &remainder

	future, err = c.applyProperty(future, property, value)
	if err != nil {
		return nil, nil, err
	}

	if len(before) == 0 {
		return nil, future, nil
	}

	past = ev.Clone()
	var truncated domain.RecurrencePattern
	if ev.Recurrence.CountBased() {
		truncated = ev.Recurrence.WithCount(len(before))
	} else {
		truncated = ev.Recurrence.WithUntil(before[len(before)-1])
	}
	past.Recurrence = &truncated

	return past, future, nil
}

// ChangeLocation re-projects every stored event into the new zone. Timed
// events keep their absolute instant and take on the new local
// representation; all-day events keep their calendar date unchanged.
func (c *Calendar) ChangeLocation(loc *time.Location) {
	for _, ev := range c.events {
		if ev.AllDay() {
			y, m, d := ev.Start.Date()
			ev.Start = time.Date(y, m, d, 0, 0, 0, 0, loc)
			continue
		}
		ev.Start = ev.Start.In(loc)
		ev.End = ev.End.In(loc)
	}
	c.loc = loc
}
