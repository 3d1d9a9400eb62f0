package calendar

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rezkam/almanac/internal/domain"
)

// Manager is a registry of named calendars plus the current-calendar
// selection. The selection is a lookup key re-resolved on each access, never
// a direct reference, so renaming or removing a calendar cannot leave it
// dangling.
type Manager struct {
	calendars    map[string]*Calendar
	current      string
	horizonYears int
}

// Config holds tunables for a Manager.
type Config struct {
	// HorizonYears bounds recurrence enumeration; zero falls back to
	// domain.DefaultHorizonYears.
	HorizonYears int
}

// NewManager creates an empty registry.
func NewManager(cfg Config) *Manager {
	if cfg.HorizonYears <= 0 {
		cfg.HorizonYears = domain.DefaultHorizonYears
	}
	return &Manager{
		calendars:    make(map[string]*Calendar),
		horizonYears: cfg.HorizonYears,
	}
}

// CreateCalendar registers a new calendar under a unique, case-sensitive
// name with the given IANA zone identifier.
func (m *Manager) CreateCalendar(name, zone string) (*Calendar, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrCalendarNameRequired
	}
	if _, exists := m.calendars[name]; exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrCalendarExists, name)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTimezone, zone)
	}

	cal := NewCalendar(name, loc, m.horizonYears)
	m.calendars[name] = cal
	return cal, nil
}

// EditCalendar changes a calendar's name or timezone. Renaming updates the
// registry key and retargets the current selection if it pointed at the
// renamed calendar. A timezone change re-projects every stored event into
// the new zone. Failures leave the calendar untouched.
func (m *Manager) EditCalendar(name, property, value string) error {
	cal, exists := m.calendars[name]
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrCalendarNotFound, name)
	}

	switch strings.ToLower(property) {
	case "name":
		if strings.TrimSpace(value) == "" {
			return domain.ErrCalendarNameRequired
		}
		if _, taken := m.calendars[value]; taken {
			return fmt.Errorf("%w: %s", domain.ErrCalendarExists, value)
		}
		delete(m.calendars, name)
		cal.rename(value)
		m.calendars[value] = cal
		if m.current == name {
			m.current = value
		}
		return nil
	case "timezone":
		loc, err := time.LoadLocation(value)
		if err != nil {
			return fmt.Errorf("%w: %s", domain.ErrInvalidTimezone, value)
		}
		cal.ChangeLocation(loc)
		return nil
	default:
		return domain.ErrUnknownProperty
	}
}

// UseCalendar sets the current selection. The selection is unchanged when
// the name is absent.
func (m *Manager) UseCalendar(name string) error {
	if _, exists := m.calendars[name]; !exists {
		return fmt.Errorf("%w: %s", domain.ErrCalendarNotFound, name)
	}
	m.current = name
	return nil
}

// Current resolves the current selection against the registry.
func (m *Manager) Current() (*Calendar, error) {
	if m.current == "" {
		return nil, domain.ErrNoCurrentCalendar
	}
	cal, exists := m.calendars[m.current]
	if !exists {
		return nil, domain.ErrNoCurrentCalendar
	}
	return cal, nil
}

// Calendar looks up a calendar by name.
func (m *Manager) Calendar(name string) (*Calendar, error) {
	cal, exists := m.calendars[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrCalendarNotFound, name)
	}
	return cal, nil
}

// CalendarNames returns the registered names in lexical order.
func (m *Manager) CalendarNames() []string {
	names := make([]string, 0, len(m.calendars))
	for name := range m.calendars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wallClockIn rebuilds an instant's wall-clock fields in the given zone.
// The caller's requested local time is taken literally in the destination
// zone, not translated from the source zone's instant.
func wallClockIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// CopyEvent copies one event from the current calendar to the target
// calendar, anchored so its local start equals targetStart interpreted in
// the target calendar's own time zone. Recurring events are copied as a
// recurring series with the same weekday set and terminator, re-anchored at
// targetStart. Copies always insert; they are not conflict checked.
func (m *Manager) CopyEvent(subject string, sourceStart time.Time, targetName string, targetStart time.Time) (*domain.Event, error) {
	source, err := m.Current()
	if err != nil {
		return nil, err
	}
	target, err := m.Calendar(targetName)
	if err != nil {
		return nil, err
	}

	idx, err := source.findEvent(subject, sourceStart, nil)
	if err != nil {
		return nil, err
	}
	ev := source.events[idx]

	copied := ev.Clone()
	if ev.AllDay() {
		copied.Start = domain.Midnight(wallClockIn(targetStart, target.Location()))
	} else {
		copied.Start = wallClockIn(targetStart, target.Location())
		copied.End = copied.Start.Add(ev.Duration())
	}

	target.attach(copied)
	return copied, nil
}

// CopyEventsOnDay copies every event falling on sourceDate in the current
// calendar to targetDate in the target calendar, preserving each event's
// wall time of day. Recurring events are expanded to their concrete
// occurrence on sourceDate and copied as non-recurring events.
func (m *Manager) CopyEventsOnDay(sourceDate time.Time, targetName string, targetDate time.Time) ([]*domain.Event, error) {
	source, err := m.Current()
	if err != nil {
		return nil, err
	}
	target, err := m.Calendar(targetName)
	if err != nil {
		return nil, err
	}

	var copied []*domain.Event
	for _, ev := range source.events {
		for _, occ := range source.occurrencesIntersecting(ev, sourceDate, sourceDate) {
			copied = append(copied, m.copyOccurrence(target, ev, occ, targetDate))
		}
	}
	if len(copied) == 0 {
		return nil, domain.ErrNoEventsToCopy
	}
	return copied, nil
}

// CopyEventsInRange copies every event occurrence intersecting the inclusive
// date range [rangeStart, rangeEnd] in the current calendar, preserving each
// occurrence's offset in days from rangeStart when placed relative to
// targetStart.
func (m *Manager) CopyEventsInRange(rangeStart, rangeEnd time.Time, targetName string, targetStart time.Time) ([]*domain.Event, error) {
	source, err := m.Current()
	if err != nil {
		return nil, err
	}
	target, err := m.Calendar(targetName)
	if err != nil {
		return nil, err
	}

	var copied []*domain.Event
	for _, ev := range source.events {
		for _, occ := range source.occurrencesIntersecting(ev, rangeStart, rangeEnd) {
			offset := daysBetween(rangeStart, occ.Start)
			targetDate := domain.Midnight(targetStart).AddDate(0, 0, offset)
			copied = append(copied, m.copyOccurrence(target, ev, occ, targetDate))
		}
	}
	if len(copied) == 0 {
		return nil, domain.ErrNoEventsToCopy
	}
	return copied, nil
}

// copyOccurrence places one resolved occurrence on the target date in the
// target calendar's zone, keeping the source wall time of day. The copy is
// always a non-recurring event.
func (m *Manager) copyOccurrence(target *Calendar, ev *domain.Event, occ domain.Occurrence, targetDate time.Time) *domain.Event {
	copied := ev.Clone()
	copied.Recurrence = nil

	y, mo, d := targetDate.Date()
	if ev.AllDay() {
		copied.Kind = domain.EventAllDay
		copied.Start = time.Date(y, mo, d, 0, 0, 0, 0, target.Location())
	} else {
		copied.Kind = domain.EventSingle
		copied.Start = time.Date(y, mo, d,
			occ.Start.Hour(), occ.Start.Minute(), occ.Start.Second(), 0, target.Location())
		copied.End = copied.Start.Add(occ.End.Sub(occ.Start))
	}

	target.attach(copied)
	return copied
}

// daysBetween returns the whole-day offset from a's date to b's date.
// Rounding absorbs DST transitions between the two midnights.
func daysBetween(a, b time.Time) int {
	diff := domain.Midnight(b).Sub(domain.Midnight(a.In(b.Location())))
	return int(math.Round(diff.Hours() / 24))
}
