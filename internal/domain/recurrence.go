package domain

import (
	"fmt"
	"strings"
	"time"

	rrule "github.com/teambition/rrule-go"
)

// DefaultHorizonYears bounds recurrence enumeration when an Until date lies
// pathologically far in the future. It is a last-resort termination, not a
// primary control.
const DefaultHorizonYears = 5

// UnboundedCount is the sentinel count meaning "ignore the count, use the
// end date instead".
const UnboundedCount = -1

// weekdayCodes maps single-letter weekday codes to rrule weekdays.
// R is Thursday and U is Sunday.
var weekdayCodes = map[rune]rrule.Weekday{
	'M': rrule.MO,
	'T': rrule.TU,
	'W': rrule.WE,
	'R': rrule.TH,
	'F': rrule.FR,
	'S': rrule.SA,
	'U': rrule.SU,
}

// codeOrder lists weekday codes in week order for canonical formatting.
var codeOrder = []rune{'M', 'T', 'W', 'R', 'F', 'S', 'U'}

// RecurrencePattern is an immutable weekday set plus a termination rule:
// either an occurrence count or an inclusive end date, never both.
// The pattern stores no anchor; enumeration is always relative to a
// caller-supplied start instant.
type RecurrencePattern struct {
	weekdays map[rune]bool
	count    int       // number of occurrences when count-terminated, 0 otherwise
	until    time.Time // inclusive end date when date-terminated, zero otherwise
}

// NewRecurrencePattern parses a weekday-code string and a termination rule
// into a RecurrencePattern. Duplicate codes collapse; any character outside
// M T W R F S U is an error. A count below 1 (including the UnboundedCount
// sentinel) means the pattern terminates on the until date, which must then
// be set. Supplying both a positive count and an until date is an error.
func NewRecurrencePattern(codes string, count int, until time.Time) (RecurrencePattern, error) {
	if codes == "" {
		return RecurrencePattern{}, ErrNoWeekdays
	}

	weekdays := make(map[rune]bool)
	for _, r := range codes {
		if _, ok := weekdayCodes[r]; !ok {
			return RecurrencePattern{}, fmt.Errorf("%w: %q", ErrInvalidWeekday, string(r))
		}
		weekdays[r] = true
	}

	switch {
	case count >= 1 && !until.IsZero():
		return RecurrencePattern{}, ErrAmbiguousTerminator
	case count < 1 && until.IsZero():
		return RecurrencePattern{}, ErrNoTerminator
	case count < 1:
		count = 0
	}

	return RecurrencePattern{weekdays: weekdays, count: count, until: until}, nil
}

// Codes returns the weekday set as a canonical code string in week order.
func (p RecurrencePattern) Codes() string {
	var b strings.Builder
	for _, r := range codeOrder {
		if p.weekdays[r] {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CountBased reports whether the pattern terminates on an occurrence count.
func (p RecurrencePattern) CountBased() bool {
	return p.count > 0
}

// Count returns the occurrence count, or 0 for date-terminated patterns.
func (p RecurrencePattern) Count() int {
	return p.count
}

// Until returns the inclusive end date, or the zero time for count-terminated
// patterns.
func (p RecurrencePattern) Until() time.Time {
	return p.until
}

// WithCount returns a copy of the pattern terminated after n occurrences.
// Used when a series is split on edit; the weekday set is preserved.
func (p RecurrencePattern) WithCount(n int) RecurrencePattern {
	return RecurrencePattern{weekdays: p.weekdays, count: n}
}

// WithUntil returns a copy of the pattern terminated on the given inclusive
// end date. Used when a series is split on edit; the weekday set is preserved.
func (p RecurrencePattern) WithUntil(until time.Time) RecurrencePattern {
	return RecurrencePattern{weekdays: p.weekdays, until: until}
}

// Occurrences enumerates the occurrence start instants for the given anchor,
// bounded by the horizon. Each instant carries the anchor's time of day and
// falls on a weekday in the pattern's set; the anchor itself is included when
// its weekday matches. The result is a pure function of (pattern, anchor,
// horizon).
func (p RecurrencePattern) Occurrences(anchor, horizon time.Time) []time.Time {
	byweekday := make([]rrule.Weekday, 0, len(p.weekdays))
	for _, r := range codeOrder {
		if p.weekdays[r] {
			byweekday = append(byweekday, weekdayCodes[r])
		}
	}

	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   anchor,
		Byweekday: byweekday,
	}
	if p.count > 0 {
		opt.Count = p.count
	} else {
		// The until comparison is date-inclusive: any occurrence on the
		// boundary date counts, regardless of the anchor's time of day.
		u := p.until.In(anchor.Location())
		opt.Until = time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 0, anchor.Location())
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		// Only reachable with an empty weekday set, which the constructor
		// rejects.
		return nil
	}

	return rule.Between(anchor, horizon, true)
}
