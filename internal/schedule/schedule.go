// Package schedule turns a class's weekly recurrence pattern into concrete
// bookable dates.  Everything in this package is a pure function of its
// inputs: results are safe to recompute and impose no locking requirements
// on callers.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// dayLabels maps the canonical three-letter labels to time.Weekday.  The
// labels match what trainers pick in the schedule editor and what the
// classes.days column stores.
var dayLabels = map[string]time.Weekday{
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
	"Sun": time.Sunday,
}

// DaySet is the set of weekdays on which a class recurs.
type DaySet map[time.Weekday]bool

// ParseDays builds a DaySet from weekday labels.  Labels are matched
// case-insensitively against Mon..Sun and deduplicated; an unknown label is
// an error.  An empty slice yields an empty (never nil-dereferencing) set.
func ParseDays(labels []string) (DaySet, error) {
	set := make(DaySet, len(labels))
	for _, raw := range labels {
		label := normalizeLabel(raw)
		wd, ok := dayLabels[label]
		if !ok {
			return nil, fmt.Errorf("unknown day label %q", raw)
		}
		set[wd] = true
	}
	return set, nil
}

// Contains reports whether the given calendar date falls on one of the
// set's weekdays.  Only the weekday matters; the time component of t is
// ignored.
func (s DaySet) Contains(t time.Time) bool {
	return s[t.Weekday()]
}

// Labels returns the canonical labels of the set in Mon..Sun order, which
// keeps the classes.days column deterministic regardless of input order.
func (s DaySet) Labels() []string {
	order := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	out := make([]string, 0, len(s))
	for _, l := range order {
		if s[dayLabels[l]] {
			out = append(out, l)
		}
	}
	return out
}

func normalizeLabel(raw string) string {
	l := strings.TrimSpace(raw)
	if len(l) < 3 {
		return l
	}
	l = strings.ToLower(l[:3])
	return strings.ToUpper(l[:1]) + l[1:]
}

// ValidTimeOfDay reports whether s is a well-formed "HH:MM" 24h clock time.
func ValidTimeOfDay(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
