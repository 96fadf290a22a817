package schedule

import "time"

// DefaultWindowDays is the lookahead used when rendering selectable dates.
const DefaultWindowDays = 14

// ResolveDates enumerates every calendar date from windowStart (inclusive)
// for windowLengthDays days and keeps the ones whose weekday is in the day
// set.  The result is chronological, free of duplicates, and empty when the
// set is empty or the window length is not positive.
//
// windowStart is truncated to midnight UTC before enumeration so that
// callers comparing resolved dates against stored DATE columns compare on
// the calendar date, never on a stray time component.
func ResolveDates(days DaySet, windowStart time.Time, windowLengthDays int) []time.Time {
	out := []time.Time{}
	if windowLengthDays <= 0 || len(days) == 0 {
		return out
	}
	day := Midnight(windowStart)
	for i := 0; i < windowLengthDays; i++ {
		if days.Contains(day) {
			out = append(out, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

// Midnight truncates t to 00:00:00 UTC on the same calendar date.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
