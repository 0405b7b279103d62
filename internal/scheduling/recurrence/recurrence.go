// Package recurrence expands recurrence selections into concrete calendar
// dates. All functions are pure; dates are returned normalized to midnight in
// the anchor's location.
package recurrence

import (
	"errors"
	"time"
)

var (
	ErrNegativeCount = errors.New("recurrence count cannot be negative")
	ErrInvalidUnit   = errors.New("invalid recurrence unit")
)

// Unit is the stepping unit for fixed-count expansion.
type Unit string

const (
	UnitDaily   Unit = "daily"
	UnitWeekly  Unit = "weekly"
	UnitMonthly Unit = "monthly"
)

// IsValid checks if the unit is supported.
func (u Unit) IsValid() bool {
	switch u {
	case UnitDaily, UnitWeekly, UnitMonthly:
		return true
	default:
		return false
	}
}

// ExpandFixedCount returns count dates starting at anchor, stepping by one
// unit each time. Monthly stepping preserves the anchor's day-of-month where
// possible; when the target month is shorter, the date clamps to that month's
// last day (each step is computed from the anchor, so a later long month gets
// the original day back).
func ExpandFixedCount(anchor time.Time, unit Unit, count int) ([]time.Time, error) {
	if count < 0 {
		return nil, ErrNegativeCount
	}
	if !unit.IsValid() {
		return nil, ErrInvalidUnit
	}

	start := Midnight(anchor)
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		switch unit {
		case UnitDaily:
			dates = append(dates, start.AddDate(0, 0, i))
		case UnitWeekly:
			dates = append(dates, start.AddDate(0, 0, 7*i))
		case UnitMonthly:
			dates = append(dates, addMonthsClamped(start, i))
		}
	}
	return dates, nil
}

// ExpandWeekdayOfMonth returns every date in the anchor's calendar month that
// falls on the given weekday, excluding the anchor itself. The anchor row is
// inserted separately by the caller.
func ExpandWeekdayOfMonth(anchor time.Time, weekday time.Weekday) []time.Time {
	start := Midnight(anchor)
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())

	dates := make([]time.Time, 0, 5)
	for d := first; d.Month() == start.Month(); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == weekday && !d.Equal(start) {
			dates = append(dates, d)
		}
	}
	return dates
}

// ExpandBiweekly returns occurrences dates starting 15 calendar days after
// the anchor, each 15 days after the previous. This mirrors the calendar's
// "every 15 days" selection rather than ISO-week-aligned fortnights.
func ExpandBiweekly(anchor time.Time, occurrences int) ([]time.Time, error) {
	if occurrences < 0 {
		return nil, ErrNegativeCount
	}

	start := Midnight(anchor)
	dates := make([]time.Time, 0, occurrences)
	for i := 1; i <= occurrences; i++ {
		dates = append(dates, start.AddDate(0, 0, 15*i))
	}
	return dates, nil
}

// NextBusinessDay returns the next calendar day after date that is not a
// Saturday or Sunday. Holidays are not considered.
func NextBusinessDay(date time.Time) time.Time {
	d := Midnight(date).AddDate(0, 0, 1)
	for isWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// BusinessDaysAhead returns the next n business days strictly after from, in
// ascending order, skipping weekends.
func BusinessDaysAhead(from time.Time, n int) ([]time.Time, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}

	dates := make([]time.Time, 0, n)
	d := Midnight(from)
	for len(dates) < n {
		d = NextBusinessDay(d)
		dates = append(dates, d)
	}
	return dates, nil
}

// Midnight truncates t to the start of its calendar day, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// addMonthsClamped steps months from t, clamping the day-of-month to the
// target month's last day instead of letting AddDate normalize into the
// following month.
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()

	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}
