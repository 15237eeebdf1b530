package calculator

import (
	"fmt"
	"time"
)

// DaysPerMonth is 1/12 of a Julian year.
const DaysPerMonth = 365.25 / 12

// MonthBasis selects how a span of time is converted into months.
type MonthBasis string

const (
	// BasisAverage divides the span by DaysPerMonth.
	BasisAverage MonthBasis = "average"
	// BasisCalendar counts whole calendar months, then the elapsed share of the next one.
	BasisCalendar MonthBasis = "calendar"
)

// ParseMonthBasis validates a configured basis name. Empty means average.
func ParseMonthBasis(s string) (MonthBasis, error) {
	switch MonthBasis(s) {
	case "", BasisAverage:
		return BasisAverage, nil
	case BasisCalendar:
		return BasisCalendar, nil
	default:
		return "", fmt.Errorf("unknown month basis %q", s)
	}
}

// MonthsBetween returns the signed, fractional number of months from a to b.
func MonthsBetween(a, b time.Time, basis MonthBasis) float64 {
	if basis == BasisCalendar {
		return calendarMonths(a, b)
	}
	return b.Sub(a).Hours() / (DaysPerMonth * 24)
}

func calendarMonths(a, b time.Time) float64 {
	if b.Before(a) {
		return -calendarMonths(b, a)
	}
	whole := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if whole > 0 && AddMonths(a, whole).After(b) {
		whole--
	}
	lo := AddMonths(a, whole)
	hi := AddMonths(a, whole+1)
	return float64(whole) + float64(b.Sub(lo))/float64(hi.Sub(lo))
}

// WallClock re-reads t's calendar date and clock time in loc. Register dates carry no
// zone, so month spans compare wall-clock readings rather than absolute instants.
func WallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// AddMonths moves t by n calendar months, clamping the day to the end of the target month
// (Jan 31 + 1 month = Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// FiscalYear returns the July-to-June fiscal year a date falls in, named by the year it ends.
func FiscalYear(t time.Time) int {
	if t.Month() >= time.July {
		return t.Year() + 1
	}
	return t.Year()
}
