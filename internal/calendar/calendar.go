// Package calendar provides the civil date keys and range checks used to bucket samples.
package calendar

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Date is a calendar day with no time zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// NewDate normalises the components, so Day 0 is the last day of the previous month.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Midnight returns the start of the day in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// YearMonth returns the month containing d.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year, Month: d.Month}
}

// Compare orders dates chronologically.
func (d Date) Compare(other Date) int {
	if c := cmp.Compare(d.Year, other.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, other.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, other.Day)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// YearMonth is a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month of t as observed in loc.
func MonthOf(t time.Time, loc *time.Location) YearMonth {
	return DateOf(t, loc).YearMonth()
}

// AddMonths returns the month n months later; negative n moves backwards.
func (m YearMonth) AddMonths(n int) YearMonth {
	return NewDate(m.Year, m.Month+time.Month(n), 1).YearMonth()
}

// First returns the first day of the month.
func (m YearMonth) First() Date { return Date{Year: m.Year, Month: m.Month, Day: 1} }

// Last returns the last day of the month.
func (m YearMonth) Last() Date { return NewDate(m.Year, m.Month+1, 0) }

// Range returns the inclusive range spanning the month.
func (m YearMonth) Range() Range { return Range{Start: m.First(), End: m.Last()} }

// Compare orders months chronologically.
func (m YearMonth) Compare(other YearMonth) int {
	if c := cmp.Compare(m.Year, other.Year); c != 0 {
		return c
	}
	return cmp.Compare(m.Month, other.Month)
}

func (m YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Range is a span of calendar days. Both ends are included.
type Range struct {
	Start Date
	End   Date
}

// Includes reports whether start <= d <= end.
func (r Range) Includes(d Date) bool {
	return r.Start.Compare(d) <= 0 && d.Compare(r.End) <= 0
}

// Days lists every day in the range, newest first.
func (r Range) Days() []Date {
	days := make([]Date, 0, 31)
	for d := r.End; !d.Before(r.Start); d = d.AddDays(-1) {
		days = append(days, d)
	}
	return days
}

// Interval is a span of instants: the start is included and the end is not.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether start <= t < end.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// SortDatesDesc orders dates newest first in place.
func SortDatesDesc(dates []Date) {
	slices.SortFunc(dates, func(a, b Date) int { return b.Compare(a) })
}

// SortMonthsDesc orders months newest first in place.
func SortMonthsDesc(months []YearMonth) {
	slices.SortFunc(months, func(a, b YearMonth) int { return b.Compare(a) })
}
