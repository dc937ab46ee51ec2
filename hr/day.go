package hr

import (
	"encoding/json"
	"time"
)

// =============================================================================
// DAY - Calendar day, the atomic unit of attendance/leave accounting
// =============================================================================

// Day is a date with time-of-day removed. All comparisons and storage use
// the normalized form (midnight UTC), regardless of how the Day was built.
type Day struct {
	Time time.Time
}

// NewDay builds a Day directly from calendar components.
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Comparison
func (d Day) Before(other Day) bool        { return d.normalize().Before(other.normalize()) }
func (d Day) Equal(other Day) bool         { return d.normalize().Equal(other.normalize()) }
func (d Day) After(other Day) bool         { return d.normalize().After(other.normalize()) }
func (d Day) BeforeOrEqual(other Day) bool { return d.Before(other) || d.Equal(other) }
func (d Day) AfterOrEqual(other Day) bool  { return d.After(other) || d.Equal(other) }
func (d Day) IsZero() bool                 { return d.Time.IsZero() }

func (d Day) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.normalize().AddDate(0, 0, n)} }

func (d Day) String() string { return d.normalize().Format("2006-01-02") }

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, err
	}
	return Day{Time: t}, nil
}

func (d Day) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// CALENDAR - Explicit reference timezone for day truncation
// =============================================================================

// Calendar normalizes wall-clock instants to calendar days in one
// configured reference timezone. The zone is explicit configuration,
// never the server's local zone.
type Calendar struct {
	Location *time.Location
}

// NewCalendar builds a Calendar for the named IANA zone ("UTC", "Asia/Kolkata", ...).
func NewCalendar(zone string) (Calendar, error) {
	if zone == "" {
		return Calendar{Location: time.UTC}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Calendar{}, err
	}
	return Calendar{Location: loc}, nil
}

// DayOf truncates an instant to the calendar day it falls on in the
// calendar's reference zone.
func (c Calendar) DayOf(t time.Time) Day {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return NewDay(local.Year(), local.Month(), local.Day())
}

// =============================================================================
// INTERVAL ALGEBRA - The single source of truth for overlap and expansion
// =============================================================================

// Expand returns every calendar day from start to end inclusive.
// Pure: the same inputs always produce the same sequence.
func Expand(start, end Day) ([]Day, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}
	var days []Day
	for current := start; current.BeforeOrEqual(end); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days, nil
}

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share at least one calendar day. Every overlap test in
// the engine (leave-vs-leave, leave-vs-report-window) goes through this
// predicate so edge cases cannot diverge between call sites.
func Overlaps(aStart, aEnd, bStart, bEnd Day) bool {
	return aStart.BeforeOrEqual(bEnd) && bStart.BeforeOrEqual(aEnd)
}

// Clip intersects [start, end] with [windowStart, windowEnd].
// Callers must check Overlaps first; Clip assumes the intervals intersect.
func Clip(start, end, windowStart, windowEnd Day) (Day, Day) {
	if windowStart.After(start) {
		start = windowStart
	}
	if windowEnd.Before(end) {
		end = windowEnd
	}
	return start, end
}

// MonthWindow returns the first and last day of the given month.
func MonthWindow(month time.Month, year int) (Day, Day, error) {
	if month < time.January || month > time.December || year < 1 {
		return Day{}, Day{}, ErrInvalidRange
	}
	first := NewDay(year, month, 1)
	last := Day{Time: first.Time.AddDate(0, 1, -1)}
	return first, last, nil
}
