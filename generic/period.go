package generic

import (
	"strings"
	"time"
)

// =============================================================================
// PERIOD - Half-open time window used for day/week grouping
// =============================================================================

// Period is the window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// DayPeriod returns the calendar day containing t.
func DayPeriod(t time.Time) Period {
	start := StartOfDay(t)
	return Period{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains returns true if t is within [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Overlaps returns true if [start, end) intersects the period.
func (p Period) Overlaps(start, end time.Time) bool {
	return start.Before(p.End) && p.Start.Before(end)
}

// Days returns the start of every calendar day in the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := StartOfDay(p.Start); d.Before(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.Format(time.RFC3339) + ", " + p.End.Format(time.RFC3339) + ")"
}

// =============================================================================
// WEEKS
// =============================================================================

// WeekOf returns the seven-day period containing anchor, starting on weekStart.
//
//	WeekOf(wednesday, time.Monday) -> [monday 00:00, next monday 00:00)
func WeekOf(anchor time.Time, weekStart time.Weekday) Period {
	day := StartOfDay(anchor)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return Period{Start: start, End: start.AddDate(0, 0, 7)}
}

// DaysFrom returns n consecutive days starting at from's day.
func DaysFrom(from time.Time, n int) Period {
	start := StartOfDay(from)
	return Period{Start: start, End: start.AddDate(0, 0, n)}
}

// ParseWeekday maps "monday"/"sunday" to a weekday; anything else is Monday.
func ParseWeekday(s string) time.Weekday {
	if strings.EqualFold(s, "sunday") {
		return time.Sunday
	}
	return time.Monday
}
