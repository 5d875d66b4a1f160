/*
Package generic provides the domain-agnostic primitives of the scheduling engine.

PURPOSE:
  Wall-clock arithmetic shared by every calendar surface: minutes since
  midnight, snapping to grid units, day bounds and clamping. Nothing in
  this package knows about templates, pools or encounters.

KEY CONCEPTS IN THIS FILE (time.go):
  - Snap: minute resolution used to round computed times
  - Day bounds: the [00:00, 23:00] window an edge may be dragged within
  - Clock: injectable "now" used by status derivation and tests

SEE ALSO:
  - period.go: Day/week periods used for grouping
  - errors.go: Sentinel errors
  - store.go: Blob persistence interface
*/
package generic

import (
	"math"
	"time"
)

// =============================================================================
// SNAP GRANULARITY
// =============================================================================

// Snap is a minute resolution to which computed times are rounded.
type Snap int

const (
	// SnapPlacement is used when a pool item is dropped to create an encounter.
	SnapPlacement Snap = 30
	// SnapAdjust is used once an encounter exists (resize, move).
	SnapAdjust Snap = 15
)

const (
	// MinimumDuration is the shortest encounter the engine will keep.
	MinimumDuration = 15 * time.Minute

	// DefaultDuration is used when a template carries no usable duration.
	DefaultDuration = 120 * time.Minute

	// LastEdgeHour is the latest hour of the day an edge may be dragged to.
	LastEdgeHour = 23
)

// RoundHalfUp rounds x to the nearest integer, with .5 rounding toward +Inf.
// Pointer deltas are signed, so math.Round (away from zero) would make
// upward and downward drags asymmetric.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// SnapMinutes rounds minutes to the nearest multiple of unit.
func SnapMinutes(minutes int, unit Snap) int {
	if unit <= 0 {
		return minutes
	}
	return RoundHalfUp(float64(minutes)/float64(unit)) * int(unit)
}

// FloorMinutes rounds minutes down to a multiple of unit.
func FloorMinutes(minutes int, unit Snap) int {
	if unit <= 0 {
		return minutes
	}
	return int(math.Floor(float64(minutes)/float64(unit))) * int(unit)
}

// =============================================================================
// WALL CLOCK
// =============================================================================

// MinutesFromMidnight returns hours(t)*60 + minutes(t) in t's location.
func MinutesFromMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// StartOfDay returns 00:00 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AtMinute returns the instant `minutes` after midnight of day.
// Minutes >= 1440 roll into the following day.
func AtMinute(day time.Time, minutes int) time.Time {
	return StartOfDay(day).Add(time.Duration(minutes) * time.Minute)
}

// DayBounds returns the window [00:00, 23:00] of t's day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	lo := StartOfDay(t)
	return lo, lo.Add(LastEdgeHour * time.Hour)
}

// Clamp bounds t to [lo, hi].
func Clamp(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}

// SnapTime rounds t's minute-of-day to the nearest unit, keeping the day.
func SnapTime(t time.Time, unit Snap) time.Time {
	return AtMinute(t, SnapMinutes(MinutesFromMidnight(t), unit))
}

// FloorTime rounds t's minute-of-day down to a unit boundary.
func FloorTime(t time.Time, unit Snap) time.Time {
	return AtMinute(t, FloorMinutes(MinutesFromMidnight(t), unit))
}

// CeilTime rounds t's minute-of-day up to a unit boundary.
func CeilTime(t time.Time, unit Snap) time.Time {
	floored := FloorTime(t, unit)
	if floored.Equal(t) {
		return t
	}
	return floored.Add(time.Duration(unit) * time.Minute)
}

// =============================================================================
// CLOCK
// =============================================================================

// Clock returns the current instant.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// =============================================================================
// TIME FORMAT - Display preference persisted with the board
// =============================================================================

type TimeFormat string

const (
	TimeFormat12h TimeFormat = "12h"
	TimeFormat24h TimeFormat = "24h"
)

// IsValid reports whether f is a known format.
func (f TimeFormat) IsValid() bool {
	return f == TimeFormat12h || f == TimeFormat24h
}
