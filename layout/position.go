/*
Package layout maps wall-clock time to calendar pixels and back.

PURPOSE:
  Pure, stateless conversion shared by every calendar surface. One hour is
  HourHeight pixels tall; every other measure derives from that.

FORMULAS:
  minutesFromMidnight(t) = hours(t)*60 + minutes(t)
  pixelOffset(minutes)   = minutes * (96/60)
  positionOf(e)          = {top: px(start), height: max(px(end) - px(start), 24)}

PRECISION:
  96/60 is exact in decimal (1.6) but not in binary floating point, so the
  ratio is kept as a decimal.Decimal and only converted at the boundary.
  Inverse mapping therefore recovers whole minutes without drift.

MALFORMED DATA:
  Rendering must not fail for legacy records. A zero or unparseable
  start/end yields the degenerate {top: 0, height: 20}.

SEE ALSO:
  - drop.go: Pointer position inside a cell -> snapped minute
  - lanes.go: Side-by-side placement of overlapping encounters
*/
package layout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/bentobox/generic"
)

const (
	// HourHeight is the pixel height of one hour row.
	HourHeight = 96

	// MinHeight keeps very short encounters visible and clickable.
	MinHeight = 24

	// DegenerateHeight is used for records whose times cannot be read.
	DegenerateHeight = 20
)

var pixelsPerMinute = decimal.NewFromInt(HourHeight).Div(decimal.NewFromInt(60))

// Position is the vertical placement of a block within a day column.
type Position struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Degenerate is the placement used for unreadable records.
var Degenerate = Position{Top: 0, Height: DegenerateHeight}

// PixelsPerMinute returns HourHeight/60.
func PixelsPerMinute() float64 {
	f, _ := pixelsPerMinute.Float64()
	return f
}

// PixelOffset converts minutes from midnight to a pixel offset.
func PixelOffset(minutes int) float64 {
	f, _ := decimal.NewFromInt(int64(minutes)).Mul(pixelsPerMinute).Float64()
	return f
}

// MinutesAtOffset converts a pixel offset back to minutes from midnight,
// rounded to the nearest unit.
func MinutesAtOffset(px float64, unit generic.Snap) int {
	exact, _ := decimal.NewFromFloat(px).Div(pixelsPerMinute).Float64()
	return generic.SnapMinutes(generic.RoundHalfUp(exact), unit)
}

// DeltaMinutes converts a pointer delta in pixels to whole minutes, then
// snaps it to unit: round(deltaY / pxPerMinute) -> nearest unit multiple.
func DeltaMinutes(deltaY float64, unit generic.Snap) int {
	exact, _ := decimal.NewFromFloat(deltaY).Div(pixelsPerMinute).Float64()
	return generic.SnapMinutes(generic.RoundHalfUp(exact), unit)
}

// PositionOf places [start, end) within start's day column.
// An end on a later day keeps counting past midnight, so overnight blocks
// are tall rather than negative.
func PositionOf(start, end time.Time) Position {
	if start.IsZero() || end.IsZero() {
		return Degenerate
	}
	startMin := generic.MinutesFromMidnight(start)
	endMin := startMin + int(end.Sub(start)/time.Minute)

	top := PixelOffset(startMin)
	height := PixelOffset(endMin) - top
	if height < MinHeight {
		height = MinHeight
	}
	return Position{Top: top, Height: height}
}

// FormatClock renders t as a time-of-day label.
func FormatClock(t time.Time, format generic.TimeFormat) string {
	if format == generic.TimeFormat12h {
		return t.Format("3:04 PM")
	}
	return t.Format("15:04")
}
