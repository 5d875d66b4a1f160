package generic_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/bentobox/generic"
)

var monday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func TestRoundHalfUp_Symmetric(t *testing.T) {
	assert.Equal(t, 2, generic.RoundHalfUp(1.5))
	assert.Equal(t, -1, generic.RoundHalfUp(-1.5))
	assert.Equal(t, -1, generic.RoundHalfUp(-1.4667))
	assert.Equal(t, 0, generic.RoundHalfUp(0.49))
}

func TestSnapMinutes(t *testing.T) {
	cases := []struct {
		in   int
		unit generic.Snap
		want int
	}{
		{22, generic.SnapAdjust, 15},
		{23, generic.SnapAdjust, 30},
		{-22, generic.SnapAdjust, -15},
		{31, generic.SnapPlacement, 30},
		{45, generic.SnapPlacement, 60},
		{7, 0, 7},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, generic.SnapMinutes(tc.in, tc.unit), "%d/%d", tc.in, tc.unit)
	}
	assert.Equal(t, 45, generic.FloorMinutes(59, generic.SnapAdjust))
	assert.Equal(t, -15, generic.FloorMinutes(-1, generic.SnapAdjust))
}

func TestWallClock(t *testing.T) {
	ts := monday.Add(14*time.Hour + 37*time.Minute + 20*time.Second)

	assert.Equal(t, 877, generic.MinutesFromMidnight(ts))
	assert.Equal(t, monday, generic.StartOfDay(ts))
	assert.Equal(t, monday.AddDate(0, 0, 1).Add(time.Hour), generic.AtMinute(ts, 25*60))

	lo, hi := generic.DayBounds(ts)
	assert.Equal(t, monday, lo)
	assert.Equal(t, monday.Add(23*time.Hour), hi)

	assert.Equal(t, monday.Add(14*time.Hour+30*time.Minute), generic.SnapTime(ts, generic.SnapAdjust))
	assert.Equal(t, monday.Add(14*time.Hour+30*time.Minute), generic.FloorTime(ts, generic.SnapAdjust))
	assert.Equal(t, monday.Add(14*time.Hour+45*time.Minute), generic.CeilTime(ts.Truncate(time.Minute), generic.SnapAdjust))
	on := monday.Add(9 * time.Hour)
	assert.Equal(t, on, generic.CeilTime(on, generic.SnapAdjust))

	assert.Equal(t, lo, generic.Clamp(lo.Add(-time.Hour), lo, hi))
	assert.Equal(t, hi, generic.Clamp(hi.Add(time.Hour), lo, hi))
}

func TestPeriods(t *testing.T) {
	wednesday := monday.AddDate(0, 0, 2).Add(10 * time.Hour)

	week := generic.WeekOf(wednesday, time.Monday)
	assert.Equal(t, monday, week.Start)
	assert.Len(t, week.Days(), 7)

	sundayWeek := generic.WeekOf(wednesday, time.Sunday)
	assert.Equal(t, time.Sunday, sundayWeek.Start.Weekday())

	d := generic.DayPeriod(wednesday)
	assert.True(t, d.Contains(wednesday))
	assert.False(t, d.Contains(d.End), "half-open")
	assert.True(t, d.Overlaps(d.End.Add(-time.Minute), d.End.Add(time.Hour)))
	assert.False(t, d.Overlaps(d.End, d.End.Add(time.Hour)))

	assert.Equal(t, 3, len(generic.DaysFrom(wednesday, 3).Days()))
	assert.Equal(t, time.Sunday, generic.ParseWeekday("sunday"))
	assert.Equal(t, time.Monday, generic.ParseWeekday("whenever"))
}

func TestTimeFormatAndClock(t *testing.T) {
	assert.True(t, generic.TimeFormat12h.IsValid())
	assert.True(t, generic.TimeFormat24h.IsValid())
	assert.False(t, generic.TimeFormat("36h").IsValid())

	clock := generic.FixedClock(monday)
	assert.Equal(t, monday, clock())
}

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("drop: %w", generic.ErrInteractionBusy)

	assert.True(t, generic.IsConflict(wrapped))
	assert.False(t, generic.IsClientError(wrapped))
	assert.True(t, generic.IsClientError(fmt.Errorf("x: %w", generic.ErrInvalidTemplate)))
	assert.True(t, generic.IsNotFound(fmt.Errorf("x: %w", generic.ErrNotFound)))
	assert.False(t, generic.IsNotFound(errors.New("other")))
}
