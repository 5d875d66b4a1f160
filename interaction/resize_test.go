package interaction_test

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/interaction"
	"github.com/warp/bentobox/layout"
)

// px converts minutes to a pointer delta.
func px(minutes float64) float64 {
	return minutes * layout.PixelsPerMinute()
}

func session(edge interaction.Edge, start, end time.Time) interaction.ResizeSession {
	return interaction.ResizeSession{EncounterID: "e", Edge: edge, AnchorY: 500, InitialStart: start, InitialEnd: end}
}

func TestCandidate_Bottom_22MinutesSnapsTo15(t *testing.T) {
	s := session(interaction.EdgeBottom, at(9, 0), at(10, 0))

	start, end, ok := s.Candidate(500 + px(22))

	require.True(t, ok)
	assert.Equal(t, at(9, 0), start)
	assert.Equal(t, at(10, 15), end)
}

func TestCandidate_ZeroDelta_InitialBounds(t *testing.T) {
	s := session(interaction.EdgeTop, at(9, 0), at(10, 0))

	start, end, ok := s.Candidate(500 + px(5))

	require.True(t, ok, "5 minutes snaps to zero")
	assert.Equal(t, at(9, 0), start)
	assert.Equal(t, at(10, 0), end)
}

func TestCandidate_ZeroDelta_BelowMinimum(t *testing.T) {
	s := session(interaction.EdgeBottom, at(9, 0), at(9, 10))
	_, _, ok := s.Candidate(500)
	assert.False(t, ok)
}

func TestCandidate_Top_NeverCrossesEndMinus15(t *testing.T) {
	s := session(interaction.EdgeTop, at(9, 0), at(10, 0))

	start, end, ok := s.Candidate(500 + px(180))

	require.True(t, ok)
	assert.Equal(t, at(9, 45), start)
	assert.Equal(t, at(10, 0), end)
}

func TestCandidate_Top_ClampedToMidnight(t *testing.T) {
	s := session(interaction.EdgeTop, at(0, 30), at(2, 0))

	start, _, ok := s.Candidate(500 - px(120))

	require.True(t, ok)
	assert.Equal(t, at(0, 0), start)
}

func TestCandidate_Top_OffGridEnd_FloorsBelowLimit(t *testing.T) {
	// end 10:10 puts the limit at 09:55, which snaps up to 10:00
	s := session(interaction.EdgeTop, at(9, 0), at(10, 10))

	start, end, ok := s.Candidate(500 + px(120))

	require.True(t, ok)
	assert.Equal(t, at(9, 45), start)
	assert.GreaterOrEqual(t, end.Sub(start), generic.MinimumDuration)
}

func TestCandidate_Bottom_ClampedTo23(t *testing.T) {
	s := session(interaction.EdgeBottom, at(21, 0), at(22, 0))

	_, end, ok := s.Candidate(500 + px(240))

	require.True(t, ok)
	assert.Equal(t, at(23, 0), end)
}

func TestCandidate_Bottom_EndPast23_NeverMovesAgainstPointer(t *testing.T) {
	// GIVEN: An encounter 22:00-23:30, already past the 23:00 clamp
	// WHEN: The bottom edge is dragged down or up 15 minutes
	// THEN: Dragging down keeps 23:30, dragging up gives 23:15

	s := session(interaction.EdgeBottom, at(22, 0), at(23, 30))

	_, end, ok := s.Candidate(500 + px(15))
	require.True(t, ok)
	assert.Equal(t, at(23, 30), end)

	_, end, ok = s.Candidate(500 - px(15))
	require.True(t, ok)
	assert.Equal(t, at(23, 15), end)
}

func TestCandidate_Top_StartPast23_NeverMovesAgainstPointer(t *testing.T) {
	s := session(interaction.EdgeTop, at(23, 30), at(24, 30))

	start, _, ok := s.Candidate(500 + px(15))

	require.True(t, ok)
	assert.False(t, start.Before(at(23, 30)))
}

func TestCandidate_Bottom_NeverBeforeStartPlus15(t *testing.T) {
	s := session(interaction.EdgeBottom, at(9, 0), at(10, 0))

	_, end, ok := s.Candidate(500 - px(300))

	require.True(t, ok)
	assert.Equal(t, at(9, 15), end)
}

func TestCandidate_MinimumDurationProperty(t *testing.T) {
	for _, edge := range []interaction.Edge{interaction.EdgeTop, interaction.EdgeBottom} {
		for startMin := 0; startMin < 22*60; startMin += 35 {
			start := day.Add(time.Duration(startMin) * time.Minute)
			s := session(edge, start, start.Add(45*time.Minute))
			for delta := -600.0; delta <= 600; delta += 13 {
				st, en, ok := s.Candidate(500 + px(delta))
				if !ok {
					continue
				}
				assert.GreaterOrEqual(t, en.Sub(st), generic.MinimumDuration)
				if edge == interaction.EdgeTop {
					assert.False(t, st.Before(day), "top edge never precedes 00:00")
					assert.False(t, st.After(en.Add(-generic.MinimumDuration)))
				}
			}
		}
	}
}

func TestResize_Session(t *testing.T) {
	// GIVEN: A cancelled encounter 09:00-10:00
	// WHEN: Its bottom edge is dragged down 22 then 30 minutes and released
	// THEN: Each qualifying move writes, status stays cancelled, release changes nothing

	f := newFixture(t)
	ctx := context.Background()
	e := f.place(t, "tpl-90", at(9, 0))
	_, err := f.board.Retime(ctx, e.ID, at(9, 0), at(10, 0))
	require.NoError(t, err)
	_, err = f.board.Cancel(ctx, e.ID)
	require.NoError(t, err)

	_, err = f.ctl.ResizeStart(e.ID, interaction.EdgeBottom, 500)
	require.NoError(t, err)

	step, err := f.ctl.ResizeMove(ctx, 500+px(22))
	require.NoError(t, err)
	assert.True(t, step.Wrote)
	assert.Equal(t, at(10, 15), step.Encounter.End)
	assert.Equal(t, "cancelled", string(step.Encounter.Status))

	step, err = f.ctl.ResizeMove(ctx, 500+px(20))
	require.NoError(t, err)
	assert.False(t, step.Wrote, "same candidate is not rewritten")

	step, err = f.ctl.ResizeMove(ctx, 500+px(30))
	require.NoError(t, err)
	assert.True(t, step.Wrote)
	assert.Equal(t, at(10, 30), step.Encounter.End)

	writes := f.mem.Writes()
	require.NoError(t, f.ctl.ResizeEnd())
	assert.Equal(t, writes, f.mem.Writes())
	got, _ := f.board.Encounter(e.ID)
	assert.Equal(t, at(10, 30), got.End, "last move stands")

	_, err = f.ctl.ResizeMove(ctx, 600)
	assert.ErrorIs(t, err, generic.ErrNoSession)
	assert.ErrorIs(t, f.ctl.ResizeEnd(), generic.ErrNoSession)
	assert.Equal(t, []bool{true, false, true}, f.obs.resizes)
}

func TestResize_BackToAnchorRestoresSize(t *testing.T) {
	// GIVEN: A bottom-edge resize that has written 09:00-10:15
	// WHEN: The pointer returns to the anchor
	// THEN: The original 09:00-10:00 is written back, once

	f := newFixture(t)
	ctx := context.Background()
	e := f.place(t, "tpl-90", at(9, 0))
	_, err := f.board.Retime(ctx, e.ID, at(9, 0), at(10, 0))
	require.NoError(t, err)

	_, err = f.ctl.ResizeStart(e.ID, interaction.EdgeBottom, 500)
	require.NoError(t, err)
	step, err := f.ctl.ResizeMove(ctx, 500+px(22))
	require.NoError(t, err)
	require.True(t, step.Wrote)

	step, err = f.ctl.ResizeMove(ctx, 500)
	require.NoError(t, err)
	assert.True(t, step.Wrote)
	assert.Equal(t, at(10, 0), step.Encounter.End)

	step, err = f.ctl.ResizeMove(ctx, 500+px(3))
	require.NoError(t, err)
	assert.False(t, step.Wrote)
	assert.Equal(t, []bool{true, true, false}, f.obs.resizes)
}

func TestResize_StillAtAnchor_NoWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.place(t, "tpl-90", at(9, 0))
	_, err := f.ctl.ResizeStart(e.ID, interaction.EdgeTop, 500)
	require.NoError(t, err)
	writes := f.mem.Writes()

	step, err := f.ctl.ResizeMove(ctx, 500)

	require.NoError(t, err)
	assert.False(t, step.Wrote)
	assert.Equal(t, writes, f.mem.Writes())
}

func TestResize_DayBoundsInCalendarZone(t *testing.T) {
	// GIVEN: A controller showing America/New_York and an encounter
	//        21:00-22:00 New York time, stored in UTC
	// WHEN: The bottom edge is dragged four hours down
	// THEN: The end clamps at 23:00 New York time

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	f := newFixture(t, interaction.WithLocation(ny))
	ctx := context.Background()
	start := time.Date(2025, time.March, 10, 21, 0, 0, 0, ny).UTC()
	e := f.place(t, "tpl-90", start)
	_, err = f.board.Retime(ctx, e.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	_, err = f.ctl.ResizeStart(e.ID, interaction.EdgeBottom, 500)
	require.NoError(t, err)
	step, err := f.ctl.ResizeMove(ctx, 500+px(240))

	require.NoError(t, err)
	require.True(t, step.Wrote)
	assert.True(t, time.Date(2025, time.March, 10, 23, 0, 0, 0, ny).Equal(step.Encounter.End), step.Encounter.End)
}

func TestResizeStart_MalformedEncounter(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.board.Restore(bento.Snapshot{
		ScheduledEncounters: []bento.ScheduledEncounter{{ID: "bad", End: at(10, 0), Status: bento.StatusScheduled}},
	}))

	_, err := f.ctl.ResizeStart("bad", interaction.EdgeTop, 0)
	assert.ErrorIs(t, err, generic.ErrInvalidRange)
}

func TestResize_Exclusive(t *testing.T) {
	f := newFixture(t)
	e := f.place(t, "tpl-90", at(9, 0))

	_, err := f.ctl.ResizeStart(e.ID, interaction.EdgeTop, 0)
	require.NoError(t, err)

	_, err = f.ctl.ResizeStart(e.ID, interaction.EdgeBottom, 0)
	assert.ErrorIs(t, err, generic.ErrInteractionBusy)
	assert.ErrorIs(t, f.ctl.DragStart(interaction.EncounterPayload{EncounterID: e.ID}), generic.ErrInteractionBusy,
		"resize handles are not draggable while resizing")
}

func TestResizeStart_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctl.ResizeStart("missing", interaction.EdgeTop, 0)
	assert.ErrorIs(t, err, generic.ErrNotFound)

	_, err = f.ctl.ResizeStart("missing", interaction.Edge("left"), 0)
	assert.ErrorIs(t, err, generic.ErrInvalidPayload)
}
