package interaction_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/generic/store"
	"github.com/warp/bentobox/interaction"
	"github.com/warp/bentobox/layout"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type recorder struct {
	drops   []interaction.Outcome
	resizes []bool
	merges  []interaction.MergeChoice
}

func (r *recorder) DropHandled(_ interaction.PayloadKind, o interaction.Outcome) {
	r.drops = append(r.drops, o)
}
func (r *recorder) ResizeApplied(wrote bool) { r.resizes = append(r.resizes, wrote) }
func (r *recorder) MergeResolved(c interaction.MergeChoice) {
	r.merges = append(r.merges, c)
}

type fixture struct {
	board *bento.Board
	ctl   *interaction.Controller
	mem   *store.Memory
	obs   *recorder
}

func newFixture(t *testing.T, opts ...interaction.ControllerOption) fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemory()
	n := 0
	b := bento.NewBoard(
		bento.WithStore(mem, "test"),
		bento.WithLogger(logger),
		bento.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)

	atoms := []bento.Atom{
		{Kind: bento.KindStaff, ID: "s1", Name: "Dana Reyes"},
		{Kind: bento.KindActivity, ID: "a1", Name: "Group therapy", Code: "GT"},
		{Kind: bento.KindClient, ID: "c1", Name: "Amy"},
		{Kind: bento.KindClient, ID: "c2", Name: "Bo"},
		{Kind: bento.KindClientGroup, ID: "g4", Name: "Four", ClientIDs: []string{"c3", "c4", "c5", "c6"}},
		{Kind: bento.KindClientGroup, ID: "g3", Name: "Three", ClientIDs: []string{"c1", "c7", "c8"}},
		{Kind: bento.KindClientGroup, ID: "g2", Name: "Two", ClientIDs: []string{"c1", "c9"}},
		{Kind: bento.KindDuration, ID: "d90", Minutes: 90},
	}
	for _, a := range atoms {
		_, err := b.AddAtom(ctx, a, a.Kind)
		require.NoError(t, err)
	}
	compose := func(id string, parts ...string) {
		var d bento.Draft
		d.ID = id
		for _, p := range parts {
			for _, a := range atoms {
				if a.ID == p {
					require.NoError(t, d.Add(a))
				}
			}
		}
		_, err := b.ComposeTemplate(ctx, d)
		require.NoError(t, err)
	}
	compose("tpl-90", "s1", "a1", "c1", "c2", "d90")

	obs := &recorder{}
	opts = append([]interaction.ControllerOption{interaction.WithLogger(logger), interaction.WithObserver(obs)}, opts...)
	ctl := interaction.NewController(b, opts...)
	return fixture{board: b, ctl: ctl, mem: mem, obs: obs}
}

func payload(t *testing.T, p interaction.Payload) string {
	t.Helper()
	raw, err := interaction.EncodePayload(p)
	require.NoError(t, err)
	return raw
}

// cell targets a row of day at a fraction of a 96px cell.
func cell(hour int, fraction float64) interaction.DropTarget {
	return interaction.DropTarget{
		Cell:       layout.Cell{Day: day, Hour: hour},
		PointerY:   fraction * layout.HourHeight,
		CellHeight: layout.HourHeight,
	}
}

func (f fixture) place(t *testing.T, templateID string, start time.Time) bento.ScheduledEncounter {
	t.Helper()
	e, err := f.board.Place(context.Background(), templateID, start)
	require.NoError(t, err)
	return e
}

// =============================================================================
// DRAG-PLACEMENT
// =============================================================================

func TestDrop_PoolTemplate_SnapsTo30(t *testing.T) {
	// GIVEN: A 90-minute template in the pool
	// WHEN: Dropped at fraction 0.52 of the 14:00 cell
	// THEN: start 14:30, end 16:00, scheduled

	f := newFixture(t)
	ctx := context.Background()
	raw := payload(t, interaction.PoolTemplatePayload{TemplateID: "tpl-90"})
	require.NoError(t, f.ctl.DragStart(interaction.PoolTemplatePayload{TemplateID: "tpl-90"}))

	res, err := f.ctl.Drop(ctx, raw, cell(14, 0.52))

	require.NoError(t, err)
	assert.Equal(t, interaction.OutcomePlaced, res.Outcome)
	require.NotNil(t, res.Encounter)
	assert.Equal(t, at(14, 30), res.Encounter.Start)
	assert.Equal(t, at(16, 0), res.Encounter.End)
	assert.Equal(t, bento.StatusScheduled, res.Encounter.Status)
	assert.False(t, f.ctl.State().Dragging, "drop ends the drag session")
	assert.Equal(t, []interaction.Outcome{interaction.OutcomePlaced}, f.obs.drops)
}

func TestDrop_BottomOfCell_RollsToNextHour(t *testing.T) {
	f := newFixture(t)
	raw := payload(t, interaction.PoolTemplatePayload{TemplateID: "tpl-90"})

	res, err := f.ctl.Drop(context.Background(), raw, cell(9, 0.9))

	require.NoError(t, err)
	assert.Equal(t, at(10, 0), res.Encounter.Start)
}

func TestDrop_MissingDuration_Defaults120(t *testing.T) {
	// GIVEN: A template parsed from a blob without a duration
	// WHEN: Dropped from the pool
	// THEN: The encounter lasts 120 minutes

	f := newFixture(t)
	ctx := context.Background()
	snap := f.board.Snapshot()
	for i := range snap.Library.Templates {
		snap.Library.Templates[i].Duration = nil
	}
	require.NoError(t, f.board.Restore(snap))

	res, err := f.ctl.Drop(ctx, payload(t, interaction.PoolTemplatePayload{TemplateID: "tpl-90"}), cell(8, 0))

	require.NoError(t, err)
	assert.Equal(t, 120*time.Minute, res.Encounter.Duration())
}

func TestDrop_MalformedPayload_NoOp(t *testing.T) {
	f := newFixture(t)
	before := f.mem.Writes()

	res, err := f.ctl.Drop(context.Background(), `{"type":`, cell(9, 0))

	require.NoError(t, err)
	assert.Equal(t, interaction.OutcomeIgnored, res.Outcome)
	assert.NotEmpty(t, res.Reason)
	assert.Empty(t, f.board.Encounters())
	assert.Equal(t, before, f.mem.Writes(), "store untouched")
}

func TestDrop_MoveCancelled_StaysCancelled(t *testing.T) {
	// GIVEN: A cancelled encounter
	// WHEN: Drag-moved to 11:15
	// THEN: start/end change, status remains cancelled

	f := newFixture(t)
	ctx := context.Background()
	e := f.place(t, "tpl-90", at(9, 0))
	_, err := f.board.Cancel(ctx, e.ID)
	require.NoError(t, err)

	p := interaction.EncounterPayload{EncounterID: e.ID}
	require.NoError(t, f.ctl.DragStart(p))
	assert.Equal(t, e.ID, f.ctl.State().DimmedEncounterID)

	res, err := f.ctl.Drop(ctx, payload(t, p), cell(11, 0.25))

	require.NoError(t, err)
	assert.Equal(t, interaction.OutcomeMoved, res.Outcome)
	assert.Equal(t, at(11, 15), res.Encounter.Start)
	assert.Equal(t, at(12, 45), res.Encounter.End)
	assert.Equal(t, bento.StatusCancelled, res.Encounter.Status)
}

func TestDrop_ClientGroupOnEmptySpace_NoOp(t *testing.T) {
	f := newFixture(t)

	res, err := f.ctl.Drop(context.Background(), payload(t, interaction.ClientGroupPayload{ClientGroupID: "g4"}), cell(9, 0))

	require.NoError(t, err)
	assert.Equal(t, interaction.OutcomeIgnored, res.Outcome)
	_, pending := f.ctl.PendingMerge()
	assert.False(t, pending)
}

func TestDrop_UnknownTemplate_ReturnsError(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctl.Drop(context.Background(), payload(t, interaction.PoolTemplatePayload{TemplateID: "gone"}), cell(9, 0))
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestDragOverLeaveCancel(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctl.DragOver(layout.Cell{Day: day, Hour: 9}, 10, layout.HourHeight)
	assert.ErrorIs(t, err, generic.ErrNoSession)

	require.NoError(t, f.ctl.DragStart(interaction.PoolTemplatePayload{TemplateID: "tpl-90"}))
	h, err := f.ctl.DragOver(layout.Cell{Day: day, Hour: 9}, 50, layout.HourHeight)
	require.NoError(t, err)
	assert.Equal(t, interaction.Hover{Day: day, Hour: 9, Minute: 30}, h)
	require.NotNil(t, f.ctl.State().Hover)

	f.ctl.DragLeave()
	assert.Nil(t, f.ctl.State().Hover)

	err = f.ctl.DragStart(interaction.PoolTemplatePayload{TemplateID: "tpl-90"})
	assert.ErrorIs(t, err, generic.ErrInteractionBusy, "one drag at a time")

	f.ctl.DragCancel()
	assert.False(t, f.ctl.State().Dragging)
	assert.Empty(t, f.board.Encounters())
}

// =============================================================================
// MERGE RESOLVER
// =============================================================================

func TestMerge_AppendsGroup(t *testing.T) {
	// GIVEN: An encounter with a 2-client roster
	// WHEN: A 4-member group is dropped on it and "Merge" chosen
	// THEN: Effective headcount is 6, template untouched

	f := newFixture(t)
	ctx := context.Background()
	e := f.place(t, "tpl-90", at(9, 0))
	target := cell(9, 0)
	target.EncounterID = e.ID

	res, err := f.ctl.Drop(ctx, payload(t, interaction.ClientGroupPayload{ClientGroupID: "g4"}), target)
	require.NoError(t, err)
	require.Equal(t, interaction.OutcomeMergePending, res.Outcome)
	assert.Equal(t, 2, res.Merge.CurrentHeadcount)
	assert.Equal(t, 4, res.Merge.IncomingHeadcount)

	updated, err := f.ctl.MergeChoice(ctx, interaction.ChoiceMerge)
	require.NoError(t, err)

	report, err := f.board.Capacity(updated.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Headcount)
	tpl, _ := f.board.Template("tpl-90")
	assert.Len(t, tpl.Clients, 2)
	assert.Equal(t, []interaction.MergeChoice{interaction.ChoiceMerge}, f.obs.merges)
}

func TestMerge_Replace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.place(t, "tpl-90", at(9, 0))
	target := cell(9, 0)
	target.EncounterID = e.ID

	_, err := f.ctl.Drop(ctx, payload(t, interaction.ClientGroupPayload{ClientGroupID: "g4"}), target)
	require.NoError(t, err)
	_, err = f.ctl.MergeChoice(ctx, interaction.ChoiceReplace)
	require.NoError(t, err)

	report, err := f.board.Capacity(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Headcount)
}

func TestMerge_Cancel_LeavesEncounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.place(t, "tpl-90", at(9, 0))
	target := cell(9, 0)
	target.EncounterID = e.ID
	_, err := f.ctl.Drop(ctx, payload(t, interaction.ClientGroupPayload{ClientGroupID: "g4"}), target)
	require.NoError(t, err)
	before := f.mem.Writes()

	_, err = f.ctl.MergeChoice(ctx, interaction.ChoiceCancel)
	require.NoError(t, err)

	got, _ := f.board.Encounter(e.ID)
	assert.True(t, got.Overrides.IsZero())
	assert.Equal(t, before, f.mem.Writes())

	_, err = f.ctl.MergeChoice(ctx, interaction.ChoiceMerge)
	assert.ErrorIs(t, err, generic.ErrNoSession)
}

func TestMerge_OverlappingGroups_NotDeduplicated(t *testing.T) {
	// GIVEN: An encounter with no clients; groups of 3 and 2 sharing a member
	// WHEN: Both are merged in turn
	// THEN: Headcount is 5

	f := newFixture(t)
	ctx := context.Background()
	e := f.place(t, "tpl-90", at(9, 0))
	_, err := f.board.SetClients(ctx, e.ID, []bento.Atom{})
	require.NoError(t, err)
	target := cell(9, 0)
	target.EncounterID = e.ID

	for _, g := range []string{"g3", "g2"} {
		_, err := f.ctl.Drop(ctx, payload(t, interaction.ClientGroupPayload{ClientGroupID: g}), target)
		require.NoError(t, err)
		_, err = f.ctl.MergeChoice(ctx, interaction.ChoiceMerge)
		require.NoError(t, err)
	}

	report, err := f.board.Capacity(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Headcount)
}

func TestMerge_PendingSuspendsDragsAndResizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.place(t, "tpl-90", at(9, 0))
	target := cell(9, 0)
	target.EncounterID = e.ID
	_, err := f.ctl.Drop(ctx, payload(t, interaction.ClientGroupPayload{ClientGroupID: "g4"}), target)
	require.NoError(t, err)

	_, err = f.ctl.Drop(ctx, payload(t, interaction.PoolTemplatePayload{TemplateID: "tpl-90"}), cell(12, 0))
	assert.ErrorIs(t, err, generic.ErrInteractionBusy)
	assert.ErrorIs(t, f.ctl.DragStart(interaction.PoolTemplatePayload{TemplateID: "tpl-90"}), generic.ErrInteractionBusy)
	_, err = f.ctl.ResizeStart(e.ID, interaction.EdgeTop, 0)
	assert.ErrorIs(t, err, generic.ErrInteractionBusy)

	assert.Len(t, f.board.Encounters(), 1, "the suspended drop placed nothing")
	assert.NotNil(t, f.ctl.State().PendingMerge)
}

func TestMergeRoster_Pure(t *testing.T) {
	existing := []bento.Atom{{Kind: bento.KindClient, ID: "c1"}}
	group := bento.Atom{Kind: bento.KindClientGroup, ID: "g", ClientIDs: []string{"c1", "c2"}}

	merged := interaction.MergeRoster(existing, group)
	assert.Len(t, merged, 2)
	assert.Len(t, existing, 1, "input not mutated")
	assert.Equal(t, 3, bento.Headcount(merged))
	assert.Equal(t, []bento.Atom{group}, interaction.ReplaceRoster(group))
}
