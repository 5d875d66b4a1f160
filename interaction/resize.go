package interaction

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/layout"
)

// =============================================================================
// RESIZE STATE MACHINE - Idle -> Resizing(edge, anchor) -> Idle
// =============================================================================

// Edge is the encounter edge under the resize handle.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

func (e Edge) IsValid() bool { return e == EdgeTop || e == EdgeBottom }

// ResizeSession is created on press and discarded on release.
type ResizeSession struct {
	EncounterID  string    `json:"encounterId"`
	Edge         Edge      `json:"edge"`
	AnchorY      float64   `json:"anchorY"`
	InitialStart time.Time `json:"initialStart"`
	InitialEnd   time.Time `json:"initialEnd"`

	// last written values; moves that reproduce them are skipped
	lastStart time.Time
	lastEnd   time.Time
}

// Candidate maps the pointer at currentY to a new (start, end).
// ok is false when the edge is unknown or the result would be shorter than
// the minimum duration. A zero snapped delta yields the initial bounds, so
// returning the pointer to the anchor undoes earlier moves.
//
// Top edge: start = initial start + delta, held at least 15 minutes before
// the end, re-snapped to 15 minutes, then clamped to [00:00, 23:00] of the
// start's day. Bottom edge is symmetric on the end. A bound already past
// 23:00 widens the clamp to itself so the edge never moves against the
// pointer.
func (s ResizeSession) Candidate(currentY float64) (start, end time.Time, ok bool) {
	switch s.Edge {
	case EdgeTop, EdgeBottom:
	default:
		return s.InitialStart, s.InitialEnd, false
	}
	delta := layout.DeltaMinutes(currentY-s.AnchorY, generic.SnapAdjust)
	if delta == 0 {
		return s.InitialStart, s.InitialEnd, s.InitialEnd.Sub(s.InitialStart) >= generic.MinimumDuration
	}
	shift := time.Duration(delta) * time.Minute
	lo, hi := generic.DayBounds(s.InitialStart)
	start, end = s.InitialStart, s.InitialEnd
	if s.Edge == EdgeTop {
		limit := end.Add(-generic.MinimumDuration)
		start = start.Add(shift)
		if start.After(limit) {
			start = limit
		}
		start = generic.SnapTime(start, generic.SnapAdjust)
		if start.After(limit) {
			start = generic.FloorTime(limit, generic.SnapAdjust)
		}
		start = generic.Clamp(start, lo, latest(hi, s.InitialStart))
	} else {
		limit := start.Add(generic.MinimumDuration)
		end = end.Add(shift)
		if end.Before(limit) {
			end = limit
		}
		end = generic.SnapTime(end, generic.SnapAdjust)
		if end.Before(limit) {
			end = generic.CeilTime(limit, generic.SnapAdjust)
		}
		end = generic.Clamp(end, lo, latest(hi, s.InitialEnd))
	}
	if end.Sub(start) < generic.MinimumDuration {
		return s.InitialStart, s.InitialEnd, false
	}
	return start, end, true
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// ResizeStep reports the effect of one pointer move.
type ResizeStep struct {
	Wrote     bool                     `json:"wrote"`
	Encounter bento.ScheduledEncounter `json:"encounter"`
}

// ResizeStart opens a resize session on an edge of the encounter.
func (c *Controller) ResizeStart(encounterID string, edge Edge, anchorY float64) (ResizeSession, error) {
	if !edge.IsValid() {
		return ResizeSession{}, fmt.Errorf("%w: unknown edge %q", generic.ErrInvalidPayload, edge)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.busyLocked(false); err != nil {
		return ResizeSession{}, err
	}
	e, ok := c.board.Encounter(encounterID)
	if !ok {
		return ResizeSession{}, fmt.Errorf("encounter %q: %w", encounterID, generic.ErrNotFound)
	}
	if e.Malformed() {
		return ResizeSession{}, fmt.Errorf("%w: encounter %q has no readable bounds, move it first", generic.ErrInvalidRange, e.ID)
	}
	// day bounds are taken in the calendar's zone, not the stored one
	start, end := c.inZone(e.Start), c.inZone(e.End)
	c.resize = &ResizeSession{
		EncounterID:  e.ID,
		Edge:         edge,
		AnchorY:      anchorY,
		InitialStart: start,
		InitialEnd:   end,
		lastStart:    start,
		lastEnd:      end,
	}
	c.logger.Debug("resize started", "encounter_id", e.ID, "edge", edge)
	return *c.resize, nil
}

// ResizeMove writes the candidate for currentY through Board.Retime.
func (c *Controller) ResizeMove(ctx context.Context, currentY float64) (ResizeStep, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.resize
	if s == nil {
		return ResizeStep{}, generic.ErrNoSession
	}
	start, end, ok := s.Candidate(currentY)
	if !ok || (start.Equal(s.lastStart) && end.Equal(s.lastEnd)) {
		e, found := c.board.Encounter(s.EncounterID)
		if !found {
			return ResizeStep{}, fmt.Errorf("encounter %q: %w", s.EncounterID, generic.ErrNotFound)
		}
		c.observer.ResizeApplied(false)
		return ResizeStep{Encounter: e}, nil
	}

	e, err := c.board.Retime(ctx, s.EncounterID, start, end)
	if err != nil {
		return ResizeStep{}, err
	}
	s.lastStart, s.lastEnd = e.Start, e.End
	c.observer.ResizeApplied(true)
	return ResizeStep{Wrote: true, Encounter: e}, nil
}

// ResizeEnd returns to Idle. The last move's write stands.
func (c *Controller) ResizeEnd() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resize == nil {
		return generic.ErrNoSession
	}
	c.logger.Debug("resize ended", "encounter_id", c.resize.EncounterID)
	c.resize = nil
	return nil
}
