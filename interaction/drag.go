package interaction

import (
	"context"
	"errors"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/layout"
)

// =============================================================================
// DRAG-PLACEMENT PROTOCOL
// =============================================================================

type dragSession struct {
	payload Payload
	hover   *Hover
}

// Outcome names what a drop did.
type Outcome string

const (
	OutcomePlaced       Outcome = "placed"
	OutcomeMoved        Outcome = "moved"
	OutcomeMergePending Outcome = "merge-pending"
	// OutcomeIgnored covers malformed payloads and drops with no effect.
	OutcomeIgnored Outcome = "ignored"
)

// DropTarget is where the pointer was released. EncounterID is set when
// the release landed on an existing encounter block.
type DropTarget struct {
	Cell        layout.Cell `json:"cell"`
	PointerY    float64     `json:"pointerY"`
	CellHeight  float64     `json:"cellHeight"`
	EncounterID string      `json:"encounterId,omitempty"`
}

// DropResult reports the effect of a drop.
type DropResult struct {
	Outcome   Outcome                   `json:"outcome"`
	Encounter *bento.ScheduledEncounter `json:"encounter,omitempty"`
	Merge     *MergeRequest             `json:"merge,omitempty"`
	Reason    string                    `json:"reason,omitempty"`
}

// DragStart opens the drag session for p.
func (c *Controller) DragStart(p Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.busyLocked(false); err != nil {
		return err
	}
	c.drag = &dragSession{payload: p}
	c.logger.Debug("drag started", "kind", p.Kind())
	return nil
}

// DragOver updates the preview highlight. Placement drags preview on the
// 30-minute grid, moves on the 15-minute grid.
func (c *Controller) DragOver(cell layout.Cell, pointerY, cellHeight float64) (Hover, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drag == nil {
		return Hover{}, generic.ErrNoSession
	}
	h := hoverAt(cell.In(c.location), pointerY, cellHeight, snapFor(c.drag.payload))
	c.drag.hover = &h
	return h, nil
}

// DragLeave clears the preview highlight.
func (c *Controller) DragLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag != nil {
		c.drag.hover = nil
	}
}

// DragCancel discards the drag session without touching the Board.
func (c *Controller) DragCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag != nil {
		c.logger.Debug("drag cancelled", "kind", c.drag.payload.Kind())
	}
	c.drag = nil
}

// Drop decodes raw and applies it at target. It ends any drag session.
//
// A payload that fails to decode is logged and ignored with a nil error.
// Board errors (a pool entry referencing a deleted template, a moved
// encounter that no longer exists) are returned.
func (c *Controller) Drop(ctx context.Context, raw string, target DropTarget) (DropResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.busyLocked(true); err != nil {
		c.logger.Info("drop suspended", "reason", err.Error())
		return DropResult{}, err
	}
	c.drag = nil

	p, err := DecodePayload(raw)
	if err != nil {
		c.logger.Warn("ignoring malformed drop payload", "error", err)
		c.observer.DropHandled("", OutcomeIgnored)
		return DropResult{Outcome: OutcomeIgnored, Reason: err.Error()}, nil
	}

	target.Cell = target.Cell.In(c.location)
	res, err := c.dispatchLocked(ctx, p, target)
	if err != nil {
		c.logger.Warn("drop failed", "kind", p.Kind(), "error", err)
		return DropResult{}, err
	}
	c.observer.DropHandled(p.Kind(), res.Outcome)
	return res, nil
}

func (c *Controller) dispatchLocked(ctx context.Context, p Payload, target DropTarget) (DropResult, error) {
	switch p := p.(type) {
	case PoolTemplatePayload:
		start := layout.DropTime(target.Cell, target.PointerY, target.CellHeight, generic.SnapPlacement)
		e, err := c.board.Place(ctx, p.TemplateID, start)
		if err != nil {
			return DropResult{}, err
		}
		c.logger.Info("encounter placed", "encounter_id", e.ID, "template_id", p.TemplateID, "start", e.Start)
		return DropResult{Outcome: OutcomePlaced, Encounter: &e}, nil

	case EncounterPayload:
		start := layout.DropTime(target.Cell, target.PointerY, target.CellHeight, generic.SnapAdjust)
		e, err := c.board.Move(ctx, p.EncounterID, start)
		if err != nil {
			return DropResult{}, err
		}
		c.logger.Info("encounter moved", "encounter_id", e.ID, "start", e.Start, "status", e.Status)
		return DropResult{Outcome: OutcomeMoved, Encounter: &e}, nil

	case ClientGroupPayload:
		if target.EncounterID == "" {
			return DropResult{Outcome: OutcomeIgnored, Reason: "client group dropped on empty space"}, nil
		}
		req, err := c.openMergeLocked(target.EncounterID, p.ClientGroupID)
		if err != nil {
			return DropResult{}, err
		}
		return DropResult{Outcome: OutcomeMergePending, Merge: &req}, nil

	case AtomPayload:
		return DropResult{Outcome: OutcomeIgnored, Reason: "library atoms are dropped on the composer"}, nil
	}
	return DropResult{}, errors.New("unhandled payload")
}

func snapFor(p Payload) generic.Snap {
	if p != nil && p.Kind() == PayloadEncounter {
		return generic.SnapAdjust
	}
	return generic.SnapPlacement
}
