/*
Package interaction turns pointer-level events into Board mutations.

PURPOSE:
  The calendar view forwards drag, drop, resize and merge-dialog events.
  The Controller owns the three multi-event sessions and applies their
  results through the Board's named operations.

SESSIONS:
  - drag:   DragStart -> DragOver* -> Drop | DragCancel
  - resize: ResizeStart -> ResizeMove* -> ResizeEnd
  - merge:  client-group Drop on an encounter -> MergeChoice

  At most one of each exists. A resize and a drag never overlap, and a
  pending merge suspends both: starting a competing session returns
  generic.ErrInteractionBusy. Abandoning a session has no Board effect.

SEE ALSO:
  - payload.go: Drag payload codec
  - drag.go, resize.go, merge.go: The three protocols
*/
package interaction

import (
	"log/slog"
	"sync"
	"time"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/layout"
)

// Observer receives interaction outcomes; the api layer turns them into metrics.
type Observer interface {
	DropHandled(kind PayloadKind, outcome Outcome)
	ResizeApplied(wrote bool)
	MergeResolved(choice MergeChoice)
}

type nopObserver struct{}

func (nopObserver) DropHandled(PayloadKind, Outcome) {}
func (nopObserver) ResizeApplied(bool)              {}
func (nopObserver) MergeResolved(MergeChoice)       {}

// Controller serializes interaction events against one Board.
type Controller struct {
	mu sync.Mutex

	board    *bento.Board
	logger   *slog.Logger
	observer Observer
	location *time.Location

	drag   *dragSession
	resize *ResizeSession
	merge  *MergeRequest
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

func WithObserver(o Observer) ControllerOption {
	return func(c *Controller) { c.observer = o }
}

// WithLocation sets the calendar zone. Drop cells and resize day bounds
// are resolved in it; nil keeps each time in its own zone.
func WithLocation(loc *time.Location) ControllerOption {
	return func(c *Controller) { c.location = loc }
}

func NewController(board *bento.Board, opts ...ControllerOption) *Controller {
	c := &Controller{
		board:    board,
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) inZone(t time.Time) time.Time {
	if c.location == nil {
		return t
	}
	return t.In(c.location)
}

// Hover is the preview highlight of the cell under the pointer.
type Hover struct {
	Day    time.Time `json:"day"`
	Hour   int       `json:"hour"`
	Minute int       `json:"minute"`
}

// State is a read-only view of the active sessions.
type State struct {
	Dragging          bool           `json:"dragging"`
	DragKind          PayloadKind    `json:"dragKind,omitempty"`
	DimmedEncounterID string         `json:"dimmedEncounterId,omitempty"`
	Hover             *Hover         `json:"hover,omitempty"`
	Resize            *ResizeSession `json:"resize,omitempty"`
	PendingMerge      *MergeRequest  `json:"pendingMerge,omitempty"`
}

// State reports the current sessions.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	var s State
	if c.drag != nil {
		s.Dragging = true
		s.DragKind = c.drag.payload.Kind()
		if p, ok := c.drag.payload.(EncounterPayload); ok {
			s.DimmedEncounterID = p.EncounterID
		}
		if c.drag.hover != nil {
			h := *c.drag.hover
			s.Hover = &h
		}
	}
	if c.resize != nil {
		r := *c.resize
		s.Resize = &r
	}
	if c.merge != nil {
		m := c.merge.clone()
		s.PendingMerge = &m
	}
	return s
}

// busyLocked returns ErrInteractionBusy naming the blocking session.
// allowDrag lets a drag-scoped call through while a drag is active.
func (c *Controller) busyLocked(allowDrag bool) error {
	switch {
	case c.merge != nil:
		return busy("merge decision pending")
	case c.resize != nil:
		return busy("resize in progress")
	case c.drag != nil && !allowDrag:
		return busy("drag in progress")
	}
	return nil
}

func busy(reason string) error {
	return &BusyError{Reason: reason}
}

// BusyError reports which session blocked an event.
type BusyError struct {
	Reason string
}

func (e *BusyError) Error() string { return "interaction busy: " + e.Reason }
func (e *BusyError) Unwrap() error { return generic.ErrInteractionBusy }

// hoverAt resolves a pointer position to a preview cell.
func hoverAt(cell layout.Cell, pointerY, cellHeight float64, unit generic.Snap) Hover {
	t := layout.DropTime(cell, pointerY, cellHeight, unit)
	return Hover{Day: generic.StartOfDay(t), Hour: t.Hour(), Minute: t.Minute()}
}
