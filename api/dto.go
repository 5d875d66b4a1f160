/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Calendar reads are
  denormalized for rendering: each block carries its pixel position, lane,
  derived status, status color and clock labels, so the front-end draws
  without recomputing anything.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers and the domain, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - layout/: Positions and lanes
*/
package api

import (
	"time"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/factory"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/interaction"
	"github.com/warp/bentobox/layout"
)

// =============================================================================
// CALENDAR
// =============================================================================

// CalendarDTO is the filtered, grouped, positioned calendar for a window.
type CalendarDTO struct {
	From       string             `json:"from"`
	Days       int                `json:"days"`
	Now        time.Time          `json:"now"`
	TimeFormat generic.TimeFormat `json:"timeFormat"`
	HourHeight int                `json:"hourHeight"`
	Columns    []DayColumnDTO     `json:"columns"`
}

// DayColumnDTO is one day of the grid.
type DayColumnDTO struct {
	Date   string             `json:"date"`
	Label  string             `json:"label"`
	Blocks []CalendarBlockDTO `json:"blocks"`
}

// CalendarBlockDTO is one positioned encounter.
type CalendarBlockDTO struct {
	ID            string               `json:"id"`
	TemplateID    string               `json:"templateId"`
	Title         string               `json:"title"`
	Color         string               `json:"color"`
	Status        bento.Status         `json:"status"`
	StatusColor   string               `json:"statusColor"`
	Start         time.Time            `json:"start"`
	End           time.Time            `json:"end"`
	StartLabel    string               `json:"startLabel"`
	EndLabel      string               `json:"endLabel"`
	Top           float64              `json:"top"`
	Height        float64              `json:"height"`
	Lane          int                  `json:"lane"`
	Lanes         int                  `json:"lanes"`
	Degenerate    bool                 `json:"degenerate,omitempty"`
	IsDuplicate   bool                 `json:"isDuplicate"`
	ParentID      string               `json:"parentId,omitempty"`
	StaffInitials []string             `json:"staffInitials"`
	Location      string               `json:"location,omitempty"`
	Capacity      bento.CapacityReport `json:"capacity"`
}

func toCalendarBlock(blk layout.Block[bento.ScheduledEncounter], tpl *bento.Template, now time.Time, format generic.TimeFormat) CalendarBlockDTO {
	e := blk.Item
	status := bento.DeriveStatus(e, now)
	dto := CalendarBlockDTO{
		ID:            e.ID,
		TemplateID:    e.TemplateID,
		Title:         e.Title,
		Color:         e.Color,
		Status:        status,
		StatusColor:   bento.StatusColor(status),
		Start:         e.Start,
		End:           e.End,
		StartLabel:    clockLabel(e.Start, format),
		EndLabel:      clockLabel(e.End, format),
		Top:           blk.Position.Top,
		Height:        blk.Position.Height,
		Lane:          blk.Lane,
		Lanes:         blk.Lanes,
		Degenerate:    e.Malformed(),
		IsDuplicate:   e.IsDuplicate,
		ParentID:      e.ParentID,
		StaffInitials: []string{},
		Capacity:      bento.CapacityFor(e, tpl),
	}
	for _, s := range bento.EffectiveStaff(e, tpl) {
		in := s.Initials
		if in == "" {
			in = s.Name
		}
		dto.StaffInitials = append(dto.StaffInitials, in)
	}
	if loc := bento.EffectiveLocation(e, tpl); loc != nil {
		dto.Location = loc.Name
	}
	return dto
}

func clockLabel(t time.Time, format generic.TimeFormat) string {
	if t.IsZero() {
		return ""
	}
	return layout.FormatClock(t, format)
}

// =============================================================================
// ENCOUNTERS
// =============================================================================

// EncounterDTO is the detail view of one encounter.
type EncounterDTO struct {
	Encounter     bento.ScheduledEncounter `json:"encounter"`
	DerivedStatus bento.Status             `json:"derivedStatus"`
	StatusColor   string                   `json:"statusColor"`
	Staff         []bento.Atom             `json:"staff"`
	Clients       []bento.Atom             `json:"clients"`
	Activity      *bento.Atom              `json:"activity,omitempty"`
	Location      *bento.Atom              `json:"location,omitempty"`
	Capacity      bento.CapacityReport     `json:"capacity"`
	Family        []string                 `json:"family"`
}

// DuplicateRequest places a copy at Start.
type DuplicateRequest struct {
	Start time.Time `json:"start"`
}

// RepeatRequest expands an RRULE from the encounter's start.
type RepeatRequest struct {
	Rule string `json:"rule"`
}

// RetimeRequest sets both bounds.
type RetimeRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DeleteResponse lists every encounter id removed.
type DeleteResponse struct {
	Removed []string `json:"removed"`
}

// =============================================================================
// LIBRARY & COMPOSER
// =============================================================================

// TemplateRequest composes a template from library ids.
type TemplateRequest = factory.TemplateJSON

// TemplatePatchRequest edits a template's presentation. Nil fields are kept.
type TemplatePatchRequest struct {
	Name     *string         `json:"name,omitempty"`
	Color    *string         `json:"color,omitempty"`
	Category *bento.Category `json:"category,omitempty"`
}

// =============================================================================
// INTERACTION HOOKS
// =============================================================================

// DragStartRequest carries the serialized payload set on drag start.
type DragStartRequest struct {
	Payload string `json:"payload"`
}

// DragOverRequest reports the pointer over a cell.
type DragOverRequest struct {
	Cell       layout.Cell `json:"cell"`
	PointerY   float64     `json:"pointerY"`
	CellHeight float64     `json:"cellHeight"`
}

// DropRequest is a release over the calendar.
type DropRequest struct {
	Payload string                 `json:"payload"`
	Target  interaction.DropTarget `json:"target"`
}

type ResizeStartRequest struct {
	EncounterID string           `json:"encounterId"`
	Edge        interaction.Edge `json:"edge"`
	AnchorY     float64          `json:"anchorY"`
}

type ResizeMoveRequest struct {
	CurrentY float64 `json:"currentY"`
}

type MergeChoiceRequest struct {
	Choice interaction.MergeChoice `json:"choice"`
}

// =============================================================================
// PREFERENCES & MISC
// =============================================================================

type StaffFilterRequest struct {
	StaffIDs []string `json:"staffIds"`
}

type TimeFormatRequest struct {
	TimeFormat generic.TimeFormat `json:"timeFormat"`
}

// LoadScenarioRequest is the request to load a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type LoadScenarioResponse struct {
	Status   string          `json:"status"`
	Scenario string          `json:"scenario"`
	Summary  factory.Summary `json:"summary"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
