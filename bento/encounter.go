package bento

import (
	"encoding/json"
	"time"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	// StatusCancelled is sticky: derivation, moves and resizes never clear it.
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// =============================================================================
// OVERRIDES - Per-instance shadow of template fields
// =============================================================================

// Overrides lets one instance diverge from its template without forking it.
// A nil field means "use the template". Clients, when set, replace the
// template roster entirely; they are never merged implicitly.
type Overrides struct {
	Staff    []Atom `json:"staff,omitempty"`
	Activity *Atom  `json:"activity,omitempty"`
	Clients  []Atom `json:"clients,omitempty"`
	Location *Atom  `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// IsZero reports whether nothing is overridden.
func (o Overrides) IsZero() bool {
	return o.Staff == nil && o.Activity == nil && o.Clients == nil && o.Location == nil && o.Notes == ""
}

func (o Overrides) clone() Overrides {
	o.Staff = cloneAtoms(o.Staff)
	o.Clients = cloneAtoms(o.Clients)
	o.Activity = cloneAtomPtr(o.Activity)
	o.Location = cloneAtomPtr(o.Location)
	return o
}

// =============================================================================
// SCHEDULED ENCOUNTER
// =============================================================================

// ScheduledEncounter is a placed instance. Title and Color are cached from
// the template at placement so the instance still renders after the
// template is deleted.
//
// ParentID/ChildIDs form a one-level tree of duplicates: a root has
// children, a child has a parent, never both.
type ScheduledEncounter struct {
	ID              string    `json:"id"`
	TemplateID      string    `json:"templateId"`
	TemplateVersion int       `json:"templateVersion"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Title           string    `json:"title"`
	Color           string    `json:"color"`
	Status          Status    `json:"status"`
	IsDuplicate     bool      `json:"isDuplicate"`
	ParentID        string    `json:"parentId,omitempty"`
	ChildIDs        []string  `json:"childIds,omitempty"`
	Overrides       Overrides `json:"overrides"`
}

// UnmarshalJSON decodes an encounter whose start or end may be unreadable.
// A bad time is zeroed instead of failing the decode, so the record survives
// and renders as a degenerate block until it is moved or resized.
func (e *ScheduledEncounter) UnmarshalJSON(data []byte) error {
	type plain ScheduledEncounter
	var raw struct {
		plain
		Start json.RawMessage `json:"start"`
		End   json.RawMessage `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = ScheduledEncounter(raw.plain)
	e.Start = lenientTime(raw.Start)
	e.End = lenientTime(raw.End)
	return nil
}

func lenientTime(raw json.RawMessage) time.Time {
	var t time.Time
	if len(raw) == 0 || json.Unmarshal(raw, &t) != nil {
		return time.Time{}
	}
	return t
}

// Malformed reports whether Start or End could not be read.
func (e ScheduledEncounter) Malformed() bool {
	return e.Start.IsZero() || e.End.IsZero()
}

// Bounds implements layout.Span.
func (e ScheduledEncounter) Bounds() (time.Time, time.Time) {
	return e.Start, e.End
}

// Duration returns End - Start.
func (e ScheduledEncounter) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// RootID is the id of the family root: the parent, or the encounter itself.
func (e ScheduledEncounter) RootID() string {
	if e.ParentID != "" {
		return e.ParentID
	}
	return e.ID
}

func (e ScheduledEncounter) clone() ScheduledEncounter {
	if e.ChildIDs != nil {
		e.ChildIDs = append([]string(nil), e.ChildIDs...)
	}
	e.Overrides = e.Overrides.clone()
	return e
}

// statusAfterEdit is the status a move or resize leaves behind.
func statusAfterEdit(prior Status) Status {
	if prior == StatusCancelled {
		return StatusCancelled
	}
	return StatusScheduled
}
