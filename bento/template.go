/*
template.go - Encounter templates and the composer draft

PURPOSE:
  A template is the reusable "shape" of an encounter: who runs it, what it
  is, who attends, where, and for how long. The composer builds a Draft by
  dropping library atoms onto it, then saves it as a versioned Template.

SAVE-TIME INVARIANT:
  A template needs an activity, a duration, at least one staff member and
  at least one client or client group. Anything less is rejected whole;
  nothing is partially saved.

VERSIONING:
  ComposeTemplate starts at version 1, UpdateTemplate increments it.
  Scheduled encounters keep the version they were placed from and are not
  rewritten when the template changes.

DURATION ENCODING:
  Legacy blobs store a template duration either as a bare minute count
  (90) or as a structured record ({"minutes": 90, ...}). Both decode into
  a duration Atom.
*/
package bento

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// CATEGORY
// =============================================================================

type Category string

const (
	CategoryClinical       Category = "clinical"
	CategoryLifeSkills     Category = "life-skills"
	CategoryRecreation     Category = "recreation"
	CategoryMedical        Category = "medical"
	CategoryAdministrative Category = "administrative"
)

var Categories = []Category{
	CategoryClinical,
	CategoryLifeSkills,
	CategoryRecreation,
	CategoryMedical,
	CategoryAdministrative,
}

func (c Category) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Capacity is the client headcount the template is planned for.
type Capacity struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// =============================================================================
// TEMPLATE
// =============================================================================

type Template struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Category Category `json:"category"`

	Staff    []Atom `json:"staff"`
	Activity *Atom  `json:"activity,omitempty"`
	Clients  []Atom `json:"clients"`
	Location *Atom  `json:"location,omitempty"`
	Duration *Atom  `json:"duration,omitempty"`

	Capacity Capacity `json:"capacity"`
	Version  int      `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UnmarshalJSON accepts a duration given as a bare minute count.
func (t *Template) UnmarshalJSON(data []byte) error {
	type plain Template
	aux := struct {
		*plain
		Duration json.RawMessage `json:"duration,omitempty"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d, err := decodeDuration(aux.Duration)
	if err != nil {
		return fmt.Errorf("template %q: %w", t.ID, err)
	}
	t.Duration = d
	return nil
}

func decodeDuration(raw json.RawMessage) (*Atom, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var minutes float64
	if err := json.Unmarshal(raw, &minutes); err == nil {
		return &Atom{Kind: KindDuration, Minutes: int(minutes)}, nil
	}
	var a Atom
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("duration: %w", err)
	}
	a.Kind = KindDuration
	return &a, nil
}

// DurationMinutes returns the template duration, or false when it is
// missing or not positive.
func (t Template) DurationMinutes() (int, bool) {
	if t.Duration == nil || t.Duration.Minutes <= 0 {
		return 0, false
	}
	return t.Duration.Minutes, true
}

// Headcount is the aggregate client count of the template roster.
func (t Template) Headcount() int {
	return Headcount(t.Clients)
}

func (t Template) clone() Template {
	t.Staff = cloneAtoms(t.Staff)
	t.Clients = cloneAtoms(t.Clients)
	t.Activity = cloneAtomPtr(t.Activity)
	t.Location = cloneAtomPtr(t.Location)
	t.Duration = cloneAtomPtr(t.Duration)
	return t
}

// =============================================================================
// DRAFT - Composer working copy
// =============================================================================

// Draft collects atoms dropped onto the composer.
// ID is optional; when empty a new id is generated on save.
type Draft struct {
	ID       string
	Name     string
	Color    string
	Category Category

	Staff    []Atom
	Activity *Atom
	Clients  []Atom
	Location *Atom
	Duration *Atom
}

// Add places a library atom on the draft. Staff and clients accumulate
// without repeats; activity, location and duration replace the current one.
func (d *Draft) Add(a Atom) error {
	a = a.clone()
	switch a.Kind {
	case KindStaff:
		if !containsAtom(d.Staff, a) {
			d.Staff = append(d.Staff, a)
		}
	case KindClient, KindClientGroup:
		if !containsAtom(d.Clients, a) {
			d.Clients = append(d.Clients, a)
		}
	case KindActivity:
		d.Activity = &a
	case KindLocation:
		d.Location = &a
	case KindDuration:
		d.Duration = &a
	default:
		return fmt.Errorf("cannot add %q atom to a template", a.Kind)
	}
	return nil
}

// Remove takes the atom of kind with id off the draft.
func (d *Draft) Remove(kind AtomKind, id string) {
	switch kind {
	case KindStaff:
		d.Staff = removeAtom(d.Staff, kind, id)
	case KindClient, KindClientGroup:
		d.Clients = removeAtom(d.Clients, kind, id)
	case KindActivity:
		if d.Activity != nil && d.Activity.ID == id {
			d.Activity = nil
		}
	case KindLocation:
		if d.Location != nil && d.Location.ID == id {
			d.Location = nil
		}
	case KindDuration:
		if d.Duration != nil && d.Duration.ID == id {
			d.Duration = nil
		}
	}
}

// Validate checks the save-time invariant.
func (d Draft) Validate() error {
	var missing []string
	if d.Activity == nil {
		missing = append(missing, "an activity")
	}
	if d.Duration == nil || d.Duration.Minutes <= 0 {
		missing = append(missing, "a duration")
	}
	if len(d.Staff) == 0 {
		missing = append(missing, "at least one staff member")
	}
	if len(d.Clients) == 0 {
		missing = append(missing, "at least one client or client group")
	}
	if len(missing) > 0 {
		return &TemplateValidationError{Missing: missing}
	}
	if d.Category != "" && !d.Category.IsValid() {
		return &TemplateValidationError{Reason: fmt.Sprintf("unknown category %q", d.Category)}
	}
	for _, c := range d.Clients {
		if !c.IsRosterEntry() {
			return &TemplateValidationError{Reason: fmt.Sprintf("%s %q cannot be a client", c.Kind, c.ID)}
		}
	}
	return nil
}

// apply writes the draft's parts onto t and recomputes capacity.
func (d Draft) apply(t *Template) {
	t.Name = d.Name
	t.Color = d.Color
	t.Category = d.Category
	if t.Category == "" {
		t.Category = CategoryClinical
	}
	t.Staff = cloneAtoms(d.Staff)
	t.Activity = cloneAtomPtr(d.Activity)
	t.Clients = cloneAtoms(d.Clients)
	t.Location = cloneAtomPtr(d.Location)
	t.Duration = cloneAtomPtr(d.Duration)
	n := Headcount(t.Clients)
	t.Capacity = Capacity{Min: n, Max: n}
	if t.Name == "" && t.Activity != nil {
		t.Name = t.Activity.Name
	}
}

// DraftFrom returns an editable draft of an existing template.
func DraftFrom(t Template) Draft {
	c := t.clone()
	return Draft{
		ID:       c.ID,
		Name:     c.Name,
		Color:    c.Color,
		Category: c.Category,
		Staff:    c.Staff,
		Activity: c.Activity,
		Clients:  c.Clients,
		Location: c.Location,
		Duration: c.Duration,
	}
}

func containsAtom(list []Atom, a Atom) bool {
	for _, x := range list {
		if x.Kind == a.Kind && x.ID == a.ID {
			return true
		}
	}
	return false
}

func removeAtom(list []Atom, kind AtomKind, id string) []Atom {
	out := list[:0]
	for _, x := range list {
		if x.ID == id && x.Kind == kind {
			continue
		}
		out = append(out, x)
	}
	return out
}
