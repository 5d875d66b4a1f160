/*
Package bento implements the BentoBox scheduling model.

PURPOSE:
  Atoms are composed into templates, templates are staged in the pool, and
  pool items become scheduled encounters on the calendar. The Board is the
  single owned state container; every mutation goes through a named Board
  method and is persisted as one blob.

KEY CONCEPTS IN THIS FILE (atom.go):
  - Atom: smallest reusable scheduling primitive, discriminated by Kind
  - Client groups own an ordered set of client ids by reference only

DATA FLOW:
  Registry -> Draft/Template -> PoolEntry -> (drag) -> ScheduledEncounter

SEE ALSO:
  - registry.go: Atom catalogs
  - template.go: Composer drafts and templates
  - board.go: State container and persistence
*/
package bento

import "fmt"

// =============================================================================
// ATOM KINDS
// =============================================================================

type AtomKind string

const (
	KindStaff       AtomKind = "staff"
	KindActivity    AtomKind = "activity"
	KindClient      AtomKind = "client"
	KindClientGroup AtomKind = "client-group"
	KindLocation    AtomKind = "location"
	KindDuration    AtomKind = "duration"
)

// AtomKinds lists every kind in catalog order.
var AtomKinds = []AtomKind{
	KindStaff,
	KindActivity,
	KindClient,
	KindClientGroup,
	KindLocation,
	KindDuration,
}

// IsValid returns true if the kind is recognized.
func (k AtomKind) IsValid() bool {
	for _, v := range AtomKinds {
		if k == v {
			return true
		}
	}
	return false
}

// =============================================================================
// ATOM
// =============================================================================

// Atom is a typed primitive. Only the fields of its Kind are meaningful.
type Atom struct {
	Kind AtomKind `json:"type" yaml:"type"`
	ID   string   `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`

	// staff
	Initials string `json:"initials,omitempty" yaml:"initials,omitempty"`
	// activity
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
	// client-group: member client ids, by reference
	ClientIDs []string `json:"clientIds,omitempty" yaml:"clientIds,omitempty"`
	// location
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	// duration
	Minutes int    `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Headcount is 1 for a client and the member count for a client group.
// Other kinds do not count toward a roster.
func (a Atom) Headcount() int {
	switch a.Kind {
	case KindClient:
		return 1
	case KindClientGroup:
		return len(a.ClientIDs)
	default:
		return 0
	}
}

// IsRosterEntry reports whether the atom can sit in a client roster.
func (a Atom) IsRosterEntry() bool {
	return a.Kind == KindClient || a.Kind == KindClientGroup
}

// DurationLabel returns the label, or "<n> min" when unlabeled.
func (a Atom) DurationLabel() string {
	if a.Label != "" {
		return a.Label
	}
	if a.Minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%d min", a.Minutes)
}

// clone returns a deep copy so catalogs never share slices with callers.
func (a Atom) clone() Atom {
	if a.ClientIDs != nil {
		a.ClientIDs = append([]string(nil), a.ClientIDs...)
	}
	return a
}

func cloneAtoms(in []Atom) []Atom {
	if in == nil {
		return nil
	}
	out := make([]Atom, len(in))
	for i, a := range in {
		out[i] = a.clone()
	}
	return out
}

func cloneAtomPtr(a *Atom) *Atom {
	if a == nil {
		return nil
	}
	c := a.clone()
	return &c
}

// Headcount sums the headcount of every roster entry. Groups are not
// de-duplicated against each other: a client present in two groups counts twice.
func Headcount(roster []Atom) int {
	n := 0
	for _, a := range roster {
		n += a.Headcount()
	}
	return n
}

// dedupeIDs keeps the first occurrence of every id, in order.
func dedupeIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
