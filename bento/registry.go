package bento

import (
	"fmt"

	"github.com/warp/bentobox/generic"
)

// =============================================================================
// ATOM REGISTRY - Flat catalogs, one per kind
// =============================================================================

// Registry holds the atom catalogs. Atoms are never versioned or edited.
// A Registry is not safe for concurrent use on its own; Board serializes it.
type Registry struct {
	catalogs map[AtomKind][]Atom
	index    map[AtomKind]map[string]int
}

func NewRegistry() *Registry {
	r := &Registry{
		catalogs: make(map[AtomKind][]Atom, len(AtomKinds)),
		index:    make(map[AtomKind]map[string]int, len(AtomKinds)),
	}
	for _, k := range AtomKinds {
		r.index[k] = make(map[string]int)
	}
	return r
}

// Add appends atom to the catalog for kind. An empty atom.Kind is taken
// from kind; a different one is rejected.
func (r *Registry) Add(atom Atom, kind AtomKind) (Atom, error) {
	if !kind.IsValid() {
		return Atom{}, fmt.Errorf("%w: unknown kind %q", generic.ErrInvalidAtom, kind)
	}
	if atom.Kind == "" {
		atom.Kind = kind
	}
	if atom.Kind != kind {
		return Atom{}, fmt.Errorf("%w: %s atom added to %s catalog", generic.ErrInvalidAtom, atom.Kind, kind)
	}
	if atom.ID == "" {
		return Atom{}, fmt.Errorf("%w: %s atom has no id", generic.ErrInvalidAtom, kind)
	}
	if _, exists := r.index[kind][atom.ID]; exists {
		return Atom{}, &DuplicateAtomError{Kind: kind, ID: atom.ID}
	}
	if kind == KindClientGroup {
		atom.ClientIDs = dedupeIDs(atom.ClientIDs)
	}
	if kind == KindDuration && atom.Minutes < 0 {
		return Atom{}, fmt.Errorf("%w: duration %q is negative", generic.ErrInvalidAtom, atom.ID)
	}

	atom = atom.clone()
	r.index[kind][atom.ID] = len(r.catalogs[kind])
	r.catalogs[kind] = append(r.catalogs[kind], atom)
	return atom.clone(), nil
}

// Lookup returns the atom of kind with id.
func (r *Registry) Lookup(kind AtomKind, id string) (Atom, bool) {
	i, ok := r.index[kind][id]
	if !ok {
		return Atom{}, false
	}
	return r.catalogs[kind][i].clone(), true
}

// ClientGroup is Lookup(KindClientGroup, id).
func (r *Registry) ClientGroup(id string) (Atom, bool) {
	return r.Lookup(KindClientGroup, id)
}

// List returns a copy of the catalog for kind, in insertion order.
func (r *Registry) List(kind AtomKind) []Atom {
	return cloneAtoms(r.catalogs[kind])
}
