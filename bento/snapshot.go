package bento

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/warp/bentobox/generic"
)

// =============================================================================
// SNAPSHOT - The single persisted blob
// =============================================================================

// Library is the atom catalogs plus templates.
type Library struct {
	Staff        []Atom     `json:"staff"`
	Activities   []Atom     `json:"activities"`
	Clients      []Atom     `json:"clients"`
	ClientGroups []Atom     `json:"clientGroups"`
	Locations    []Atom     `json:"locations"`
	Durations    []Atom     `json:"durations"`
	Templates    []Template `json:"templates"`
}

// Snapshot is the persisted shape of a Board:
// {library, pool, scheduledEncounters, selectedStaffFilters, timeFormat}.
type Snapshot struct {
	Library              Library              `json:"library"`
	Pool                 []PoolEntry          `json:"pool"`
	ScheduledEncounters  []ScheduledEncounter `json:"scheduledEncounters"`
	SelectedStaffFilters []string             `json:"selectedStaffFilters"`
	TimeFormat           generic.TimeFormat   `json:"timeFormat"`
}

// catalogs pairs each library slice with its kind.
func (l *Library) catalogs() []struct {
	kind  AtomKind
	atoms *[]Atom
} {
	return []struct {
		kind  AtomKind
		atoms *[]Atom
	}{
		{KindStaff, &l.Staff},
		{KindActivity, &l.Activities},
		{KindClient, &l.Clients},
		{KindClientGroup, &l.ClientGroups},
		{KindLocation, &l.Locations},
		{KindDuration, &l.Durations},
	}
}

// Snapshot returns a deep copy of the board state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Board) snapshotLocked() Snapshot {
	var s Snapshot
	for _, c := range s.Library.catalogs() {
		*c.atoms = b.registry.List(c.kind)
		if *c.atoms == nil {
			*c.atoms = []Atom{}
		}
	}
	s.Library.Templates = make([]Template, 0, len(b.templateOrder))
	for _, id := range b.templateOrder {
		s.Library.Templates = append(s.Library.Templates, b.templates[id].clone())
	}
	s.Pool = make([]PoolEntry, 0, len(b.pool))
	for _, p := range b.pool {
		s.Pool = append(s.Pool, p.clone())
	}
	s.ScheduledEncounters = b.encountersLocked()
	s.SelectedStaffFilters = append([]string{}, b.staffFilter...)
	s.TimeFormat = b.timeFormat
	return s
}

// Restore replaces the board state with s. Atoms are re-validated; family
// links that point at missing encounters are repaired so every surviving
// reference resolves. Nothing is persisted.
func (b *Board) Restore(s Snapshot) error {
	reg := NewRegistry()
	for _, c := range s.Library.catalogs() {
		for _, a := range *c.atoms {
			if _, err := reg.Add(a, c.kind); err != nil {
				return fmt.Errorf("restoring library: %w", err)
			}
		}
	}

	templates := make(map[string]*Template, len(s.Library.Templates))
	order := make([]string, 0, len(s.Library.Templates))
	for _, t := range s.Library.Templates {
		if t.ID == "" {
			return fmt.Errorf("%w: template without id", generic.ErrInvalidTemplate)
		}
		if _, dup := templates[t.ID]; dup {
			return fmt.Errorf("%w: template %q appears twice", generic.ErrInvalidTemplate, t.ID)
		}
		t := t.clone()
		if t.Version < 1 {
			t.Version = 1
		}
		templates[t.ID] = &t
		order = append(order, t.ID)
	}

	encounters := make(map[string]*ScheduledEncounter, len(s.ScheduledEncounters))
	for _, e := range s.ScheduledEncounters {
		e := e.clone()
		if !e.Status.IsValid() {
			e.Status = StatusScheduled
		}
		if e.Malformed() {
			b.logger.Warn("encounter has unreadable times, keeping it as degenerate",
				"encounter", e.ID, "start", e.Start, "end", e.End)
		}
		encounters[e.ID] = &e
	}
	repairFamilies(encounters)

	tf := s.TimeFormat
	if !tf.IsValid() {
		tf = generic.TimeFormat12h
	}

	pool := make([]PoolEntry, 0, len(s.Pool))
	for _, p := range s.Pool {
		pool = append(pool, p.clone())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.registry = reg
	b.templates = templates
	b.templateOrder = order
	b.pool = pool
	b.encounters = encounters
	b.staffFilter = dedupeIDs(s.SelectedStaffFilters)
	b.timeFormat = tf
	return nil
}

// repairFamilies drops child ids that do not resolve and promotes
// orphaned children to roots.
func repairFamilies(encounters map[string]*ScheduledEncounter) {
	for _, e := range encounters {
		if e.ParentID == "" {
			continue
		}
		if _, ok := encounters[e.ParentID]; !ok {
			e.ParentID = ""
			e.IsDuplicate = false
		}
	}
	for _, e := range encounters {
		if len(e.ChildIDs) == 0 {
			continue
		}
		kept := e.ChildIDs[:0]
		for _, cid := range e.ChildIDs {
			if c, ok := encounters[cid]; ok && c.ParentID == e.ID {
				kept = append(kept, cid)
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		e.ChildIDs = kept
	}
}

// Load reads the board blob under key from store. A missing key yields an
// empty board. The returned board persists back to the same store and key.
func Load(ctx context.Context, store generic.BlobStore, key string, opts ...Option) (*Board, error) {
	if key == "" {
		key = generic.DefaultStoreKey
	}
	b := NewBoard(append(opts, WithStore(store, key))...)

	blob, err := store.Get(ctx, key)
	if errors.Is(err, generic.ErrNotFound) {
		b.logger.Info("no persisted board, starting empty", "key", key)
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading board %q: %w", key, err)
	}

	var s Snapshot
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("decoding board %q: %w", key, err)
	}
	if err := b.Restore(s); err != nil {
		return nil, err
	}
	b.logger.Info("board loaded", "key", key,
		"templates", len(s.Library.Templates),
		"pool", len(s.Pool),
		"encounters", len(s.ScheduledEncounters))
	return b, nil
}
